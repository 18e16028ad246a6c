package cli

import (
	"fmt"

	"github.com/kiln-labs/kiln/internal/deps"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(updateCmd)
}

var installCmd = &cobra.Command{
	Use:   "install <owner>/<repo>[@<version>]",
	Short: "Install a contract library into lib/",
	Long: `Install a contract library by shallow-cloning it into the project's
lib directory. A version pins the clone to that release tag; the
dependency is recorded in kiln.yaml and remappings.txt is updated.

Examples:
  kiln install foundry-rs/forge-std
  kiln install smartcontractkit/chainlink-brownie-contracts@1.1.1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := deps.ParseSpec(args[0])
		if err != nil {
			return err
		}

		root, m, err := requireProject()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Installing %s", spec.Name)
		if spec.Version != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "@%s", spec.Version)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "...")

		dir, err := deps.Install(root, m, spec)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Installed to %s\n", dir)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update [<owner>/<repo>[@<version>]]",
	Short: "Re-resolve installed contract libraries",
	Long: `Reinstall a library at the version recorded in kiln.yaml, or at a
newly requested version when one is given. Without an argument, every
recorded dependency is reinstalled at its recorded version.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, m, err := requireProject()
		if err != nil {
			return err
		}

		var specs []*deps.Spec
		if len(args) == 1 {
			spec, err := deps.ParseSpec(args[0])
			if err != nil {
				return err
			}
			specs = append(specs, spec)
		} else {
			if len(m.Dependencies) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No dependencies recorded in kiln.yaml.")
				return nil
			}
			for _, dep := range m.Dependencies {
				specs = append(specs, &deps.Spec{Name: dep.Name, Version: dep.Version})
			}
		}

		for _, spec := range specs {
			dir, err := deps.Update(root, m, spec)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s in %s\n", spec.Name, dir)
		}
		return nil
	},
}
