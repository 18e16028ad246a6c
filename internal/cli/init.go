package cli

import (
	"fmt"
	"path/filepath"

	"github.com/kiln-labs/kiln/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	initSolc      string
	initOutputDir string
)

func init() {
	initCmd.Flags().StringVar(&initSolc, "solc", "0.8.19", "Solidity compiler version pin for the new project")
	initCmd.Flags().StringVar(&initOutputDir, "output-dir", "", "Output directory (default: ./<name>)")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Scaffold a new contract project",
	Long: `Scaffold a new contract project: manifest, example contract, test,
deploy script, Makefile, and supporting files.

Example:
  kiln init fund-me
  cd fund-me && kiln build`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := validateName(name); err != nil {
			return err
		}

		outDir := initOutputDir
		if outDir == "" {
			outDir = "./" + name
		}

		data := scaffold.NewData(name, initSolc)
		result, err := scaffold.GenerateProject(data, outDir)
		if err != nil {
			return err
		}

		printScaffoldResult(cmd, "project", result)

		fmt.Fprintln(cmd.OutOrStdout(), "\nNext steps:")
		fmt.Fprintf(cmd.OutOrStdout(), "  1. cd %s\n", outDir)
		fmt.Fprintln(cmd.OutOrStdout(), "  2. kiln install foundry-rs/forge-std")
		fmt.Fprintln(cmd.OutOrStdout(), "  3. kiln build && kiln test")
		return nil
	},
}

// printScaffoldResult reports generated files and any manifest warnings.
func printScaffoldResult(cmd *cobra.Command, what string, result *scaffold.Result) {
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s in %s\n", what, result.OutputDir)
	for _, f := range result.Files {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", filepath.ToSlash(f))
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
}
