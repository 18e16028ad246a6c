package cli

import (
	"fmt"
	"path/filepath"

	"github.com/kiln-labs/kiln/internal/scaffold"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.AddCommand(createContractCmd)
	createCmd.AddCommand(createScriptCmd)
	createCmd.AddCommand(createTestCmd)
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Scaffold a single file into the current project",
	Long:  `Create a new contract, deploy script, or test from built-in templates, placed in the project's layout directories.`,
}

var createContractCmd = &cobra.Command{
	Use:   "contract <name>",
	Short: "Scaffold a new contract in src/",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(cmd, "contract", args[0], func(l layoutDirs) string { return l.src })
	},
}

var createScriptCmd = &cobra.Command{
	Use:   "script <name>",
	Short: "Scaffold a new script in script/",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(cmd, "script", args[0], func(l layoutDirs) string { return l.script })
	},
}

var createTestCmd = &cobra.Command{
	Use:   "test <name>",
	Short: "Scaffold a new test in test/",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(cmd, "test", args[0], func(l layoutDirs) string { return l.test })
	},
}

type layoutDirs struct {
	src, test, script string
}

func runCreate(cmd *cobra.Command, setName, name string, pick func(layoutDirs) string) error {
	if err := validateName(name); err != nil {
		return err
	}

	root, m, err := requireProject()
	if err != nil {
		return err
	}

	layout := m.EffectiveLayout()
	dirs := layoutDirs{src: layout.Src, test: layout.Test, script: layout.Script}
	destDir := filepath.Join(root, pick(dirs))

	solc := m.Solc
	if solc == "" {
		solc = "0.8.19"
	}

	data := scaffold.NewData(name, solc)
	result, err := scaffold.GenerateInto(setName, data, destDir)
	if err != nil {
		return err
	}

	printScaffoldResult(cmd, setName, result)
	fmt.Fprintf(cmd.OutOrStdout(), "\nRun `kiln build` to compile.\n")
	return nil
}
