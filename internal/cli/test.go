package cli

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kiln-labs/kiln/internal/network"
	"github.com/kiln-labs/kiln/internal/toolchain"
	"github.com/spf13/cobra"
)

var (
	testMatch       string
	testForkNetwork string
	testVerbosity   int
	testWatch       bool
)

func init() {
	testCmd.Flags().StringVar(&testMatch, "match", "", "Only run tests whose name matches the pattern")
	testCmd.Flags().StringVar(&testForkNetwork, "fork-network", "", "Run tests against a fork of the named network profile")
	testCmd.Flags().IntVar(&testVerbosity, "verbosity", 0, "Toolchain test verbosity level (0-5)")
	testCmd.Flags().BoolVar(&testWatch, "watch", false, "Rerun tests when sources change")
	rootCmd.AddCommand(testCmd)
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run the project test suite with the external toolchain",
	Long: `Run the contract test suite by invoking the toolchain test runner.

With --fork-network, the named network profile is resolved and its RPC
URL is passed as the fork source, so tests run against real chain state.

Examples:
  kiln test
  kiln test --match testOwnerIsDeployer --verbosity 3
  kiln test --fork-network sepolia`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, m, err := requireProject()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := gateToolchain(ctx, m); err != nil {
			return err
		}

		testArgs := []string{"test"}
		if testMatch != "" {
			testArgs = append(testArgs, "--match-test", testMatch)
		}
		if testVerbosity > 0 {
			testArgs = append(testArgs, "-"+strings.Repeat("v", testVerbosity))
		}
		if testForkNetwork != "" {
			net, err := network.Resolve(root, m, testForkNetwork)
			if err != nil {
				return err
			}
			testArgs = append(testArgs, "--fork-url", net.RPCURL)
		}

		run := func() (*toolchain.Output, error) {
			tracef("exec: forge %v (dir %s)", testArgs, root)
			return toolchain.Run(ctx, toolchain.Invocation{
				Tool:   toolchain.ToolForge,
				Args:   testArgs,
				Dir:    root,
				Stdout: cmd.OutOrStdout(),
				Stderr: cmd.ErrOrStderr(),
			})
		}

		if testWatch {
			return watchProject(ctx, cmd, root, m, func() {
				if out, err := run(); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "test: %v\n", err)
				} else if out.ExitCode != 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "tests failed (exit code %d)\n", out.ExitCode)
				}
			})
		}

		out, err := run()
		if err != nil {
			return err
		}
		if out.ExitCode != 0 {
			return fmt.Errorf("toolchain tests exited with code %d", out.ExitCode)
		}
		return nil
	},
}
