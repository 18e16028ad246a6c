package cli

import (
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/kiln-labs/kiln/internal/toolchain"
	"github.com/spf13/cobra"
)

var nodePort int

func init() {
	runNodeCmd.Flags().IntVar(&nodePort, "port", 0, "Port for the local node (default: toolchain default)")
	rootCmd.AddCommand(runNodeCmd)
}

var runNodeCmd = &cobra.Command{
	Use:   "run-node",
	Short: "Start a local development node",
	Long: `Start the toolchain's local development node and stream its output
until interrupted. Deploy against it with the "local" network profile.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var nodeArgs []string
		if nodePort > 0 {
			nodeArgs = append(nodeArgs, "--port", strconv.Itoa(nodePort))
		}

		tracef("exec: anvil %v", nodeArgs)
		out, err := toolchain.Run(ctx, toolchain.Invocation{
			Tool:   toolchain.ToolNode,
			Args:   nodeArgs,
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		})
		if err != nil {
			return err
		}

		// Interrupting the node is a normal shutdown, not a failure.
		if ctx.Err() != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Node stopped.")
			return nil
		}
		if out.ExitCode != 0 {
			return fmt.Errorf("node exited with code %d", out.ExitCode)
		}
		return nil
	},
}
