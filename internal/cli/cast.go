package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/kiln-labs/kiln/internal/config"
	"github.com/kiln-labs/kiln/internal/network"
	"github.com/kiln-labs/kiln/internal/toolchain"
	"github.com/spf13/cobra"
)

var (
	callNetwork string
	sendNetwork string
	sendAccount string
)

func init() {
	callCmd.Flags().StringVar(&callNetwork, "network", "", "Network profile to query")
	sendCmd.Flags().StringVar(&sendNetwork, "network", "", "Network profile to send on")
	sendCmd.Flags().StringVar(&sendAccount, "account", "", "Keystore account that signs the transaction")
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(sendCmd)
}

var callCmd = &cobra.Command{
	Use:   "call <to> <sig> [args...]",
	Short: "Read contract state via the toolchain RPC utility",
	Long: `Perform a read-only contract call through the toolchain's RPC
utility against a named network profile.

Example:
  kiln call 0x1234... "value()(uint256)" --network local`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCast(cmd, callNetwork, "", append([]string{"call"}, args...))
	},
}

var sendCmd = &cobra.Command{
	Use:   "send <to> <sig> [args...]",
	Short: "Send a contract transaction via the toolchain RPC utility",
	Long: `Send a state-changing transaction through the toolchain's RPC
utility, signed with a keystore account.

Example:
  kiln send 0x1234... "setValue(uint256)" 42 --network local --account deployer`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCast(cmd, sendNetwork, sendAccount, append([]string{"send"}, args...))
	},
}

// runCast resolves the network, injects the signer key for sends, and
// delegates to the cast-compatible binary.
func runCast(cmd *cobra.Command, netName, accountName string, castArgs []string) error {
	root, m, err := requireProject()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if netName == "" {
		netName = config.Get(config.KeyDefaultNetwork)
	}
	if netName == "" {
		return fmt.Errorf("--network is required (or set config %s)", config.KeyDefaultNetwork)
	}

	net, err := network.Resolve(root, m, netName)
	if err != nil {
		return err
	}
	castArgs = append(castArgs, "--rpc-url", net.RPCURL)

	var extraEnv []string
	if accountName == "" {
		accountName = net.Account
	}
	if castArgs[0] == "send" {
		if accountName == "" {
			return fmt.Errorf("send requires --account (or an account on network %q)", net.Name)
		}
		key, err := decryptAccount(cmd, accountName)
		if err != nil {
			return err
		}
		extraEnv = append(extraEnv, privateKeyEnv+"="+key)
	}

	tracef("exec: cast %v (dir %s)", castArgs, root)
	out, err := toolchain.Run(ctx, toolchain.Invocation{
		Tool:   toolchain.ToolCast,
		Args:   castArgs,
		Dir:    root,
		Env:    extraEnv,
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	if out.ExitCode != 0 {
		return fmt.Errorf("toolchain %s exited with code %d", castArgs[0], out.ExitCode)
	}
	return nil
}
