package cli

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kiln-labs/kiln/internal/config"
	"github.com/kiln-labs/kiln/internal/history"
	"github.com/kiln-labs/kiln/internal/keystore"
	"github.com/kiln-labs/kiln/internal/network"
	"github.com/kiln-labs/kiln/internal/project"
	"github.com/kiln-labs/kiln/internal/toolchain"
)

// privateKeyEnv is the env var the toolchain script reads its
// broadcaster key from (vm.envUint in the deploy script).
const privateKeyEnv = "PRIVATE_KEY"

var (
	scriptNetwork   string
	scriptAccount   string
	scriptBroadcast bool
	scriptVerify    bool
)

func scriptFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&scriptNetwork, "network", "", "Network profile to run against (default: config default_network)")
	cmd.Flags().StringVar(&scriptAccount, "account", "", "Keystore account whose key is injected for broadcasting")
	cmd.Flags().BoolVar(&scriptBroadcast, "broadcast", false, "Send transactions instead of simulating")
	cmd.Flags().BoolVar(&scriptVerify, "verify", false, "Ask the toolchain to verify deployed sources")
}

func init() {
	scriptFlags(scriptCmd)
	scriptFlags(deployCmd)
	rootCmd.AddCommand(scriptCmd)
	rootCmd.AddCommand(deployCmd)
}

var scriptCmd = &cobra.Command{
	Use:   "script <path>",
	Short: "Run a deployment script through the toolchain",
	Long: `Run a script with the toolchain script runner, optionally broadcasting
to a named network profile. Broadcast runs are recorded in the local
deployment ledger.

Examples:
  kiln script script/DeployFundMe.s.sol --network local --broadcast
  kiln script script/DeployFundMe.s.sol --network sepolia --account deployer --broadcast --verify`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScript(cmd, args[0])
	},
}

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Run the project's default deploy script",
	Long: `Run the deploy script configured under deploy.script in kiln.yaml.
Equivalent to ` + "`kiln script <deploy.script>`" + ` with the same flags.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, m, err := requireProject()
		if err != nil {
			return err
		}
		if m.Deploy.Script == "" {
			return fmt.Errorf("no deploy.script configured in %s", project.ManifestFileName)
		}
		return runScript(cmd, m.Deploy.Script)
	},
}

func runScript(cmd *cobra.Command, scriptPath string) error {
	root, m, err := requireProject()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := gateToolchain(ctx, m); err != nil {
		return err
	}

	// Resolve the network profile: flag, then configured default. A dry
	// simulation without any network is allowed; broadcasting is not.
	netName := scriptNetwork
	if netName == "" {
		netName = config.Get(config.KeyDefaultNetwork)
	}

	var net *network.Resolved
	if netName != "" {
		net, err = network.Resolve(root, m, netName)
		if err != nil {
			return err
		}
	} else if scriptBroadcast {
		return fmt.Errorf("--broadcast requires --network (or config %s)", config.KeyDefaultNetwork)
	}

	scriptArgs := []string{"script", scriptPath}
	if net != nil {
		scriptArgs = append(scriptArgs, "--rpc-url", net.RPCURL)
	}
	if scriptBroadcast {
		scriptArgs = append(scriptArgs, "--broadcast")
	}
	if scriptVerify || (net != nil && net.Verify && scriptBroadcast) {
		scriptArgs = append(scriptArgs, "--verify")
	}

	// The key never appears in argv: the script reads it from the child
	// environment via vm.envUint(privateKeyEnv).
	var extraEnv []string
	if scriptBroadcast {
		accountName := scriptAccount
		if accountName == "" && net != nil {
			accountName = net.Account
		}
		if accountName == "" {
			return fmt.Errorf("--broadcast requires --account (or an account on network %q)", net.Name)
		}
		key, err := decryptAccount(cmd, accountName)
		if err != nil {
			return err
		}
		extraEnv = append(extraEnv, privateKeyEnv+"="+key)
	}

	started := time.Now()
	tracef("exec: forge %v (dir %s)", scriptArgs, root)
	out, err := toolchain.Run(ctx, toolchain.Invocation{
		Tool:   toolchain.ToolForge,
		Args:   scriptArgs,
		Dir:    root,
		Env:    extraEnv,
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	// Ledger writes are advisory and never mask the toolchain result.
	if scriptBroadcast {
		recordRun(cmd, m, net, scriptPath, out, started)
	}

	if out.ExitCode != 0 {
		return fmt.Errorf("toolchain script exited with code %d", out.ExitCode)
	}
	return nil
}

// decryptAccount prompts for the account passphrase and returns the
// plaintext key material.
func decryptAccount(cmd *cobra.Command, name string) (string, error) {
	store := keystore.New(config.KeystoreDir())
	pass, err := promptSecret(cmd, fmt.Sprintf("Passphrase for account %q: ", name))
	if err != nil {
		return "", err
	}
	key, err := store.Decrypt(name, []byte(pass))
	if err != nil {
		return "", fmt.Errorf("account %q: %w", name, err)
	}
	return string(key), nil
}

// recordRun writes a broadcast run to the deployment ledger.
func recordRun(cmd *cobra.Command, m *project.Manifest, net *network.Resolved, scriptPath string, out *toolchain.Output, started time.Time) {
	status := history.StatusSuccess
	if out.ExitCode != 0 {
		status = history.StatusFailed
	}

	run := &history.Run{
		ID:         uuid.NewString(),
		Project:    m.Name,
		Network:    net.Name,
		ChainID:    net.ChainID,
		Script:     filepath.ToSlash(scriptPath),
		Command:    "script",
		Status:     status,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	deployments := history.ParseDeployments(out.Stdout)

	store, err := history.Open(config.HistoryPath())
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: deployment ledger unavailable: %v\n", err)
		return
	}
	defer store.Close()

	if err := store.RecordRun(run, deployments); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: recording deployment: %v\n", err)
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Recorded run %s (%d deployment(s))\n", run.ID[:8], len(deployments))
}
