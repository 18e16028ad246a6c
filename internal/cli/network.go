package cli

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/kiln-labs/kiln/internal/network"
	"github.com/kiln-labs/kiln/internal/project"
	"github.com/spf13/cobra"
)

var (
	netAddRPCURL    string
	netAddRPCURLEnv string
	netAddChainID   uint64
	netAddAccount   string
	netAddVerify    bool
)

func init() {
	networkAddCmd.Flags().StringVar(&netAddRPCURL, "rpc-url", "", "Literal RPC endpoint URL")
	networkAddCmd.Flags().StringVar(&netAddRPCURLEnv, "rpc-url-env", "", "Env var holding the RPC endpoint URL")
	networkAddCmd.Flags().Uint64Var(&netAddChainID, "chain-id", 0, "Expected chain id")
	networkAddCmd.Flags().StringVar(&netAddAccount, "account", "", "Default keystore account for this network")
	networkAddCmd.Flags().BoolVar(&netAddVerify, "verify", false, "Verify deployed sources by default")

	networkCmd.AddCommand(networkListCmd)
	networkCmd.AddCommand(networkShowCmd)
	networkCmd.AddCommand(networkAddCmd)
	networkCmd.AddCommand(networkRemoveCmd)
	rootCmd.AddCommand(networkCmd)
}

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage network profiles in kiln.yaml",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List network profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, m, err := requireProject()
		if err != nil {
			return err
		}

		if len(m.Networks) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No networks defined yet. Add one with `kiln network add`.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tCHAIN ID\tRPC\tACCOUNT\tVERIFY")
		for _, name := range network.Names(m) {
			prof := m.Networks[name]
			rpc := prof.RPCURL
			if prof.RPCURLEnv != "" {
				rpc = "$" + prof.RPCURLEnv
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%v\n", name, prof.ChainID, rpc, prof.Account, prof.Verify)
		}
		return w.Flush()
	},
}

var networkShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a resolved network profile",
	Long:  `Show a profile with its RPC URL indirection resolved, as the toolchain would see it.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, m, err := requireProject()
		if err != nil {
			return err
		}

		net, err := network.Resolve(root, m, args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Name:     %s\n", net.Name)
		fmt.Fprintf(cmd.OutOrStdout(), "RPC URL:  %s\n", net.RPCURL)
		fmt.Fprintf(cmd.OutOrStdout(), "Chain ID: %d\n", net.ChainID)
		fmt.Fprintf(cmd.OutOrStdout(), "Account:  %s\n", net.Account)
		fmt.Fprintf(cmd.OutOrStdout(), "Verify:   %v\n", net.Verify)
		return nil
	},
}

var networkAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a network profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := validateName(name); err != nil {
			return err
		}
		if netAddRPCURL == "" && netAddRPCURLEnv == "" {
			return fmt.Errorf("one of --rpc-url or --rpc-url-env is required")
		}

		root, m, err := requireProject()
		if err != nil {
			return err
		}
		if _, exists := m.Networks[name]; exists {
			return fmt.Errorf("network %q already exists; remove it first", name)
		}

		if m.Networks == nil {
			m.Networks = map[string]project.Network{}
		}
		m.Networks[name] = project.Network{
			RPCURL:    netAddRPCURL,
			RPCURLEnv: netAddRPCURLEnv,
			ChainID:   netAddChainID,
			Account:   netAddAccount,
			Verify:    netAddVerify,
		}

		if err := project.Save(filepath.Join(root, project.ManifestFileName), m); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added network %q\n", name)
		return nil
	},
}

var networkRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a network profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		root, m, err := requireProject()
		if err != nil {
			return err
		}
		if _, exists := m.Networks[name]; !exists {
			return fmt.Errorf("network %q not found", name)
		}

		delete(m.Networks, name)
		if err := project.Save(filepath.Join(root, project.ManifestFileName), m); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed network %q\n", name)
		return nil
	},
}
