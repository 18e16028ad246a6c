package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/kiln-labs/kiln/internal/config"
	"github.com/kiln-labs/kiln/internal/keystore"
	"github.com/spf13/cobra"
)

var accountImportAddress string

func init() {
	accountImportCmd.Flags().StringVar(&accountImportAddress, "address", "", "Address hint stored alongside the encrypted key")

	accountCmd.AddCommand(accountImportCmd)
	accountCmd.AddCommand(accountListCmd)
	accountCmd.AddCommand(accountRemoveCmd)
	rootCmd.AddCommand(accountCmd)
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage encrypted deployment accounts",
	Long: `Manage the local keystore of deployment keys at ~/.kiln/keystore/.
Keys are encrypted at rest and decrypted only when a command needs to
sign, never written back in plaintext.`,
}

var accountImportCmd = &cobra.Command{
	Use:   "import <name>",
	Short: "Import a key into the encrypted keystore",
	Long: `Import a raw private key under a memorable account name. The key and
an encryption passphrase are read from stdin so neither appears in argv
or shell history.

Example:
  kiln account import deployer`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		store := keystore.New(config.KeystoreDir())

		key, err := promptSecret(cmd, "Private key: ")
		if err != nil {
			return err
		}
		pass, err := promptSecret(cmd, "Passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := promptSecret(cmd, "Repeat passphrase: ")
		if err != nil {
			return err
		}
		if pass != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := store.Import(name, []byte(key), []byte(pass), accountImportAddress); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Imported account %q to %s\n", name, store.Path(name))
		fmt.Fprintf(cmd.OutOrStdout(), "Use it with `kiln deploy --account %s --broadcast`.\n", name)
		return nil
	},
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List keystore accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := keystore.New(config.KeystoreDir())
		names, err := store.List()
		if err != nil {
			return err
		}

		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No accounts yet. Import one with `kiln account import <name>`.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tADDRESS")
		for _, name := range names {
			addr, err := store.Address(name)
			if err != nil {
				addr = "(unreadable)"
			}
			fmt.Fprintf(w, "%s\t%s\n", name, addr)
		}
		return w.Flush()
	},
}

var accountRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Delete a keystore account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := keystore.New(config.KeystoreDir())
		if err := store.Remove(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed account %q\n", args[0])
		return nil
	},
}
