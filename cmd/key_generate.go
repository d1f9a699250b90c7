package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/The-Noona-Project/Noona-Vault/internal/audit"
	"github.com/The-Noona-Project/Noona-Vault/internal/keys"
)

var keyGenerateCmd = &cobra.Command{
	Use:   "generate [service]",
	Short: "Generate a key pair locally without publishing it",
	Long: `Generates a key pair and writes it to <out>/<service>.pem and <out>/<service>.pub.pem.
Publish the public half afterwards with 'vault key update'.`,
	Example: `  vault key generate noona-moon --out ./keys`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		identity, err := requireArg(args, "service")
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("out")
		force, _ := cmd.Flags().GetBool("force")

		pair, err := keys.GenerateKeyPair()
		if err != nil {
			return err
		}
		if err := writeKeyPair(out, identity, pair, force); err != nil {
			return err
		}
		fmt.Printf("  %s: %s\n", faint("Fingerprint"), audit.Fingerprint(pair.PublicKey))
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keyGenerateCmd)

	keyGenerateCmd.Flags().StringP("out", "o", ".", "Directory to write the key files to")
	keyGenerateCmd.Flags().Bool("force", false, "Overwrite existing key files")
}
