package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/The-Noona-Project/Noona-Vault/internal/core"
)

var keyCreateCmd = &cobra.Command{
	Use:   "create [service]",
	Short: "Generate and publish a key pair for a service",
	Long: `Generates a key pair, publishes the public key and writes the key files to --out.
An existing key of the service is overwritten, tokens signed with the old key stop verifying.

A running vault discards the private key of pairs it generates, so only the public
key is written in that mode. To obtain a signing key, use --direct or generate the
pair with 'vault key generate' and publish it with 'vault key update'.`,
	Example: `  # through a running vault, public key only
  vault key create noona-moon --server localhost:3120

  # straight into the directory, keeps the private key
  vault key create noona-moon --direct -c vault.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		identity, err := requireArg(args, "service")
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("out")
		force, _ := cmd.Flags().GetBool("force")

		var pair core.KeyPair
		if f.Direct {
			registry, closeDir, err := f.GetLocalRegistry()
			if err != nil {
				return err
			}
			defer func() {
				_ = closeDir()
			}()
			if pair, err = registry.CreateKey(cmd.Context(), identity); err != nil {
				return logError(err, "", "failed to create key")
			}
		} else {
			cli, err := f.GetClient()
			if err != nil {
				return err
			}
			log.Info().Msgf("Creating key for %s...", identity)
			resp, correlation, err := cli.CreateKey(cmd.Context(), identity.String())
			if err != nil {
				return logError(err, correlation, "failed to create key")
			}
			pair = core.KeyPair{PublicKey: resp.PublicKey}
			log.Warn().Msg("the vault does not hand out private keys, only the public key is written")
		}

		logSuccess("published key %s", bold(identity.DirectoryKey()))
		return writeKeyPair(out, identity, pair, force)
	},
}

func init() {
	keyCmd.AddCommand(keyCreateCmd)

	keyCreateCmd.Flags().StringP("out", "o", ".", "Directory to write the key files to")
	keyCreateCmd.Flags().Bool("force", false, "Overwrite existing key files")
	f.bindDirectFlag(keyCreateCmd.Flags())
}
