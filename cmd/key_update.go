package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var keyUpdateCmd = &cobra.Command{
	Use:   "update [service] [public key file]",
	Short: "Replace the published public key of a service",
	Long: `Publishes the given PEM public key for the service. Remote updates must be
signed, configure an identity with 'vault identity use' or --identity.`,
	Example: `  vault key generate noona-moon -o ./next
  vault key update noona-moon ./next/noona-moon.pub.pem --server localhost:3120`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		identity, err := requireArg(args[:1], "service")
		if err != nil {
			return err
		}
		publicKeyPEM, err := readPEM(args[1])
		if err != nil {
			return err
		}

		if f.Direct {
			registry, closeDir, err := f.GetLocalRegistry()
			if err != nil {
				return err
			}
			defer func() {
				_ = closeDir()
			}()
			if err := registry.UpdateKey(cmd.Context(), identity, publicKeyPEM); err != nil {
				return logError(err, "", "failed to update key")
			}
		} else {
			cli, err := f.GetClient()
			if err != nil {
				return err
			}
			log.Info().Msgf("Updating key of %s...", identity)
			if correlation, err := cli.UpdateKey(cmd.Context(), identity.String(), publicKeyPEM); err != nil {
				return logError(err, correlation, "failed to update key")
			}
		}

		logSuccess("public key updated for %s", bold(identity))
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keyUpdateCmd)

	f.bindDirectFlag(keyUpdateCmd.Flags())
}
