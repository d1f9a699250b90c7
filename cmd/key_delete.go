package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var keyDeleteCmd = &cobra.Command{
	Use:     "delete [service]",
	Aliases: []string{"rm"},
	Short:   "Remove the published public key of a service",
	Long:    `Removes the key. Tokens of the service are rejected from then on.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		identity, err := requireArg(args, "service")
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
			existed, err := registry.DeleteKey(cmd.Context(), identity)
			if err != nil {
				return logError(err, "", "failed to delete key")
			}
			if !existed {
				return logError(fmt.Errorf("no key published for %s", identity), "", "nothing to delete")
			}
		} else {
			cli, err := f.GetClient()
			if err != nil {
				return err
			}
			log.Info().Msgf("Deleting key of %s...", identity)
			if correlation, err := cli.DeleteKey(cmd.Context(), identity.String()); err != nil {
				if isNotFound(err) {
					return logError(err, correlation, "nothing to delete")
				}
				return logError(err, correlation, "failed to delete key")
			}
		}

		logSuccess("public key deleted for %s", bold(identity))
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keyDeleteCmd)

	f.bindDirectFlag(keyDeleteCmd.Flags())
}
