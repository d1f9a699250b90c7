package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/The-Noona-Project/Noona-Vault/internal/audit"
)

var keyReadCmd = &cobra.Command{
	Use:     "read [service]",
	Aliases: []string{"get"},
	Short:   "Show the published public key of a service",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		identity, err := requireArg(args, "service")
		if err != nil {
			return err
		}
		raw, _ := cmd.Flags().GetBool("raw")

		var publicKey, source string
		if f.Direct {
			registry, closeDir, err := f.GetLocalRegistry()
			if err != nil {
				return err
			}
			defer func() {
				_ = closeDir()
			}()
			if publicKey, err = registry.ReadKey(cmd.Context(), identity); err != nil {
				if isNotFound(err) {
					return logError(err, "", fmt.Sprintf("no key published for %s", identity))
				}
				return logError(err, "", "failed to read key")
			}
			source = registry.Directory()
		} else {
			cli, err := f.GetClient()
			if err != nil {
				return err
			}
			log.Debug().Msgf("Reading key of %s...", identity)
			resp, correlation, err := cli.ReadKey(cmd.Context(), identity.String())
			if err != nil {
				if isNotFound(err) {
					return logError(err, correlation, fmt.Sprintf("no key published for %s", identity))
				}
				return logError(err, correlation, "failed to read key")
			}
			publicKey, source = resp.PublicKey, resp.Metadata.Source
		}

		if raw {
			fmt.Print(publicKey)
			return nil
		}
		fmt.Println(bold("\n── Public Key ──"))
		fmt.Printf("  %s:     %s\n", faint("Service"), identity)
		fmt.Printf("  %s:    %s\n", faint("Key Name"), identity.DirectoryKey())
		fmt.Printf("  %s:      %s\n", faint("Source"), source)
		fmt.Printf("  %s: %s\n\n", faint("Fingerprint"), audit.Fingerprint(publicKey))
		fmt.Print(publicKey)
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keyReadCmd)

	keyReadCmd.Flags().BoolP("raw", "r", false, "Output only the PEM encoded key")
	f.bindDirectFlag(keyReadCmd.Flags())
}
