package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/The-Noona-Project/Noona-Vault/internal/buildinfo"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show information about the Noona Vault installation",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := f.ServerAddr(); err != nil {
			return infoLocally(cmd, args)
		}
		return infoRemote(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func infoRemote(cmd *cobra.Command, _ []string) error {
	cli, err := f.GetClient()
	if err != nil {
		return err
	}
	log.Info().Msg("Fetching build info from server...")
	info, correlation, err := cli.Version(cmd.Context())
	if err != nil {
		return logError(err, correlation, "failed to get info from server")
	}
	printInfo(info)

	status, correlation, err := cli.DirectoryStatus(cmd.Context())
	if err != nil {
		return logError(err, correlation, "failed to get directory status from server")
	}
	online := color.GreenString("online")
	if !status.Directory.Online {
		online = color.RedString("offline")
	}
	fmt.Printf("  %s:   %s (%s)\n", faint("Directory"), status.Directory.Backend, online)

	vaultKey, correlation, err := cli.VaultKey(cmd.Context())
	switch {
	case isNotFound(err):
		fmt.Printf("  %s:   %s\n", faint("Vault key"), faint("not published"))
	case err != nil:
		return logError(err, correlation, "failed to get the vault key from server")
	default:
		fmt.Printf("  %s:   %s\n", faint("Vault key"), vaultKey.Metadata.Fingerprint)
	}
	return nil
}

func infoLocally(_ *cobra.Command, _ []string) error {
	log.Info().Msg("Showing local build info...")
	info := buildinfo.GetBuildInfo()
	printInfo(&info)
	return nil
}

func printInfo(info *buildinfo.Info) {
	fmt.Println(bold("\n── Noona Vault Build Information ──"))
	fmt.Printf("  %s:     %s\n", faint("Service"), info.Service)
	fmt.Printf("  %s:     %s\n", faint("Version"), info.Version)
	fmt.Printf("  %s:      %s\n", faint("Commit"), info.CommitHash)
}
