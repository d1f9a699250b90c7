package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/The-Noona-Project/Noona-Vault/internal/cliconfig"
)

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Manage the identity used to sign requests",
}

var identityUseCmd = &cobra.Command{
	Use:   "use [service] [private key file]",
	Short: "Sign requests to --server as the given service",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := f.ServerAddr()
		if err != nil {
			return err
		}
		identity, err := parseIdentity(args[0])
		if err != nil {
			return err
		}
		keyFile, err := filepath.Abs(args[1])
		if err != nil {
			return fmt.Errorf("resolving key file: %w", err)
		}
		// fail early if the key is unusable
		if _, err := newSigner(identity.String(), keyFile); err != nil {
			return err
		}

		cfg, err := cliconfig.Load()
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("loading config: %w", err)
			}
			cfg = &cliconfig.CLIConfig{}
		}
		if err := cfg.SetIdentity(server, &cliconfig.Identity{
			Service:        identity.String(),
			PrivateKeyFile: keyFile,
		}); err != nil {
			return err
		}
		if err := cliconfig.Save(cfg); err != nil {
			return logError(err, "", "could not save identity")
		}

		logSuccess("requests to %s are now signed as %s", bold(server), bold(identity))
		return nil
	},
}

var identityShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List saved identities",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cliconfig.Load()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				fmt.Println(faint("no identities saved"))
				return nil
			}
			return err
		}

		t := table.NewWriter()
		t.AppendHeader(table.Row{"Server", "Service", "Private Key"})
		for host, id := range cfg.Identities {
			t.AppendRow(table.Row{bold(host), id.Service, faint(id.PrivateKeyFile)})
		}
		t.SortBy([]table.SortBy{{Number: 1, Mode: table.Asc}})
		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(identityCmd)
	identityCmd.AddCommand(identityUseCmd)
	identityCmd.AddCommand(identityShowCmd)
}
