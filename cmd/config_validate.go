package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the server configuration file",
	Long:  "Parses the file given with --config, applies defaults and prints the effective settings.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if f.ConfigPath == "" {
			return fmt.Errorf("config file not specified (use --config)")
		}
		cfg, err := f.LoadServerConfig()
		if err != nil {
			log.Error().Err(err).Msg("Configuration is invalid.")
			return BeQuietError{}
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Setting", "Value"})
		t.AppendRows([]table.Row{
			{"listen", cfg.Listen},
			{"directory.type", cfg.Directory.Type},
			{"directory.timeout", cfg.Directory.Timeout},
			{"auth.clock_skew", cfg.Auth.ClockSkew},
			{"audit.enabled", cfg.Audit.Enabled},
			{"self_check.identity", cfg.SelfCheck.Identity},
			{"telemetry.otlp_endpoint", cfg.Telemetry.OTLPEndpoint},
		})
		applyTableFormat(t)
		t.Render()

		logSuccess("Configuration is valid.")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)

	f.bindConfigFlag(configValidateCmd.Flags())
}
