package cmd

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/The-Noona-Project/Noona-Vault/pkg/client"
)

// auditLogCmd represents the audit log command
var auditLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Retrieve and display audit log entries",
	Long:  "Lists recent key lifecycle events. Requires a signed identity.",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := cmd.Flags().GetUint("limit")
		if err != nil {
			return err
		}
		opts := client.ListAuditOpts{Limit: limit}
		opts.Service, _ = cmd.Flags().GetString("service")
		opts.Actor, _ = cmd.Flags().GetString("actor")
		opts.Action, _ = cmd.Flags().GetString("action")
		opts.CorrelationID, _ = cmd.Flags().GetString("correlation-id")

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		log.Info().Msg("Fetching audit log...")
		entries, correlation, err := cli.ListAudit(cmd.Context(), opts)
		if err != nil {
			return logError(err, correlation, "failed to retrieve audit log")
		}

		log.Info().Msgf("Retrieved %d audit entries", len(entries))

		t := table.NewWriter()
		t.AppendHeader(table.Row{
			"Time", "Action", "Service", "Actor", "OK", "Fingerprint", "Error",
		})

		for _, e := range entries {
			status := greenCheck
			if !e.Success {
				status = redCross
			}

			actor := faint("(public)")
			if e.Actor != "" {
				actor = e.Actor.String()
			}

			t.AppendRow(table.Row{
				e.Time.Format(time.RFC3339),
				e.Action,
				e.Service,
				actor,
				status,
				truncate(e.Fingerprint, 24),
				e.Error,
			})
		}

		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func init() {
	auditCmd.AddCommand(auditLogCmd)

	auditLogCmd.Flags().UintP("limit", "n", 25, "Number of audit entries to retrieve")
	auditLogCmd.Flags().String("service", "", "Only show entries for this service")
	auditLogCmd.Flags().String("actor", "", "Only show entries made by this service")
	auditLogCmd.Flags().String("action", "", "Only show entries with this action (e.g. key.delete)")
	auditLogCmd.Flags().String("correlation-id", "", "Only show entries of this request")
}
