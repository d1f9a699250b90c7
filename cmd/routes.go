package cmd

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/The-Noona-Project/Noona-Vault/internal/api"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the HTTP routes and their auth level",
	RunE: func(cmd *cobra.Command, args []string) error {
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Method", "Path", "Auth", "Description"})
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, Align: text.AlignRight},
		})

		for _, p := range api.Policies() {
			t.AppendRow(table.Row{
				bold(p.Method),
				p.Path,
				levelString(p.Level),
				faint(p.Description),
			})
		}

		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
}
