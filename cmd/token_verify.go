package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/The-Noona-Project/Noona-Vault/internal/config"
	"github.com/The-Noona-Project/Noona-Vault/internal/core"
	"github.com/The-Noona-Project/Noona-Vault/internal/tokens"
	"github.com/The-Noona-Project/Noona-Vault/pkg/client"
)

var tokenVerifyCmd = &cobra.Command{
	Use:   "verify [token]",
	Short: "Verify a token against the published key of its issuer",
	Long: `Verifies a token the same way the vault does for protected routes.
Use "-" to read the token from stdin.`,
	Example: `  vault token sign --identity noona-moon --private-key ./noona-moon.pem | vault token verify - --server localhost:3120`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := args[0]
		if raw == "-" {
			data, err := os.ReadFile("/dev/stdin")
			if err != nil {
				return fmt.Errorf("failed to read token from stdin: %w", err)
			}
			raw = strings.TrimSpace(string(data))
		}
		skew, _ := cmd.Flags().GetDuration("clock-skew")

		var reader core.KeyReader
		if f.Direct {
			registry, closeDir, err := f.GetLocalRegistry()
			if err != nil {
				return err
			}
			defer func() {
				_ = closeDir()
			}()
			reader = registry
		} else {
			cli, err := f.GetClient()
			if err != nil {
				return err
			}
			reader = remoteKeys{cli: cli}
		}

		claims, err := tokens.NewVerifier(reader, tokens.WithClockSkew(skew)).Verify(cmd.Context(), raw)
		if err != nil {
			return logError(err, "", "token rejected")
		}

		logSuccess("token is valid, issued by %s", bold(claims.Issuer))
		printClaims(claims)
		return nil
	},
}

// remoteKeys reads public keys through the vault API.
type remoteKeys struct {
	cli *client.Client
}

func (r remoteKeys) ReadKey(ctx context.Context, identity core.ServiceIdentity) (string, error) {
	resp, _, err := r.cli.ReadKey(ctx, identity.String())
	switch {
	case err == nil:
		return resp.PublicKey, nil
	case errors.Is(err, client.ErrNotFound):
		return "", core.ErrNotFound
	default:
		return "", fmt.Errorf("%w: %v", core.ErrDirectoryUnavailable, err)
	}
}

func printClaims(claims *core.Claims) {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Claim", "Value"})

	names := make([]string, 0, len(claims.Attributes))
	for name := range claims.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t.AppendRow(table.Row{bold(name), truncate(fmt.Sprint(claims.Attributes[name]), 60)})
	}
	t.AppendFooter(table.Row{"expires in", time.Until(claims.ExpiresAt).Round(time.Second).String()})

	applyTableFormat(t)
	t.Render()
}

func init() {
	tokenCmd.AddCommand(tokenVerifyCmd)

	tokenVerifyCmd.Flags().Duration("clock-skew", config.DefaultClockSkew, "Leeway for exp, nbf and iat")
	f.bindDirectFlag(tokenVerifyCmd.Flags())
}
