package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/The-Noona-Project/Noona-Vault/internal/tokens"
)

var tokenSignCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign a token as a service",
	Long: `Signs a token with the private key of --identity. The token can be sent as
"Authorization: Bearer <token>" to any route protected by the vault.`,
	Example: `  vault token sign --identity noona-moon --private-key ./noona-moon.pem --claim scope=read`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ttl, _ := cmd.Flags().GetDuration("ttl")
		subject, _ := cmd.Flags().GetString("subject")
		claimArgs, _ := cmd.Flags().GetStringToString("claim")
		if ttl <= 0 {
			return fmt.Errorf("--ttl must be positive")
		}

		server, _ := f.ServerAddr() // only used to look up a saved identity
		signer, err := f.GetSigner(server, tokens.WithTTL(ttl))
		if err != nil {
			return err
		}
		if signer == nil {
			return fmt.Errorf("no identity configured (use --identity and --private-key)")
		}

		extra := make(map[string]any, len(claimArgs))
		for k, v := range claimArgs {
			extra[k] = v
		}
		token, err := signer.Sign(subject, extra)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenSignCmd)

	tokenSignCmd.Flags().Duration("ttl", tokens.DefaultTTL, "Lifetime of the token")
	tokenSignCmd.Flags().String("subject", "", "Optional sub claim")
	tokenSignCmd.Flags().StringToString("claim", nil, "Additional claims (key=value)")
}
