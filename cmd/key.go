package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/The-Noona-Project/Noona-Vault/internal/core"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage published service keys",
	Long: `Create, read, rotate and remove the public keys of Noona services.
By default the commands talk to the vault given with --server. With --direct
they use the key directory from --config instead.`,
}

func init() {
	rootCmd.AddCommand(keyCmd)
}

// keyFiles returns the paths the key pair of identity is written to.
func keyFiles(dir string, identity core.ServiceIdentity) (public, private string) {
	base := filepath.Join(dir, identity.String())
	return base + ".pub.pem", base + ".pem"
}

func writeKeyPair(dir string, identity core.ServiceIdentity, pair core.KeyPair, force bool) error {
	publicPath, privatePath := keyFiles(dir, identity)
	if pair.PrivateKey != "" {
		if err := writeFile(privatePath, pair.PrivateKey, 0600, force); err != nil {
			return err
		}
		logSuccess("private key written to %s", bold(privatePath))
	}
	if err := writeFile(publicPath, pair.PublicKey, 0644, force); err != nil {
		return err
	}
	logSuccess("public key written to %s", bold(publicPath))
	return nil
}

func requireArg(args []string, what string) (core.ServiceIdentity, error) {
	if len(args) != 1 || args[0] == "" {
		return "", fmt.Errorf("%s is required", what)
	}
	return parseIdentity(args[0])
}
