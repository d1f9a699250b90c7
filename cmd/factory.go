package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/The-Noona-Project/Noona-Vault/internal/audit"
	"github.com/The-Noona-Project/Noona-Vault/internal/cliconfig"
	"github.com/The-Noona-Project/Noona-Vault/internal/config"
	"github.com/The-Noona-Project/Noona-Vault/internal/core"
	"github.com/The-Noona-Project/Noona-Vault/internal/keys"
	"github.com/The-Noona-Project/Noona-Vault/internal/store"
	"github.com/The-Noona-Project/Noona-Vault/internal/tokens"
	"github.com/The-Noona-Project/Noona-Vault/pkg/client"
)

type Factory struct {
	// RemoteAddr is the address of the vault to connect to.
	RemoteAddr string

	// ConfigPath contains the server configuration (directory backend, auth, audit, ...)
	ConfigPath string

	// Direct makes key commands talk to the directory instead of a remote vault.
	Direct bool
}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) ServerAddr() (string, error) {
	server := f.RemoteAddr // prio 1: command-line flag
	if server == "" {
		server = viper.GetString(ServerAddrKey) // prio 2: config/env
	}
	if server == "" {
		return "", fmt.Errorf("server address not configured (use --server or set VAULT_ADDR)")
	}
	return server, nil
}

// GetClient returns a client for remote operations. Requests are signed when
// an identity is configured for the server.
func (f *Factory) GetClient() (*client.Client, error) {
	server, err := f.ServerAddr()
	if err != nil {
		return nil, err
	}

	signer, err := f.GetSigner(server)
	if err != nil {
		return nil, err
	}
	if signer != nil {
		return client.New(server, client.WithSigner(signer)), nil
	}

	// a pre-signed token, e.g. from another service
	return client.New(server, client.WithAuthToken(viper.GetString(TokenKey))), nil
}

// GetSigner returns the signer of the configured identity, or nil if there is none.
func (f *Factory) GetSigner(server string, opts ...tokens.SignerOption) (*tokens.Signer, error) {
	identity := viper.GetString(IdentityKey) // prio 1: flag/env
	keyFile := viper.GetString(PrivateKeyKey)

	if identity == "" && server != "" { // prio 2: saved identity
		cfg, err := cliconfig.Load()
		switch {
		case err == nil:
			if id, err := cfg.GetIdentity(server); err == nil {
				identity, keyFile = id.Service, id.PrivateKeyFile
			} else if !errors.Is(err, cliconfig.ErrIdentityNotFound) {
				return nil, err
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, err
		}
	}

	if identity == "" {
		return nil, nil
	}
	if keyFile == "" {
		return nil, fmt.Errorf("identity '%s' has no private key (use --private-key or set VAULT_PRIVATE_KEY)", identity)
	}
	return newSigner(identity, keyFile, opts...)
}

func newSigner(identity, keyFile string, opts ...tokens.SignerOption) (*tokens.Signer, error) {
	privateKeyPEM, err := readPEM(keyFile)
	if err != nil {
		return nil, err
	}
	return tokens.NewSigner(core.ServiceIdentity(identity), privateKeyPEM, opts...)
}

func (f *Factory) LoadServerConfig() (*config.Config, error) {
	if f.ConfigPath == "" {
		return config.Default(), nil
	}
	return config.Load(f.ConfigPath)
}

// GetLocalRegistry opens the configured key directory directly.
// The returned function closes the directory.
func (f *Factory) GetLocalRegistry() (*keys.Registry, func() error, error) {
	cfg, err := f.LoadServerConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.Directory.Type == store.MemoryType {
		return nil, nil, fmt.Errorf("direct mode needs a persistent directory (use --config)")
	}

	dir, err := store.Build(cfg.Directory)
	if err != nil {
		return nil, nil, fmt.Errorf("building key directory: %w", err)
	}

	registry := keys.NewRegistry(dir,
		keys.WithTimeout(cfg.Directory.Timeout),
		keys.WithAuditor(audit.NewNoopAuditor()), // local CLI operations are not audited
	)
	return registry, dir.Close, nil
}

func (f *Factory) bindConfigFlag(flags *pflag.FlagSet) {
	flags.StringVarP(&f.ConfigPath, "config", "c", "", "The Noona Vault server config file to use")
}

func (f *Factory) bindDirectFlag(flags *pflag.FlagSet) {
	flags.BoolVar(&f.Direct, "direct", false, "Talk to the key directory from --config instead of a remote vault")
	f.bindConfigFlag(flags)
}

func readPEM(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading key file '%s': %w", path, err)
	}
	return strings.TrimSpace(string(data)) + "\n", nil
}
