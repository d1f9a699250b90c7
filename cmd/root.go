package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/The-Noona-Project/Noona-Vault/internal/buildinfo"
	"github.com/The-Noona-Project/Noona-Vault/internal/logging"
)

// global flags
var (
	userConfig string
	f          = NewFactory()
)

const (
	ServerAddrKey = "addr"
	IdentityKey   = "identity"
	PrivateKeyKey = "private_key"
	TokenKey      = "token"
)

var rootCmd = &cobra.Command{
	Use:   "vault",
	Short: fmt.Sprintf("Noona Vault (version: %s, commit: %s)", buildinfo.Version, buildinfo.CommitHash),
	Long: `Noona Vault publishes the public keys of Noona services and authorizes
requests between them. Services sign short-lived tokens with their private key,
the vault verifies them against the published public key of the issuer.`,
	Version: buildinfo.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envErr := loadDotEnv()
		configPath, configErr := initConfig()
		logging.Init(nil)
		if envErr != nil { // handle errors after logging is initialized
			return envErr
		}
		if configErr != nil {
			return configErr
		}
		if configPath != "" {
			log.Debug().Msgf("using config file: %s", configPath)
		}
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		var quiet BeQuietError
		if !errors.As(err, &quiet) {
			log.Error().Err(err).Msg("execution failed")
		}
		os.Exit(1)
	}
}

func init() {
	// setup pre-flag logger
	logging.InitDefault()

	rootCmd.PersistentFlags().StringVar(&userConfig, "user-config", "",
		"User configuration file for default values (default is $HOME/.vault.yaml)")

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	_ = viper.BindPFlag(logging.LevelKey, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("log-format", logging.FormatConsole, "Log format (console, json)")
	_ = viper.BindPFlag(logging.FormatKey, rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.PersistentFlags().Bool("no-color", false, "Disable color output")
	_ = viper.BindPFlag(logging.NoColorKey, rootCmd.PersistentFlags().Lookup("no-color"))

	rootCmd.PersistentFlags().StringVar(&f.RemoteAddr, "server", "", "Address of the remote Noona Vault")
	_ = viper.BindPFlag(ServerAddrKey, rootCmd.PersistentFlags().Lookup("server"))

	rootCmd.PersistentFlags().String("identity", "", "Service identity to sign requests with")
	_ = viper.BindPFlag(IdentityKey, rootCmd.PersistentFlags().Lookup("identity"))

	rootCmd.PersistentFlags().String("private-key", "", "PEM file holding the private key of --identity")
	_ = viper.BindPFlag(PrivateKeyKey, rootCmd.PersistentFlags().Lookup("private-key"))

	viper.SetEnvPrefix("VAULT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))

	viper.AutomaticEnv()

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

// loadDotEnv reads .env from the working directory, if there is one.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

func initConfig() (string, error) {
	// reads in config file and ENV variables if set.
	if userConfig != "" {
		viper.SetConfigFile(userConfig)
	} else {
		// search order: current dir, $HOME, XDG config
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}

		config, err := os.UserConfigDir()
		if err == nil {
			viper.AddConfigPath(config + "/vault")
		}

		viper.SetConfigType("yaml")
		viper.SetConfigName(".vault")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundError) {
			return "", err
		}
	} else {
		return viper.ConfigFileUsed(), nil
	}

	return "", nil
}
