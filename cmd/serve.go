package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/The-Noona-Project/Noona-Vault/internal/api"
	"github.com/The-Noona-Project/Noona-Vault/internal/audit"
	"github.com/The-Noona-Project/Noona-Vault/internal/buildinfo"
	"github.com/The-Noona-Project/Noona-Vault/internal/config"
	"github.com/The-Noona-Project/Noona-Vault/internal/core"
	"github.com/The-Noona-Project/Noona-Vault/internal/keys"
	"github.com/The-Noona-Project/Noona-Vault/internal/store"
	"github.com/The-Noona-Project/Noona-Vault/internal/tasks"
	"github.com/The-Noona-Project/Noona-Vault/internal/telemetry"
	"github.com/The-Noona-Project/Noona-Vault/internal/tokens"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Noona Vault server",
	Long: `Starts the HTTP API. Without --config, keys are kept in memory and
are lost on restart.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := f.LoadServerConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Listen = addr
		}

		shutdownTracing, err := telemetry.Setup(cmd.Context(), buildinfo.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			return fmt.Errorf("setting up tracing: %w", err)
		}
		defer func() {
			_ = shutdownTracing(context.Background())
		}()

		log.Info().Msgf("Connecting to %s key directory...", cfg.Directory.Type)
		dir, err := store.Build(cfg.Directory)
		if err != nil {
			return fmt.Errorf("building key directory: %w", err)
		}
		defer func() {
			_ = dir.Close()
		}()

		auditor, err := audit.Build(cfg.Audit)
		if err != nil {
			return fmt.Errorf("building auditor: %w", err)
		}
		defer func() {
			_ = auditor.Close()
		}()

		registry := keys.NewRegistry(dir,
			keys.WithTimeout(cfg.Directory.Timeout),
			keys.WithAuditor(auditor),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// the vault still starts and reports 503 until the directory is back
		manager := tasks.NewManager(ctx)
		manager.Register(tasks.DirectoryProbeTask, cfg.Directory.ProbeInterval, tasks.DirectoryProbe(registry))
		_ = manager.Trigger(tasks.DirectoryProbeTask)

		skew := tokens.WithClockSkew(cfg.Auth.ClockSkew)
		if err := selfCheck(ctx, registry, cfg.SelfCheck, skew); err != nil {
			if cfg.SelfCheck.Required {
				return err
			}
			log.Warn().Err(err).Msg("Self-check failed")
		}

		verifier := tokens.NewVerifier(registry, skew)
		handler, err := api.NewServer(registry, verifier, auditor,
			api.WithVaultIdentity(core.ServiceIdentity(cfg.SelfCheck.Identity))).Routes()
		if err != nil {
			return fmt.Errorf("building routes: %w", err)
		}

		server := &http.Server{
			Addr:              cfg.Listen,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			log.Info().Msgf("Starting server on %s...", cfg.Listen)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("Server crashed")
			}
		}()

		<-ctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		manager.Wait()

		log.Info().Msg("Server exited")
		return nil
	},
}

// selfCheck verifies that the vault's own private key matches the published public key.
func selfCheck(ctx context.Context, reader core.KeyReader, cfg config.SelfCheckConfig, opts ...tokens.VerifierOption) error {
	if !cfg.Enabled() {
		return nil
	}
	identity, err := parseIdentity(cfg.Identity)
	if err != nil {
		return fmt.Errorf("self-check: %w", err)
	}
	privateKeyPEM, err := readPEM(cfg.PrivateKeyFile)
	if err != nil {
		return fmt.Errorf("self-check: %w", err)
	}
	if err := tokens.CheckKeyPair(ctx, reader, identity, privateKeyPEM, opts...); err != nil {
		return fmt.Errorf("self-check: %w", err)
	}
	log.Info().Str("identity", identity.String()).Msg("Self-check passed")
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "address to listen on (overrides listen from --config)")
	f.bindConfigFlag(serveCmd.Flags())
}
