package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/The-Noona-Project/Noona-Vault/internal/api/middleware"
	"github.com/The-Noona-Project/Noona-Vault/internal/api/presenter"
	"github.com/The-Noona-Project/Noona-Vault/internal/audit"
	"github.com/The-Noona-Project/Noona-Vault/internal/core"
	"github.com/The-Noona-Project/Noona-Vault/internal/routes"
)

// KeyManager is the key lifecycle used by the handlers.
type KeyManager interface {
	core.KeyReader
	CreateKey(ctx context.Context, identity core.ServiceIdentity) (core.KeyPair, error)
	UpdateKey(ctx context.Context, identity core.ServiceIdentity, publicKeyPEM string) error
	DeleteKey(ctx context.Context, identity core.ServiceIdentity) (bool, error)
	Ping(ctx context.Context) error
	Directory() string
}

type Server struct {
	keys     KeyManager
	verifier middleware.TokenVerifier
	auditor  core.Auditor

	// identity the vault itself signs as, served by the system token route
	identity core.ServiceIdentity
}

type ServerOption func(*Server)

// WithVaultIdentity sets the identity whose public key is served as the vault's own.
func WithVaultIdentity(identity core.ServiceIdentity) ServerOption {
	return func(s *Server) {
		s.identity = identity
	}
}

func NewServer(keys KeyManager, verifier middleware.TokenVerifier, auditor core.Auditor, opts ...ServerOption) *Server {
	if auditor == nil {
		auditor = audit.NewNoopAuditor()
	}
	s := &Server{
		keys:     keys,
		verifier: verifier,
		auditor:  auditor,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes mounts every endpoint and wraps the router with the authorization gate.
// It fails if the mounted routes and the declared policies disagree.
func (s *Server) Routes() (http.Handler, error) {
	table := s.routeTable()

	resolver, err := routes.NewResolver(policiesOf(table))
	if err != nil {
		return nil, fmt.Errorf("building route policies: %w", err)
	}

	router := chi.NewRouter()
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		presenter.Error(w, r, "not found", http.StatusNotFound)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		presenter.Error(w, r, "method not allowed", http.StatusMethodNotAllowed)
	})
	for _, r := range table {
		router.Method(r.Method, r.Path, r.Handler)
	}

	if err := resolver.Validate(router); err != nil {
		return nil, err
	}

	gate := middleware.Gate(resolver, s.verifier)

	return middleware.RecoverMiddleware(
		middleware.CorrelationIDMiddleware(
			middleware.LoggingMiddleware(
				gate(router)))), nil
}
