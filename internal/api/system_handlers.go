package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/The-Noona-Project/Noona-Vault/internal/api/presenter"
	"github.com/The-Noona-Project/Noona-Vault/internal/buildinfo"
)

// handleHealth responds with a simple OK status to indicate the server is healthy.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleSystemHealth(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, HealthResponse{
		Success:   true,
		Status:    "healthy",
		Service:   buildinfo.ServiceName,
		Timestamp: time.Now().UTC(),
	}, http.StatusOK)
}

// handleVersion responds with service information including version and commit hash.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, buildinfo.GetBuildInfo(), http.StatusOK)
}

// handleDirectoryStatus reports whether the key directory answers a ping.
// The endpoint itself always succeeds.
func (s *Server) handleDirectoryStatus(w http.ResponseWriter, r *http.Request) {
	status := DirectoryStatus{
		Backend: s.keys.Directory(),
		Online:  true,
	}
	if err := s.keys.Ping(r.Context()); err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("key directory not available")
		status.Online = false
	}

	presenter.JSON(w, r, DirectoryStatusResponse{
		Success:   true,
		Status:    "ok",
		Directory: status,
	}, http.StatusOK)
}

// handleVaultKey returns the public key of the vault's own identity.
func (s *Server) handleVaultKey(w http.ResponseWriter, r *http.Request) {
	if s.identity == "" {
		presenter.Error(w, r, "Public key not found", http.StatusNotFound)
		return
	}
	s.writePublicKey(w, r, s.identity, "Public key not found")
}
