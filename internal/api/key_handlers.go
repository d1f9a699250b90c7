package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/The-Noona-Project/Noona-Vault/internal/api/presenter"
	"github.com/The-Noona-Project/Noona-Vault/internal/audit"
	"github.com/The-Noona-Project/Noona-Vault/internal/core"
)

const maxBodyBytes = 64 << 10

func serviceParam(r *http.Request) core.ServiceIdentity {
	return core.ServiceIdentity(chi.URLParam(r, ServiceParam))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// handleCreateKey generates a key pair and publishes its public key.
// The route is public, so the private half never leaves this handler.
func (s *Server) handleCreateKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var req CreateKeyRequest
	if err := decodeBody(w, r, &req); err != nil {
		logger.Warn().Err(err).Msg("invalid create key request")
		presenter.Error(w, r, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Service = strings.TrimSpace(req.Service)
	if req.Service == "" {
		presenter.Error(w, r, "Missing required field: service", http.StatusBadRequest)
		return
	}

	identity := core.ServiceIdentity(req.Service)
	pair, err := s.keys.CreateKey(ctx, identity)
	if err != nil {
		logger.Error().Err(err).Str("service", req.Service).Msg("failed to create key")
		presenter.Err(w, r, err, "Failed to generate/store public key")
		return
	}

	presenter.JSON(w, r, CreateKeyResponse{
		Success:   true,
		Msg:       "Public key generated and stored for " + identity.String(),
		PublicKey: pair.PublicKey,
		KeyName:   identity.DirectoryKey(),
	}, http.StatusCreated)
}

// handleReadKey returns the published public key of a service.
func (s *Server) handleReadKey(w http.ResponseWriter, r *http.Request) {
	s.writePublicKey(w, r, serviceParam(r), "Key not found")
}

func (s *Server) writePublicKey(w http.ResponseWriter, r *http.Request, identity core.ServiceIdentity, notFound string) {
	ctx := r.Context()

	publicKey, err := s.keys.ReadKey(ctx, identity)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			presenter.Error(w, r, notFound, http.StatusNotFound)
			return
		}
		log.Ctx(ctx).Error().Err(err).Str("service", identity.String()).Msg("failed to read key")
		presenter.Err(w, r, err, "Failed to read public key")
		return
	}

	presenter.JSON(w, r, ReadKeyResponse{
		Success:   true,
		PublicKey: publicKey,
		Metadata: KeyMetadata{
			Format:      "PEM",
			Length:      len(publicKey),
			Source:      s.keys.Directory(),
			KeyName:     identity.DirectoryKey(),
			Fingerprint: audit.Fingerprint(publicKey),
		},
	}, http.StatusOK)
}

// handleUpdateKey replaces the public key of a service with one supplied by the caller.
func (s *Server) handleUpdateKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := serviceParam(r)

	var req UpdateKeyRequest
	if err := decodeBody(w, r, &req); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("service", identity.String()).Msg("invalid update key request")
		presenter.Error(w, r, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.PublicKey) == "" {
		presenter.Error(w, r, "Missing publicKey", http.StatusBadRequest)
		return
	}

	if err := s.keys.UpdateKey(ctx, identity, req.PublicKey); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("service", identity.String()).Msg("failed to update key")
		presenter.Err(w, r, err, "Update failed")
		return
	}

	presenter.JSON(w, r, StatusResponse{
		Success: true,
		Msg:     "Public key updated for " + identity.String(),
	}, http.StatusOK)
}

// handleDeleteKey removes the public key of a service.
func (s *Server) handleDeleteKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := serviceParam(r)

	existed, err := s.keys.DeleteKey(ctx, identity)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("service", identity.String()).Msg("failed to delete key")
		presenter.Err(w, r, err, "Delete failed")
		return
	}
	if !existed {
		presenter.Error(w, r, "Public key not found for "+identity.String(), http.StatusNotFound)
		return
	}

	presenter.JSON(w, r, StatusResponse{
		Success: true,
		Msg:     "Public key deleted for " + identity.String(),
	}, http.StatusOK)
}
