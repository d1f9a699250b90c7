package presenter

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/The-Noona-Project/Noona-Vault/internal/core"
)

// Messages returned at the boundary. Credential failures share one message.
const (
	MsgTokenMissing         = "token missing"
	MsgInvalidToken         = "invalid or expired token"
	MsgDirectoryUnavailable = "key directory unavailable"
)

type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id"`
}

func JSON(w http.ResponseWriter, r *http.Request, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to write json response")
	}
}

func Error(w http.ResponseWriter, r *http.Request, msg string, status int) {
	resp := ErrorResponse{
		Error:         msg,
		CorrelationID: core.CorrelationID(r.Context()),
	}
	JSON(w, r, resp, status)
}

// Err writes err with the status of its kind. Credential and infrastructure
// failures get fixed messages, other errors are prefixed with short.
func Err(w http.ResponseWriter, r *http.Request, err error, short string) {
	status := StatusFor(err)
	switch {
	case core.IsCredentialError(err):
		Error(w, r, MsgInvalidToken, status)
	case errors.Is(err, core.ErrDirectoryUnavailable):
		Error(w, r, MsgDirectoryUnavailable, status)
	case status == http.StatusInternalServerError:
		// internal causes are logged, not returned
		Error(w, r, short, status)
	default:
		Error(w, r, short+": "+err.Error(), status)
	}
}

// StatusFor maps an error onto its HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case core.IsCredentialError(err):
		return http.StatusForbidden
	case errors.Is(err, core.ErrDirectoryUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidIdentity), errors.Is(err, core.ErrInvalidPublicKey):
		return http.StatusBadRequest
	default:
		// key generation and publish failures included
		return http.StatusInternalServerError
	}
}
