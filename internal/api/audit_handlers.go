package api

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/The-Noona-Project/Noona-Vault/internal/api/presenter"
	"github.com/The-Noona-Project/Noona-Vault/internal/core"
)

const defaultAuditLimit = 50

// handleAuditEvents processes requests to retrieve key lifecycle audit entries.
func (s *Server) handleAuditEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	reader, ok := s.auditor.(core.AuditReader)
	if !ok {
		presenter.Error(w, r, "audit log is not queryable", http.StatusNotImplemented)
		return
	}

	// filters
	q := r.URL.Query()
	limitStr := q.Get("limit")

	filterCorrelationID := q.Get("correlation_id")
	filterService := q.Get("service")
	filterActor := q.Get("actor")
	filterAction := q.Get("action")

	limit := defaultAuditLimit
	if limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v < 0 {
			logger.Warn().Str("limit", limitStr).Msg("invalid limit parameter")
			presenter.Error(w, r, "invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = v
	}

	var entries []core.AuditEntry
	var err error

	if filterCorrelationID != "" || filterService != "" || filterActor != "" || filterAction != "" {
		logger.Debug().Msg("applying audit log filters")
		entries, err = reader.Find(func(entry core.AuditEntry) bool {
			if filterCorrelationID != "" && entry.ID != filterCorrelationID {
				return false
			}
			if filterService != "" && entry.Service.String() != filterService {
				return false
			}
			if filterActor != "" && entry.Actor.String() != filterActor {
				return false
			}
			if filterAction != "" && entry.Action != filterAction {
				return false
			}
			return true
		}, limit)
	} else {
		entries, err = reader.GetRecent(limit)
	}

	if err != nil {
		logger.Error().Err(err).Msg("failed to retrieve audit logs")
		presenter.Error(w, r, "failed to retrieve audit logs", http.StatusInternalServerError)
		return
	}

	presenter.JSON(w, r, AuditEventsResponse{Events: entries}, http.StatusOK)
}
