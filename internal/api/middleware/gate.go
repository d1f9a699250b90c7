package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/The-Noona-Project/Noona-Vault/internal/api/presenter"
	"github.com/The-Noona-Project/Noona-Vault/internal/core"
	"github.com/The-Noona-Project/Noona-Vault/internal/metrics"
	"github.com/The-Noona-Project/Noona-Vault/internal/routes"
)

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*core.Claims, error)
}

// ClaimsFromContext returns the claims attached by Gate.
func ClaimsFromContext(ctx context.Context) (*core.Claims, bool) {
	return core.ClaimsFromContext(ctx)
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func BearerToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Gate authorizes requests by the auth level of their route.
// Public routes pass through without touching the verifier. Protected routes
// need a valid bearer token, whose claims are attached to the request context.
func Gate(classifier routes.Classifier, verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if classifier.Classify(r.Method, r.URL.Path) == core.AuthPublic {
				metrics.GateDecisions.WithLabelValues(metrics.OutcomePublic).Inc()
				next.ServeHTTP(w, r)
				return
			}

			logger := log.Ctx(r.Context())

			token := BearerToken(r)
			if token == "" {
				metrics.GateDecisions.WithLabelValues(metrics.OutcomeMissing).Inc()
				presenter.Error(w, r, presenter.MsgTokenMissing, http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				if errors.Is(err, core.ErrDirectoryUnavailable) {
					metrics.GateDecisions.WithLabelValues(metrics.OutcomeUnavailable).Inc()
					logger.Error().Err(err).Msg("cannot verify token, key directory unavailable")
					presenter.Error(w, r, presenter.MsgDirectoryUnavailable, http.StatusServiceUnavailable)
					return
				}

				metrics.GateDecisions.WithLabelValues(metrics.OutcomeRejected).Inc()
				logger.Warn().Err(err).Msg("bearer token rejected")
				presenter.Error(w, r, presenter.MsgInvalidToken, http.StatusForbidden)
				return
			}

			metrics.GateDecisions.WithLabelValues(metrics.OutcomeVerified).Inc()
			// only a request scoped logger may be updated, never the global fallback
			if logger != zerolog.DefaultContextLogger {
				logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
					c = c.Str("iss", claims.Issuer.String())
					if claims.Subject != "" {
						c = c.Str("sub", claims.Subject)
					}
					return c
				})
			}

			next.ServeHTTP(w, r.WithContext(core.WithClaims(r.Context(), claims)))
		})
	}
}
