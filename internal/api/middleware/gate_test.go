package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/The-Noona-Project/Noona-Vault/internal/api/presenter"
	"github.com/The-Noona-Project/Noona-Vault/internal/core"
	"github.com/The-Noona-Project/Noona-Vault/internal/routes"
)

type stubVerifier struct {
	calls  int
	claims *core.Claims
	err    error
}

func (s *stubVerifier) Verify(_ context.Context, _ string) (*core.Claims, error) {
	s.calls++
	return s.claims, s.err
}

func newTestResolver(t *testing.T) *routes.Resolver {
	t.Helper()
	resolver, err := routes.NewResolver([]core.RoutePolicy{
		{Method: "GET", Path: "/v2/publicKey/read/{service}", Level: core.AuthPublic},
		{Method: "DELETE", Path: "/v2/publicKey/delete/{service}", Level: core.AuthProtected},
	})
	if err != nil {
		t.Fatal(err)
	}
	return resolver
}

// echoClaims responds with the issuer attached to the request, if any.
var echoClaims = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		_, _ = w.Write([]byte("anonymous"))
		return
	}
	_, _ = w.Write([]byte(claims.Issuer.String()))
})

func TestGate(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		authHeader string
		verifier   *stubVerifier
		wantStatus int
		wantBody   string
		wantCalls  int
	}{
		{
			name:       "Public Route Without Token",
			method:     "GET",
			path:       "/v2/publicKey/read/noona-moon",
			verifier:   &stubVerifier{err: core.ErrInvalidSignature},
			wantStatus: http.StatusOK,
			wantBody:   "anonymous",
		},
		{
			name:       "Public Route Ignores Token",
			method:     "GET",
			path:       "/v2/publicKey/read/noona-moon",
			authHeader: "Bearer whatever",
			verifier:   &stubVerifier{err: core.ErrInvalidSignature},
			wantStatus: http.StatusOK,
			wantBody:   "anonymous",
		},
		{
			name:       "Protected Route Without Token",
			method:     "DELETE",
			path:       "/v2/publicKey/delete/noona-moon",
			verifier:   &stubVerifier{},
			wantStatus: http.StatusUnauthorized,
			wantBody:   presenter.MsgTokenMissing,
		},
		{
			name:       "Protected Route Wrong Scheme",
			method:     "DELETE",
			path:       "/v2/publicKey/delete/noona-moon",
			authHeader: "Basic dXNlcjpwYXNz",
			verifier:   &stubVerifier{},
			wantStatus: http.StatusUnauthorized,
			wantBody:   presenter.MsgTokenMissing,
		},
		{
			name:       "Protected Route Empty Bearer",
			method:     "DELETE",
			path:       "/v2/publicKey/delete/noona-moon",
			authHeader: "Bearer   ",
			verifier:   &stubVerifier{},
			wantStatus: http.StatusUnauthorized,
			wantBody:   presenter.MsgTokenMissing,
		},
		{
			name:       "Protected Route Garbage Token",
			method:     "DELETE",
			path:       "/v2/publicKey/delete/noona-moon",
			authHeader: "Bearer garbage",
			verifier:   &stubVerifier{err: fmt.Errorf("%w: token contains an invalid number of segments", core.ErrMalformedToken)},
			wantStatus: http.StatusForbidden,
			wantBody:   presenter.MsgInvalidToken,
			wantCalls:  1,
		},
		{
			name:       "Unknown Issuer Looks Like Any Other Rejection",
			method:     "DELETE",
			path:       "/v2/publicKey/delete/noona-moon",
			authHeader: "Bearer x.y.z",
			verifier:   &stubVerifier{err: fmt.Errorf("%w: %q", core.ErrUnknownIssuer, "noona-ghost")},
			wantStatus: http.StatusForbidden,
			wantBody:   presenter.MsgInvalidToken,
			wantCalls:  1,
		},
		{
			name:       "Expired Token",
			method:     "DELETE",
			path:       "/v2/publicKey/delete/noona-moon",
			authHeader: "bearer x.y.z",
			verifier:   &stubVerifier{err: core.ErrTokenExpired},
			wantStatus: http.StatusForbidden,
			wantBody:   presenter.MsgInvalidToken,
			wantCalls:  1,
		},
		{
			name:       "Directory Unavailable",
			method:     "DELETE",
			path:       "/v2/publicKey/delete/noona-moon",
			authHeader: "Bearer x.y.z",
			verifier:   &stubVerifier{err: fmt.Errorf("redis: %w: dial tcp: connection refused", core.ErrDirectoryUnavailable)},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   presenter.MsgDirectoryUnavailable,
			wantCalls:  1,
		},
		{
			name:       "Verified Token",
			method:     "DELETE",
			path:       "/v2/publicKey/delete/noona-moon",
			authHeader: "Bearer x.y.z",
			verifier:   &stubVerifier{claims: &core.Claims{Issuer: "noona-warden"}},
			wantStatus: http.StatusOK,
			wantBody:   "noona-warden",
			wantCalls:  1,
		},
		{
			name:       "Undeclared Route Is Protected",
			method:     "GET",
			path:       "/v2/publicKey/list",
			verifier:   &stubVerifier{},
			wantStatus: http.StatusUnauthorized,
			wantBody:   presenter.MsgTokenMissing,
		},
	}

	resolver := newTestResolver(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := CorrelationIDMiddleware(Gate(resolver, tt.verifier)(echoClaims))

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body: %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.verifier.calls != tt.wantCalls {
				t.Errorf("verifier called %d times, want %d", tt.verifier.calls, tt.wantCalls)
			}

			if rec.Code == http.StatusOK {
				if rec.Body.String() != tt.wantBody {
					t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
				}
				return
			}

			var resp presenter.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("error body is not JSON: %v", err)
			}
			if resp.Error != tt.wantBody {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantBody)
			}
			if resp.CorrelationID == "" || resp.CorrelationID != rec.Header().Get(CorrelationIDHeader) {
				t.Errorf("correlation id %q does not match header %q",
					resp.CorrelationID, rec.Header().Get(CorrelationIDHeader))
			}
			// nothing about the cause may leak
			for _, leak := range []string{"segments", "noona-ghost", "redis", "connection"} {
				if strings.Contains(rec.Body.String(), leak) {
					t.Errorf("response leaks %q: %s", leak, rec.Body.String())
				}
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"Bearer abc":       "abc",
		"bearer abc":       "abc",
		"BEARER  abc ":     "abc",
		"Bearer":           "",
		"Token abc":        "",
		"Bearerabc":        "",
		"  Bearer a.b.c  ": "a.b.c",
	}
	for header, want := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		if got := BearerToken(req); got != want {
			t.Errorf("BearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestCorrelationIDMiddleware(t *testing.T) {
	var seen string
	handler := CorrelationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CorrelationCtx(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(CorrelationIDHeader, "given-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if seen != "given-id" || rec.Header().Get(CorrelationIDHeader) != "given-id" {
		t.Errorf("provided correlation id not propagated: ctx=%q header=%q",
			seen, rec.Header().Get(CorrelationIDHeader))
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if seen == "" || seen == "given-id" {
		t.Errorf("expected a generated correlation id, got %q", seen)
	}
}

func TestRecoverMiddleware(t *testing.T) {
	handler := RecoverMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Error("panic value leaked into the response")
	}
}
