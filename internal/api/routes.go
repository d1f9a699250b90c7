package api

import (
	"net/http"

	"github.com/The-Noona-Project/Noona-Vault/internal/core"
	"github.com/The-Noona-Project/Noona-Vault/internal/metrics"
)

const (
	HealthCheckRoute = "/healthz"
	MetricsRoute     = "/metrics"

	SystemParent         = "/v1/system/"
	SystemHealthRoute    = SystemParent + "health"
	VersionRoute         = SystemParent + "version"
	DirectoryStatusRoute = SystemParent + "db-status"
	VaultKeyRoute        = SystemParent + "token"

	PublicKeyParent = "/v2/publicKey/"
	CreateKeyRoute  = PublicKeyParent + "create"
	ReadKeyRoute    = PublicKeyParent + "read/{service}"
	UpdateKeyRoute  = PublicKeyParent + "update/{service}"
	DeleteKeyRoute  = PublicKeyParent + "delete/{service}"

	AuditEventsRoute = "/v2/audit/events"
)

// ServiceParam is the path parameter naming the affected identity.
const ServiceParam = "service"

// route declares a mounted endpoint together with its auth level.
// The router and the policy table are both built from this list.
type route struct {
	Method      string
	Path        string
	Level       core.AuthLevel
	Description string
	Handler     http.Handler
}

func (s *Server) routeTable() []route {
	return []route{
		{
			Method:      http.MethodPost,
			Path:        CreateKeyRoute,
			Level:       core.AuthPublic,
			Description: "Generates a key pair for a service and publishes the public key",
			Handler:     http.HandlerFunc(s.handleCreateKey),
		},
		{
			Method:      http.MethodGet,
			Path:        ReadKeyRoute,
			Level:       core.AuthPublic,
			Description: "Returns the published public key of a service",
			Handler:     http.HandlerFunc(s.handleReadKey),
		},
		{
			Method:      http.MethodPut,
			Path:        UpdateKeyRoute,
			Level:       core.AuthProtected,
			Description: "Replaces the public key of a service",
			Handler:     http.HandlerFunc(s.handleUpdateKey),
		},
		{
			Method:      http.MethodDelete,
			Path:        DeleteKeyRoute,
			Level:       core.AuthProtected,
			Description: "Removes the public key of a service",
			Handler:     http.HandlerFunc(s.handleDeleteKey),
		},
		{
			Method:      http.MethodGet,
			Path:        AuditEventsRoute,
			Level:       core.AuthProtected,
			Description: "Lists recent key lifecycle audit events",
			Handler:     http.HandlerFunc(s.handleAuditEvents),
		},
		{
			Method:      http.MethodGet,
			Path:        SystemHealthRoute,
			Level:       core.AuthPublic,
			Description: "Health check endpoint for readiness and liveness probes",
			Handler:     http.HandlerFunc(s.handleSystemHealth),
		},
		{
			Method:      http.MethodGet,
			Path:        VersionRoute,
			Level:       core.AuthPublic,
			Description: "Returns build information",
			Handler:     http.HandlerFunc(s.handleVersion),
		},
		{
			Method:      http.MethodGet,
			Path:        VaultKeyRoute,
			Level:       core.AuthPublic,
			Description: "Returns the public key the vault signs its own tokens with",
			Handler:     http.HandlerFunc(s.handleVaultKey),
		},
		{
			Method:      http.MethodGet,
			Path:        DirectoryStatusRoute,
			Level:       core.AuthPublic,
			Description: "Returns the connection status of the key directory",
			Handler:     http.HandlerFunc(s.handleDirectoryStatus),
		},
		{
			Method:      http.MethodGet,
			Path:        HealthCheckRoute,
			Level:       core.AuthPublic,
			Description: "Plain liveness probe",
			Handler:     http.HandlerFunc(s.handleHealth),
		},
		{
			Method:      http.MethodGet,
			Path:        MetricsRoute,
			Level:       core.AuthPublic,
			Description: "Prometheus metrics",
			Handler:     metrics.Handler(),
		},
	}
}

func policiesOf(table []route) []core.RoutePolicy {
	policies := make([]core.RoutePolicy, 0, len(table))
	for _, r := range table {
		policies = append(policies, core.RoutePolicy{
			Method:      r.Method,
			Path:        r.Path,
			Level:       r.Level,
			Description: r.Description,
		})
	}
	return policies
}

// Policies returns the auth policy of every endpoint served by the API.
func Policies() []core.RoutePolicy {
	return policiesOf((&Server{}).routeTable())
}
