// Package routes classifies requests as public or protected.
package routes

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/The-Noona-Project/Noona-Vault/internal/core"
	"github.com/The-Noona-Project/Noona-Vault/internal/validation"
)

var _ Classifier = (*Resolver)(nil)

// Classifier decides the auth level of a method and path.
type Classifier interface {
	Classify(method, path string) core.AuthLevel
}

// Resolver matches requests against a declared route policy table.
// The table is built once and never modified, so lookups need no locking.
type Resolver struct {
	tree     *chi.Mux
	levels   map[string]core.AuthLevel
	policies []core.RoutePolicy
}

// NewResolver validates policies and builds the lookup tree.
func NewResolver(policies []core.RoutePolicy) (resolver *Resolver, err error) {
	valid, err := validation.ValidatePolicies(policies)
	if err != nil {
		return nil, err
	}

	// chi panics on patterns it cannot route
	defer func() {
		if r := recover(); r != nil {
			resolver, err = nil, fmt.Errorf("building route tree: %v", r)
		}
	}()

	tree := chi.NewRouter()
	levels := make(map[string]core.AuthLevel, len(valid))
	for _, policy := range valid {
		tree.Method(policy.Method, policy.Path, http.NotFoundHandler())
		levels[validation.PolicyKey(policy.Method, policy.Path)] = policy.Level
	}

	return &Resolver{
		tree:     tree,
		levels:   levels,
		policies: valid,
	}, nil
}

// Classify returns the auth level of the endpoint matching method and path.
// Path parameters match by segment. Anything without a declared policy is protected.
func (r *Resolver) Classify(method, path string) core.AuthLevel {
	if !strings.HasPrefix(path, "/") {
		return core.AuthProtected
	}
	rctx := chi.NewRouteContext()
	if !r.tree.Match(rctx, method, path) {
		return core.AuthProtected
	}
	level, ok := r.levels[validation.PolicyKey(method, rctx.RoutePattern())]
	if !ok {
		return core.AuthProtected
	}
	return level
}

// Policies returns the declared table sorted by path and method.
func (r *Resolver) Policies() []core.RoutePolicy {
	policies := make([]core.RoutePolicy, len(r.policies))
	copy(policies, r.policies)
	sort.SliceStable(policies, func(i, j int) bool {
		if policies[i].Path != policies[j].Path {
			return policies[i].Path < policies[j].Path
		}
		return policies[i].Method < policies[j].Method
	})
	return policies
}

// Validate walks a mounted router and fails if an endpoint has no declared
// policy, or if a policy does not belong to any mounted endpoint.
func (r *Resolver) Validate(router chi.Routes) error {
	mounted := make(map[string]struct{})
	var missing []string

	err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		key := validation.PolicyKey(method, route)
		mounted[key] = struct{}{}
		if _, ok := r.levels[key]; !ok {
			missing = append(missing, key)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking routes: %w", err)
	}

	var stale []string
	for key := range r.levels {
		if _, ok := mounted[key]; !ok {
			stale = append(stale, key)
		}
	}

	sort.Strings(missing)
	sort.Strings(stale)
	switch {
	case len(missing) > 0:
		return fmt.Errorf("mounted routes without auth policy: %s", strings.Join(missing, ", "))
	case len(stale) > 0:
		return fmt.Errorf("auth policies without mounted route: %s", strings.Join(stale, ", "))
	}
	return nil
}
