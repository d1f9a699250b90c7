package validation

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/The-Noona-Project/Noona-Vault/internal/core"
)

var colonParam = regexp.MustCompile(`/:([A-Za-z_][A-Za-z0-9_]*)`)

var knownMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodOptions: {},
	http.MethodConnect: {},
	http.MethodTrace:   {},
}

// NormalizePath rewrites ":param" segments to "{param}" and strips a trailing slash.
func NormalizePath(path string) string {
	path = colonParam.ReplaceAllString(path, "/{$1}")
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

// PolicyKey identifies a policy by method and normalized path.
func PolicyKey(method, path string) string {
	return strings.ToUpper(method) + " " + NormalizePath(path)
}

// ValidatePolicies checks a declared route policy table and returns it normalized.
// Every entry needs a known method, an absolute path and a valid auth level,
// and no method/path combination may be declared twice.
func ValidatePolicies(policies []core.RoutePolicy) ([]core.RoutePolicy, error) {
	seen := make(map[string]struct{})
	validPolicies := make([]core.RoutePolicy, 0, len(policies))

	for i, policy := range policies {
		policy.Method = strings.ToUpper(strings.TrimSpace(policy.Method))
		if policy.Method == "" {
			return nil, fmt.Errorf("route policy #%d missing method", i)
		}
		if _, known := knownMethods[policy.Method]; !known {
			return nil, fmt.Errorf("route policy #%d has unknown method '%s'", i, policy.Method)
		}

		if !strings.HasPrefix(policy.Path, "/") {
			return nil, fmt.Errorf("route policy #%d path '%s' must start with '/'", i, policy.Path)
		}
		policy.Path = NormalizePath(policy.Path)

		if !policy.Level.IsValid() {
			return nil, fmt.Errorf("route policy '%s %s' has invalid auth level '%s'",
				policy.Method, policy.Path, policy.Level)
		}

		key := PolicyKey(policy.Method, policy.Path)
		if _, exists := seen[key]; exists {
			return nil, fmt.Errorf("route policy '%s' is declared more than once", key)
		}
		seen[key] = struct{}{}

		validPolicies = append(validPolicies, policy)
	}

	return validPolicies, nil
}
