package rbac

import "strings"

// MatchPattern reports whether a single pattern grants a permission code.
// The syntax is closed on purpose (the contract must stay auditable without
// regex semantics): "*" matches everything, "x.*" matches codes with the
// prefix "x.", anything else is exact equality.
func MatchPattern(pattern, code string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, ".*") {
		return strings.HasPrefix(code, pattern[:len(pattern)-2]+".")
	}
	return pattern == code
}

// ResolveRolePermissions expands a role's pattern list against the full
// catalog. A role holding "*" receives every permission; unknown roles
// resolve to nothing.
func ResolveRolePermissions(role string) []string {
	patterns := RolePatterns[role]
	if len(patterns) == 0 {
		return nil
	}
	for _, p := range patterns {
		if p == "*" {
			out := make([]string, len(AllPermissions))
			copy(out, AllPermissions)
			return out
		}
	}
	var out []string
	for _, code := range AllPermissions {
		for _, p := range patterns {
			if MatchPattern(p, code) {
				out = append(out, code)
				break
			}
		}
	}
	return out
}

// Authorize requires every required permission to be present in the granted
// set. AND semantics: a caller missing even one required permission is
// denied.
func Authorize(required []string, granted map[string]struct{}) bool {
	for _, perm := range required {
		if _, ok := granted[perm]; !ok {
			return false
		}
	}
	return true
}

// Resolver is the immutable role -> permission-set index built once at
// startup.
type Resolver struct {
	byRole map[string]map[string]struct{}
}

// NewResolver expands every seeded role eagerly.
func NewResolver() *Resolver {
	byRole := make(map[string]map[string]struct{}, len(RolePatterns))
	for role := range RolePatterns {
		set := make(map[string]struct{})
		for _, code := range ResolveRolePermissions(role) {
			set[code] = struct{}{}
		}
		byRole[role] = set
	}
	return &Resolver{byRole: byRole}
}

// Granted returns the resolved permission set for a role. The returned map
// must be treated as read-only.
func (r *Resolver) Granted(role string) map[string]struct{} {
	return r.byRole[role]
}

// HasAll reports whether a role holds every required permission.
func (r *Resolver) HasAll(role string, required []string) bool {
	return Authorize(required, r.byRole[role])
}
