package requirement

import "strings"

// DefaultConstraint is used when a declaration carries no version clause.
const DefaultConstraint = ">=0.0.0"

// extraMarker flags optional dependencies. The match is case-sensitive and
// may occur anywhere in the declaration.
const extraMarker = "extra"

// Dependency is a declaration split into its name and version constraint.
type Dependency struct {
	Name       string `json:"name"`
	Constraint string `json:"constraint"`
}

// Parse splits a raw declaration into a Dependency.
// It returns ok=false when the declaration should be skipped: the input is
// empty, no name can be derived from it, or noExtra is set and the
// declaration mentions an extra.
func Parse(raw string, noExtra bool) (Dependency, bool) {
	if noExtra && IsExtra(raw) {
		return Dependency{}, false
	}
	name, ok := Name(raw)
	if !ok || name == "" {
		return Dependency{}, false
	}
	return Dependency{Name: name, Constraint: Constraint(raw)}, true
}

// IsExtra reports whether raw is conditioned on an extra.
func IsExtra(raw string) bool {
	return strings.Contains(raw, extraMarker)
}

// Name returns the dependency name of raw.
// Bare declarations (no "(" and no ";") are returned trimmed. Otherwise the
// text before the first "(" and then before the first ";" is used, which
// strips constraint and marker clauses in either order.
// Name returns ok=false for an empty declaration.
func Name(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if !strings.ContainsAny(raw, "(;") {
		return strings.TrimSpace(raw), true
	}
	name, _, _ := strings.Cut(raw, "(")
	name, _, _ = strings.Cut(name, ";")
	return strings.TrimSpace(name), true
}

// Constraint returns the version clause of raw: the text between the first
// "(" and the next parenthesis of either kind. Nested or unbalanced
// parentheses are not interpreted. DefaultConstraint is returned when raw
// has no clause.
func Constraint(raw string) string {
	if raw == "" {
		return DefaultConstraint
	}
	parts := strings.Split(strings.ReplaceAll(raw, ")", "("), "(")
	if len(parts) < 2 {
		return DefaultConstraint
	}
	return parts[1]
}
