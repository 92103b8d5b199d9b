// Package discovery implements the Discovery Service (C5): enumerating
// contract implementations, manually registered scenario targets, and
// data-contract targets, inferring a MockingStrategy per constructor
// dependency, and merging the resulting specs by target FQN.
//
// Go has no classpath or annotation processor to scan at runtime, so
// discovery here works the way the teacher's own subsystems are wired:
// through explicit registration (a Registrar the caller populates) rather
// than static source analysis — the same shape as internal/llm's provider
// registry, generalized from "register a provider" to "register a
// contract/target".
package discovery

import (
	"github.com/bmatcuk/doublestar/v4"
)

// ScanScopeKind discriminates the ScanScope sum type's variants.
type ScanScopeKind string

const (
	All      ScanScopeKind = "All"
	Packages ScanScopeKind = "Packages"
	Classes  ScanScopeKind = "Classes"
)

// ScanScope narrows discovery to a subset of fully-qualified names. For
// Packages/Classes, Patterns are doublestar glob patterns matched against a
// candidate's fully-qualified name (e.g. "github.com/acme/billing/**").
type ScanScope struct {
	Kind     ScanScopeKind
	Patterns []string
}

// NewAllScope builds the unrestricted scope.
func NewAllScope() ScanScope { return ScanScope{Kind: All} }

// NewPackagesScope restricts discovery to FQNs matching any of patterns.
func NewPackagesScope(patterns ...string) ScanScope {
	return ScanScope{Kind: Packages, Patterns: patterns}
}

// NewClassesScope restricts discovery to FQNs matching any of patterns,
// semantically identical to Packages here — Go has no package/class
// distinction at the FQN level — kept as a distinct Kind because the spec
// names them as separate variants callers may select between for clarity.
func NewClassesScope(patterns ...string) ScanScope {
	return ScanScope{Kind: Classes, Patterns: patterns}
}

// Matches reports whether fqn falls within the scope.
func (s ScanScope) Matches(fqn string) bool {
	if s.Kind == All {
		return true
	}
	for _, p := range s.Patterns {
		if ok, _ := doublestar.Match(p, fqn); ok {
			return true
		}
	}
	return false
}
