// Package subst implements substitutions: finite, insertion-ordered mappings
// from variable name to Term, their application to terms, and composition
// with conflict detection.
package subst

import "github.com/gargoilxd/pie/internal/term"

// binding is a single (variable name, term) pair.
type binding struct {
	name string
	term term.Term
}

// Substitution is a small, insertion-ordered variable-to-term mapping. It is
// cheap to copy since most substitutions bind only a handful of variables.
// The zero value is the empty substitution, which is the identity under
// Apply.
type Substitution struct {
	bindings []binding
}

// Lookup returns the term bound to name and whether a binding exists.
func (s Substitution) Lookup(name string) (term.Term, bool) {
	for _, b := range s.bindings {
		if b.name == name {
			return b.term, true
		}
	}
	return term.Term{}, false
}

// Len returns the number of bindings.
func (s Substitution) Len() int {
	return len(s.bindings)
}

// clone returns a shallow copy of s's binding slice so callers can extend it
// without mutating the original.
func (s Substitution) clone() Substitution {
	out := make([]binding, len(s.bindings))
	copy(out, s.bindings)
	return Substitution{bindings: out}
}

// Single builds a one-binding substitution {name -> t}.
func Single(name string, t term.Term) Substitution {
	return Substitution{bindings: []binding{{name: name, term: t}}}
}

// Apply applies s to t. A Variable looks itself up in s and returns the
// bound term, or itself if unbound. A Predicate recursively applies s to
// every argument, preserving name and polarity. Atomic and Numeric are
// returned unchanged. An empty substitution is identity.
func Apply(s Substitution, t term.Term) term.Term {
	if s.Len() == 0 {
		return t
	}
	switch t.Kind {
	case term.Variable:
		if bound, ok := s.Lookup(t.Name); ok {
			return bound
		}
		return t
	case term.Predicate:
		if len(t.Args) == 0 {
			return t
		}
		args := make([]term.Term, len(t.Args))
		for i, a := range t.Args {
			args[i] = Apply(s, a)
		}
		return term.NewPredicate(t.Name, args, t.Negative)
	default:
		return t
	}
}

// Combine composes sigma and tau: starts from a copy of sigma and folds
// tau's bindings in. A binding v -> t from tau succeeds if v is unbound in
// the running result or already bound to an equal term; otherwise
// composition fails. This intentionally omits an injectivity check (it
// does not reject a tau-value already present among sigma's values).
func Combine(sigma, tau Substitution) (Substitution, bool) {
	result := sigma.clone()
	for _, b := range tau.bindings {
		if existing, ok := result.Lookup(b.name); ok {
			if !existing.Equal(b.term) {
				return Substitution{}, false
			}
			continue
		}
		result.bindings = append(result.bindings, b)
	}
	return result, true
}

// Empty returns the identity substitution.
func Empty() Substitution {
	return Substitution{}
}
