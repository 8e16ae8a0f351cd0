// Package unify implements structural unification of two terms.
package unify

import (
	"github.com/gargoilxd/pie/internal/subst"
	"github.com/gargoilxd/pie/internal/term"
)

// Unify returns the most general substitution making a and b syntactically
// equal, or false if no such substitution exists. Rules:
//
//   - Numeric/Numeric unifies (empty substitution) iff the values are equal.
//   - Atomic/Atomic unifies (empty substitution) iff name and polarity match.
//   - Variable paired with anything produces the singleton {v -> t}. This
//     deliberately omits an occurs-check: unifying x? with p(x?) succeeds
//     and binds x to a term containing itself. Two same-named variables
//     still produce a (idempotent) singleton binding rather than being
//     special-cased to the empty substitution.
//   - Predicate/Predicate unifies iff names, arities and polarities match,
//     recursively unifying arguments pairwise and composing the resulting
//     substitutions via subst.Combine; any argument or composition failure
//     fails the whole unification.
//   - Any other pairing fails.
func Unify(a, b term.Term) (subst.Substitution, bool) {
	switch {
	case a.Kind == term.Numeric && b.Kind == term.Numeric:
		if a.Value == b.Value {
			return subst.Empty(), true
		}
		return subst.Substitution{}, false

	case a.Kind == term.Atomic && b.Kind == term.Atomic:
		if a.Name == b.Name && a.Negative == b.Negative {
			return subst.Empty(), true
		}
		return subst.Substitution{}, false

	case a.Kind == term.Variable:
		return subst.Single(a.Name, b), true

	case b.Kind == term.Variable:
		return subst.Single(b.Name, a), true

	case a.Kind == term.Predicate && b.Kind == term.Predicate:
		if a.Name != b.Name || a.Negative != b.Negative || len(a.Args) != len(b.Args) {
			return subst.Substitution{}, false
		}
		result := subst.Empty()
		for i := range a.Args {
			argSub, ok := Unify(a.Args[i], b.Args[i])
			if !ok {
				return subst.Substitution{}, false
			}
			combined, ok := subst.Combine(result, argSub)
			if !ok {
				return subst.Substitution{}, false
			}
			result = combined
		}
		return result, true

	default:
		return subst.Substitution{}, false
	}
}
