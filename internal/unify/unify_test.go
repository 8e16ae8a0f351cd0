package unify

import (
	"testing"

	"github.com/gargoilxd/pie/internal/term"
	"github.com/stretchr/testify/assert"
)

func TestUnifyNumeric(t *testing.T) {
	s, ok := Unify(term.NewNumeric(5), term.NewNumeric(5))
	assert.True(t, ok)
	assert.Equal(t, 0, s.Len())

	_, ok = Unify(term.NewNumeric(5), term.NewNumeric(6))
	assert.False(t, ok)
}

func TestUnifyAtomic(t *testing.T) {
	_, ok := Unify(term.NewAtomic("a", false), term.NewAtomic("a", false))
	assert.True(t, ok)

	_, ok = Unify(term.NewAtomic("a", false), term.NewAtomic("a", true))
	assert.False(t, ok, "polarity mismatch must fail")

	_, ok = Unify(term.NewAtomic("a", false), term.NewAtomic("b", false))
	assert.False(t, ok)
}

func TestUnifyVariable(t *testing.T) {
	s, ok := Unify(term.NewVariable("x"), term.NewAtomic("a", false))
	assert.True(t, ok)
	bound, found := s.Lookup("x")
	assert.True(t, found)
	assert.True(t, bound.Equal(term.NewAtomic("a", false)))

	s2, ok := Unify(term.NewAtomic("a", false), term.NewVariable("x"))
	assert.True(t, ok)
	bound2, found := s2.Lookup("x")
	assert.True(t, found)
	assert.True(t, bound2.Equal(term.NewAtomic("a", false)))
}

// TestUnifyNoOccursCheck verifies that unifying a variable with a term
// containing that same variable still succeeds (no occurs-check).
func TestUnifyNoOccursCheck(t *testing.T) {
	x := term.NewVariable("x")
	px := term.NewPredicate("p", []term.Term{x}, false)
	s, ok := Unify(x, px)
	assert.True(t, ok)
	bound, found := s.Lookup("x")
	assert.True(t, found)
	assert.True(t, bound.Equal(px))
}

func TestUnifySameNamedVariables(t *testing.T) {
	s, ok := Unify(term.NewVariable("x"), term.NewVariable("x"))
	assert.True(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestUnifyPredicate(t *testing.T) {
	a := term.NewPredicate("parent", []term.Term{term.NewVariable("x"), term.NewAtomic("bob", false)}, false)
	b := term.NewPredicate("parent", []term.Term{term.NewAtomic("anna", false), term.NewAtomic("bob", false)}, false)
	s, ok := Unify(a, b)
	assert.True(t, ok)
	bound, found := s.Lookup("x")
	assert.True(t, found)
	assert.True(t, bound.Equal(term.NewAtomic("anna", false)))
}

func TestUnifyPredicateArityMismatch(t *testing.T) {
	a := term.NewPredicate("p", []term.Term{term.NewAtomic("a", false)}, false)
	b := term.NewPredicate("p", []term.Term{term.NewAtomic("a", false), term.NewAtomic("b", false)}, false)
	_, ok := Unify(a, b)
	assert.False(t, ok)
}

func TestUnifyPredicateNameMismatch(t *testing.T) {
	a := term.NewPredicate("p", nil, false)
	b := term.NewPredicate("q", nil, false)
	_, ok := Unify(a, b)
	assert.False(t, ok)
}

func TestUnifyPredicateArgConflict(t *testing.T) {
	// parent(x?, x?) unified against parent(anna, bob) must fail: x? can't
	// be bound to both anna and bob.
	a := term.NewPredicate("parent", []term.Term{term.NewVariable("x"), term.NewVariable("x")}, false)
	b := term.NewPredicate("parent", []term.Term{term.NewAtomic("anna", false), term.NewAtomic("bob", false)}, false)
	_, ok := Unify(a, b)
	assert.False(t, ok)
}

// Ground terms unify with the empty substitution iff they are equal.
func TestUnifySymmetricOnGroundTerms(t *testing.T) {
	a := term.NewPredicate("p", []term.Term{term.NewAtomic("a", false)}, false)
	b := term.NewPredicate("p", []term.Term{term.NewAtomic("a", false)}, false)
	s, ok := Unify(a, b)
	assert.True(t, ok)
	assert.Equal(t, 0, s.Len())

	c := term.NewPredicate("p", []term.Term{term.NewAtomic("b", false)}, false)
	_, ok = Unify(a, c)
	assert.False(t, ok)
}
