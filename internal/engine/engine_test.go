package engine

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gargoilxd/pie/internal/kb"
	"github.com/gargoilxd/pie/internal/rule"
	"github.com/gargoilxd/pie/internal/term"
	"github.com/gargoilxd/pie/pkg/errutil"
)

func mustFact(t *testing.T, s string) term.Term {
	t.Helper()
	f, err := term.Parse(s)
	require.NoError(t, err)
	return f
}

func mustRule(t *testing.T, body, head string) rule.Rule {
	t.Helper()
	r, err := rule.CompileRule(body, head)
	require.NoError(t, err)
	return r
}

// S1: player_nearby & has_ammo -> should_attack.
func TestInferConjunction(t *testing.T) {
	k := kb.New()
	k.AddAxiomaticFact(mustFact(t, "player_nearby"))
	k.AddAxiomaticFact(mustFact(t, "has_ammo"))
	k.AddAxiomaticRule(mustRule(t, "player_nearby & has_ammo", "should_attack"))

	e := New(k, Options{})
	require.NoError(t, e.Infer(context.Background()))

	assert.True(t, k.Has(mustFact(t, "should_attack")))
}

// S2: player_nearby & !has_ammo -> should_attack, with has_ammo absent (negated present).
func TestInferNegationAsFailure(t *testing.T) {
	k := kb.New()
	k.AddAxiomaticFact(mustFact(t, "player_nearby"))
	k.AddAxiomaticFact(mustFact(t, "!has_ammo"))
	k.AddAxiomaticRule(mustRule(t, "player_nearby & !has_ammo", "should_attack"))

	e := New(k, Options{})
	require.NoError(t, e.Infer(context.Background()))

	results := e.Query(context.Background(), mustFact(t, "should_attack"))
	assert.NotEmpty(t, results)
}

// S3: grandparent via chained predicate rules.
func TestInferGrandparent(t *testing.T) {
	k := kb.New()
	k.AddAxiomaticFact(mustFact(t, "parent(john, mary)"))
	k.AddAxiomaticFact(mustFact(t, "parent(mary, alice)"))
	k.AddAxiomaticRule(mustRule(t, "parent(x?, y?) & parent(y?, z?)", "grandparent(x?, z?)"))

	e := New(k, Options{})
	require.NoError(t, e.Infer(context.Background()))

	assert.True(t, k.Has(mustFact(t, "grandparent(john, alice)")))
}

// S4: sister/2 derived from mother/2 + gender facts + inequality guard.
func TestInferSisterWithInequalityGuard(t *testing.T) {
	k := kb.New()
	facts := []string{
		"mother(boatemaa, akosua)", "mother(boatemaa, ama)", "mother(boatemaa, kofi)", "mother(ama, osei)",
		"person(akosua, female)", "person(ama, female)", "person(kofi, male)", "person(osei, male)",
		"person(boatemaa, female)",
	}
	for _, f := range facts {
		k.AddAxiomaticFact(mustFact(t, f))
	}
	k.AddAxiomaticRule(mustRule(t, "person(x?, female) & mother(z?, x?) & mother(z?, y?) & x? != y?", "sister(x?, y?)"))

	e := New(k, Options{})
	require.NoError(t, e.Infer(context.Background()))

	want := []string{"sister(ama, akosua)", "sister(ama, kofi)", "sister(akosua, ama)", "sister(akosua, kofi)"}
	for _, w := range want {
		assert.True(t, k.Has(mustFact(t, w)), "expected %s to be derived", w)
	}
}

// S5: visible+cloak derives cannot_target, not can_target.
func TestInferMutuallyExclusiveRules(t *testing.T) {
	k := kb.New()
	k.AddAxiomaticFact(mustFact(t, "visible(unit_123)"))
	k.AddAxiomaticFact(mustFact(t, "has_ability(unit_123, cloak)"))
	k.AddAxiomaticRule(mustRule(t, "visible(u?) & !has_ability(u?, cloak)", "can_target(u?)"))
	k.AddAxiomaticRule(mustRule(t, "visible(u?) & has_ability(u?, cloak)", "cannot_target(u?)"))

	e := New(k, Options{})
	require.NoError(t, e.Infer(context.Background()))

	assert.True(t, k.Has(mustFact(t, "cannot_target(unit_123)")))
	assert.False(t, k.Has(mustFact(t, "can_target(unit_123)")))
}

// S6: attack/2 derived with a numeric comparison guard, symmetric pair.
func TestInferNumericComparisonGuard(t *testing.T) {
	k := kb.New()
	facts := []string{
		"unit_type(marine_1, infantry)", "health(marine_1, 100)", "visible(marine_1)",
		"visible(tank_1)", "unit_type(tank_1, vehicle)", "near(marine_1, tank_1)", "health(tank_1, 100)",
	}
	for _, f := range facts {
		k.AddAxiomaticFact(mustFact(t, f))
	}
	k.AddAxiomaticRule(mustRule(t, "visible(u?) & health(u?, h?) & h? > 80 & visible(e?) & u? != e?", "attack(u?, e?)"))

	e := New(k, Options{})
	require.NoError(t, e.Infer(context.Background()))

	results := e.Query(context.Background(), mustFact(t, "attack(a?, b?)"))
	var rendered []string
	for _, r := range results {
		rendered = append(rendered, r.String())
	}
	sort.Strings(rendered)
	assert.Contains(t, rendered, "attack(marine_1, tank_1)")
	assert.Contains(t, rendered, "attack(tank_1, marine_1)")
}

// Running Infer twice must leave the KB exactly as running it once does.
func TestInferIdempotent(t *testing.T) {
	k := kb.New()
	k.AddAxiomaticFact(mustFact(t, "player_nearby"))
	k.AddAxiomaticFact(mustFact(t, "has_ammo"))
	k.AddAxiomaticRule(mustRule(t, "player_nearby & has_ammo", "should_attack"))

	e := New(k, Options{})
	require.NoError(t, e.Infer(context.Background()))
	after1 := append([]term.Term{}, k.WorkingMemory()...)

	require.NoError(t, e.Infer(context.Background()))
	after2 := k.WorkingMemory()

	require.Equal(t, len(after1), len(after2))
	for i := range after1 {
		assert.True(t, after1[i].Equal(after2[i]))
	}
}

func TestProveSucceedsAndCommits(t *testing.T) {
	k := kb.New()
	k.AddAxiomaticFact(mustFact(t, "parent(john, mary)"))
	k.AddAxiomaticFact(mustFact(t, "parent(mary, alice)"))
	k.AddAxiomaticRule(mustRule(t, "parent(x?, y?) & parent(y?, z?)", "grandparent(x?, z?)"))

	e := New(k, Options{})
	ok, err := e.Prove(context.Background(), mustFact(t, "grandparent(john, alice)"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, k.Has(mustFact(t, "grandparent(john, alice)")))
}

func TestProveFailureLeavesKBUnchanged(t *testing.T) {
	k := kb.New()
	k.AddAxiomaticFact(mustFact(t, "parent(john, mary)"))
	e := New(k, Options{})

	before := len(k.Facts())
	ok, err := e.Prove(context.Background(), mustFact(t, "grandparent(john, alice)"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, before, len(k.Facts()))
}

func TestProveDirectFact(t *testing.T) {
	k := kb.New()
	k.AddAxiomaticFact(mustFact(t, "has_ammo"))
	e := New(k, Options{})
	ok, err := e.Prove(context.Background(), mustFact(t, "has_ammo"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestProveNegationClosedWorld(t *testing.T) {
	k := kb.New()
	e := New(k, Options{})
	// Nothing known about has_ammo: !has_ammo proves true under CWA.
	ok, err := e.Prove(context.Background(), mustFact(t, "!has_ammo"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestQueryUnificationAndDedup(t *testing.T) {
	k := kb.New()
	k.AddAxiomaticFact(mustFact(t, "parent(john, mary)"))
	k.AddAxiomaticFact(mustFact(t, "parent(john, mary)")) // duplicate add is a no-op
	k.AddAxiomaticFact(mustFact(t, "parent(mary, alice)"))

	e := New(k, Options{})
	results := e.Query(context.Background(), mustFact(t, "parent(john, y?)"))
	require.Len(t, results, 1)
	assert.Equal(t, "parent(john, mary)", results[0].String())
}

func TestQueryEmptyFormatting(t *testing.T) {
	k := kb.New()
	e := New(k, Options{})

	results := e.Query(context.Background(), mustFact(t, "should_attack"))
	assert.Equal(t, "No", FormatQueryResult(mustFact(t, "should_attack"), results))

	negResults := e.Query(context.Background(), mustFact(t, "!should_attack"))
	assert.Equal(t, "Yes", FormatQueryResult(mustFact(t, "!should_attack"), negResults))
}

func TestComparisonTypeErrorAbortsRuleMatch(t *testing.T) {
	k := kb.New()
	k.AddAxiomaticFact(mustFact(t, "a(x)"))
	k.AddAxiomaticRule(mustRule(t, "a(v?) & v? > 1", "b(v?)"))

	e := New(k, Options{})
	require.NoError(t, e.Infer(context.Background()))
	// v? binds to the Atomic "x", not a Numeric: the ordered comparison
	// fails the match and b(x) must never be derived.
	assert.False(t, k.Has(mustFact(t, "b(x)")))
}

func TestProveDepthExceededIsRecoverable(t *testing.T) {
	k := kb.New()
	e := New(k, Options{MaxProveDepth: 2})

	var trace []term.Term
	_, err := e.process(mustFact(t, "anything"), &trace, 3)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, CodeProveDepthExceeded, "depth", 3, "fact", "anything")
}

func TestProveDepthZeroMeansUnbounded(t *testing.T) {
	k := kb.New()
	k.AddAxiomaticFact(mustFact(t, "has_ammo"))
	e := New(k, Options{MaxProveDepth: 0})

	var trace []term.Term
	ok, err := e.process(mustFact(t, "has_ammo"), &trace, 1000)
	require.NoError(t, err)
	assert.True(t, ok)
}
