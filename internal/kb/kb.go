// Package kb implements the KnowledgeBase: two fact sets (axiomatic and
// working memory) plus an ordered rule list.
package kb

import (
	"github.com/gargoilxd/pie/internal/rule"
	"github.com/gargoilxd/pie/internal/term"
)

// factSet is an insertion-ordered set of terms, keyed by display string so
// membership checks use structural rather than pointer equality. Order is
// preserved so newly derived facts iterate in stable first-occurrence
// order.
type factSet struct {
	order []term.Term
	index map[string]int
}

func newFactSet() *factSet {
	return &factSet{index: make(map[string]int)}
}

func (s *factSet) has(t term.Term) bool {
	_, ok := s.index[t.String()]
	return ok
}

// add reports whether t was newly added (false if it was already present).
func (s *factSet) add(t term.Term) bool {
	key := t.String()
	if _, ok := s.index[key]; ok {
		return false
	}
	s.index[key] = len(s.order)
	s.order = append(s.order, t)
	return true
}

func (s *factSet) clear() {
	s.order = nil
	s.index = make(map[string]int)
}

// KnowledgeBase holds axiomatic facts and rules (seeded once at load) and a
// working memory of derived facts, mutated by Infer/Prove/ClearWorkingMemory.
type KnowledgeBase struct {
	axiomaticFacts *factSet
	workingMemory  *factSet
	axiomaticRules []rule.Rule
}

// New returns an empty knowledge base.
func New() *KnowledgeBase {
	return &KnowledgeBase{
		axiomaticFacts: newFactSet(),
		workingMemory:  newFactSet(),
	}
}

// AddAxiomaticFact seeds a fact present from the start. Intended for use
// during setup only.
func (kb *KnowledgeBase) AddAxiomaticFact(t term.Term) {
	kb.axiomaticFacts.add(t)
}

// AddAxiomaticRule appends a rule to the ordered rule list. Rule order is
// observable: forward chaining iterates rules in declaration order.
func (kb *KnowledgeBase) AddAxiomaticRule(r rule.Rule) {
	kb.axiomaticRules = append(kb.axiomaticRules, r)
}

// AddFact adds a derived fact to working memory. Returns true if it was
// newly added.
func (kb *KnowledgeBase) AddFact(t term.Term) bool {
	return kb.workingMemory.add(t)
}

// Has reports whether t is in the union of axiomatic facts and working
// memory.
func (kb *KnowledgeBase) Has(t term.Term) bool {
	return kb.axiomaticFacts.has(t) || kb.workingMemory.has(t)
}

// HasRule reports whether an axiomatic rule has a consequent equal to r's
// and the same number of antecedent items; the items themselves are not
// compared. Provided for completeness/testing; the engine itself
// only needs Rules().
func (kb *KnowledgeBase) HasRule(r rule.Rule) bool {
	for _, existing := range kb.axiomaticRules {
		if existing.Consequent.Equal(r.Consequent) && len(existing.Antecedents) == len(r.Antecedents) {
			return true
		}
	}
	return false
}

// Facts returns the union of axiomatic facts and working memory, axiomatic
// facts first, each in first-occurrence order.
func (kb *KnowledgeBase) Facts() []term.Term {
	out := make([]term.Term, 0, len(kb.axiomaticFacts.order)+len(kb.workingMemory.order))
	out = append(out, kb.axiomaticFacts.order...)
	out = append(out, kb.workingMemory.order...)
	return out
}

// Rules returns the axiomatic rules in declaration order.
func (kb *KnowledgeBase) Rules() []rule.Rule {
	return kb.axiomaticRules
}

// WorkingMemory returns the derived facts in first-occurrence order.
func (kb *KnowledgeBase) WorkingMemory() []term.Term {
	return kb.workingMemory.order
}

// ClearWorkingMemory discards all derived facts, leaving axiomatic facts
// and rules untouched.
func (kb *KnowledgeBase) ClearWorkingMemory() {
	kb.workingMemory.clear()
}

// Clear discards all facts and rules, axiomatic and derived alike.
func (kb *KnowledgeBase) Clear() {
	kb.axiomaticFacts.clear()
	kb.workingMemory.clear()
	kb.axiomaticRules = nil
}
