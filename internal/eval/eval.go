// Package eval implements the postfix antecedent stack-machine evaluator:
// given a compiled rule.AntecedentItem sequence, a fact evaluator callback
// and a comparison evaluator callback, it computes the rule's Boolean
// antecedent value.
package eval

import (
	"github.com/gargoilxd/pie/internal/rule"
	"github.com/gargoilxd/pie/internal/term"
	"github.com/samber/oops"
)

// FactEval decides whether a (substituted) fact term currently holds.
type FactEval func(t term.Term) bool

// CompareEval evaluates a comparison operator on two (substituted) terms.
// It returns an error carrying code COMPARISON_TYPE_ERROR when the operator
// requires operands this implementation cannot compare.
type CompareEval func(op rule.ItemKind, left, right term.Term) (bool, error)

// stackEntry is either an unevaluated Fact or an already-computed Value.
type stackEntry struct {
	isValue bool
	value   bool
	fact    term.Term
}

// Evaluate executes the postfix sequence. And/Or evaluate their left
// operand first with explicit short-circuit before touching the right
// operand. Comparison operators require both popped operands to still be
// raw Facts (they operate on terms directly, never on Boolean
// intermediates) and are evaluated via cmp.
//
// An empty sequence evaluates to true (an unconditional consequent).
func Evaluate(items []rule.AntecedentItem, fact FactEval, cmp CompareEval) (bool, error) {
	if len(items) == 0 {
		return true, nil
	}

	var stack []stackEntry
	for _, item := range items {
		switch item.Kind {
		case rule.ItemFact:
			stack = append(stack, stackEntry{fact: item.Fact})

		case rule.ItemAnd:
			right, left, err := pop2(&stack)
			if err != nil {
				return false, err
			}
			leftVal, err := resolve(left, fact)
			if err != nil {
				return false, err
			}
			if !leftVal {
				stack = append(stack, stackEntry{isValue: true, value: false})
				continue
			}
			rightVal, err := resolve(right, fact)
			if err != nil {
				return false, err
			}
			stack = append(stack, stackEntry{isValue: true, value: rightVal})

		case rule.ItemOr:
			right, left, err := pop2(&stack)
			if err != nil {
				return false, err
			}
			leftVal, err := resolve(left, fact)
			if err != nil {
				return false, err
			}
			if leftVal {
				stack = append(stack, stackEntry{isValue: true, value: true})
				continue
			}
			rightVal, err := resolve(right, fact)
			if err != nil {
				return false, err
			}
			stack = append(stack, stackEntry{isValue: true, value: rightVal})

		default:
			right, left, err := pop2(&stack)
			if err != nil {
				return false, err
			}
			if left.isValue || right.isValue {
				return false, oops.Code("EVAL_STACK_ERROR").Errorf("comparison operator operands must be raw facts")
			}
			v, err := cmp(item.Kind, left.fact, right.fact)
			if err != nil {
				return false, err
			}
			stack = append(stack, stackEntry{isValue: true, value: v})
		}
	}

	if len(stack) != 1 {
		return false, oops.Code("EVAL_STACK_ERROR").With("final_height", len(stack)).Errorf("postfix evaluation did not reduce to a single value")
	}
	return resolve(stack[0], fact)
}

func pop2(stack *[]stackEntry) (right, left stackEntry, err error) {
	s := *stack
	if len(s) < 2 {
		return stackEntry{}, stackEntry{}, oops.Code("EVAL_STACK_ERROR").Errorf("operator with insufficient operands on stack")
	}
	right = s[len(s)-1]
	left = s[len(s)-2]
	*stack = s[:len(s)-2]
	return right, left, nil
}

func resolve(e stackEntry, fact FactEval) (bool, error) {
	if e.isValue {
		return e.value, nil
	}
	return fact(e.fact), nil
}
