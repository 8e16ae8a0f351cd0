// Package rule compiles infix antecedent expressions into the postfix
// AntecedentItem sequence that internal/eval executes, and holds the Rule
// type.
package rule

import (
	"strings"

	"github.com/gargoilxd/pie/internal/term"
	"github.com/samber/oops"
)

// ItemKind discriminates the members of an AntecedentItem.
type ItemKind int

const (
	ItemFact ItemKind = iota
	ItemAnd
	ItemOr
	ItemEquals
	ItemNotEquals
	ItemGreaterThan
	ItemGreaterOrEquals
	ItemLesserThan
	ItemLesserOrEquals
)

// IsOperator reports whether k consumes operands rather than pushing a Fact.
func (k ItemKind) IsOperator() bool {
	return k != ItemFact
}

// IsComparison reports whether k is one of the six comparison operators.
func (k ItemKind) IsComparison() bool {
	switch k {
	case ItemEquals, ItemNotEquals, ItemGreaterThan, ItemGreaterOrEquals, ItemLesserThan, ItemLesserOrEquals:
		return true
	default:
		return false
	}
}

// AntecedentItem is one element of a compiled postfix antecedent sequence.
type AntecedentItem struct {
	Kind ItemKind
	Fact term.Term // meaningful only when Kind == ItemFact
}

// Rule is a compiled rule: a validated postfix antecedent sequence plus a
// consequent term. An empty antecedent sequence means the consequent is
// asserted unconditionally.
type Rule struct {
	Antecedents []AntecedentItem
	Consequent  term.Term
}

var precedence = map[string]int{
	"|":  1,
	"&":  2,
	"==": 3,
	"!=": 3,
	">":  3,
	">=": 3,
	"<":  3,
	"<=": 3,
}

var itemForOperator = map[string]ItemKind{
	"|":  ItemOr,
	"&":  ItemAnd,
	"==": ItemEquals,
	"!=": ItemNotEquals,
	">":  ItemGreaterThan,
	">=": ItemGreaterOrEquals,
	"<":  ItemLesserThan,
	"<=": ItemLesserOrEquals,
}

// Tokenize scans an antecedent string left to right: it splits on ASCII
// whitespace, except that a space immediately following a ',' is treated as
// part of the current token (so "f(a, b)" tokenises as a single token). '['
// and ']' are always their own tokens.
func Tokenize(s string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '[' || r == ']':
			flush()
			tokens = append(tokens, string(r))
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			// A space immediately following a ',' is part of the current
			// token; any other whitespace run is a separator.
			if cur.Len() > 0 {
				last := cur.String()[cur.Len()-1]
				if r == ' ' && last == ',' {
					cur.WriteRune(r)
					continue
				}
			}
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// Compile compiles an infix antecedent string into a validated postfix
// AntecedentItem sequence via shunting-yard. An empty (blank) antecedent
// string compiles to an empty sequence.
func Compile(antecedent string) ([]AntecedentItem, error) {
	tokens := Tokenize(antecedent)
	if len(tokens) == 0 {
		return nil, nil
	}

	var output []AntecedentItem
	var ops []string

	popToOutput := func(op string) {
		output = append(output, AntecedentItem{Kind: itemForOperator[op]})
	}

	for _, tok := range tokens {
		switch {
		case tok == "[":
			ops = append(ops, tok)
		case tok == "]":
			found := false
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				ops = ops[:len(ops)-1]
				if top == "[" {
					found = true
					break
				}
				popToOutput(top)
			}
			if !found {
				return nil, oops.Code("RULE_PARSE_ERROR").With("antecedent", antecedent).Errorf("unmatched ']'")
			}
		case isOperatorToken(tok):
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				if top == "[" || precedence[top] < precedence[tok] {
					break
				}
				ops = ops[:len(ops)-1]
				popToOutput(top)
			}
			ops = append(ops, tok)
		default:
			t, err := term.Parse(tok)
			if err != nil {
				return nil, oops.Wrapf(err, "parsing antecedent term %q", tok)
			}
			output = append(output, AntecedentItem{Kind: ItemFact, Fact: t})
		}
	}

	for len(ops) > 0 {
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		if top == "[" {
			return nil, oops.Code("RULE_PARSE_ERROR").With("antecedent", antecedent).Errorf("unmatched '['")
		}
		popToOutput(top)
	}

	if err := validatePostfix(output); err != nil {
		return nil, oops.Wrapf(err, "compiling antecedent %q", antecedent)
	}
	return output, nil
}

func isOperatorToken(tok string) bool {
	_, ok := precedence[tok]
	return ok
}

// validatePostfix checks that a postfix sequence has a well-formed stack
// arity: each Fact pushes one, each operator consumes two and pushes one,
// and the final height must be exactly one (or zero for an empty sequence).
func validatePostfix(items []AntecedentItem) error {
	if len(items) == 0 {
		return nil
	}
	height := 0
	for _, item := range items {
		if item.Kind == ItemFact {
			height++
			continue
		}
		if height < 2 {
			return oops.Code("POSTFIX_ARITY_ERROR").Errorf("operator with insufficient operands on stack")
		}
		height--
	}
	if height != 1 {
		return oops.Code("POSTFIX_ARITY_ERROR").With("final_height", height).Errorf("postfix expression must reduce to a single value")
	}
	return nil
}

// Compile Rule from a body antecedent string and a head term string.
func CompileRule(body, head string) (Rule, error) {
	antecedents, err := Compile(body)
	if err != nil {
		return Rule{}, err
	}
	consequent, err := term.Parse(head)
	if err != nil {
		return Rule{}, oops.Wrapf(err, "parsing rule consequent %q", head)
	}
	return Rule{Antecedents: antecedents, Consequent: consequent}, nil
}

// String renders a rule in the "BODY -> HEAD." surface form, recompiling
// the postfix sequence back to an infix display. The rendering re-parses
// to the same postfix sequence.
func (r Rule) String() string {
	body := infixOf(r.Antecedents)
	if body == "" {
		return r.Consequent.String() + "."
	}
	return body + " -> " + r.Consequent.String() + "."
}

// infixOf renders a postfix AntecedentItem sequence back to an infix string
// by replaying it on an explicit stack of rendered fragments. An operand is
// bracketed whenever re-parsing it unbracketed would bind differently: a
// lower-precedence subexpression on the left, lower-or-equal on the right
// (all operators are left-associative).
func infixOf(items []AntecedentItem) string {
	if len(items) == 0 {
		return ""
	}
	type fragment struct {
		text string
		prec int
	}
	const factPrec = 4
	symbol := map[ItemKind]string{
		ItemAnd: "&", ItemOr: "|",
		ItemEquals: "==", ItemNotEquals: "!=",
		ItemGreaterThan: ">", ItemGreaterOrEquals: ">=",
		ItemLesserThan: "<", ItemLesserOrEquals: "<=",
	}
	var stack []fragment
	for _, item := range items {
		if item.Kind == ItemFact {
			stack = append(stack, fragment{text: item.Fact.String(), prec: factPrec})
			continue
		}
		prec := precedence[symbol[item.Kind]]
		right := stack[len(stack)-1]
		left := stack[len(stack)-2]
		stack = stack[:len(stack)-2]
		lt := left.text
		if left.prec < prec {
			lt = "[" + lt + "]"
		}
		rt := right.text
		if right.prec <= prec {
			rt = "[" + rt + "]"
		}
		stack = append(stack, fragment{text: lt + " " + symbol[item.Kind] + " " + rt, prec: prec})
	}
	return stack[len(stack)-1].text
}
