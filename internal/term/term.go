// Package term implements the Fact term model: a tagged union of Atomic,
// Numeric, Predicate and Variable values, their structural equality, display
// form, and the single-term surface syntax parser.
package term

import (
	"strconv"
	"strings"

	"github.com/samber/oops"
)

// Kind discriminates the four term variants. Term is a single struct rather
// than an interface hierarchy so that every operation is an exhaustive switch
// over Kind instead of a type assertion.
type Kind int

const (
	Atomic Kind = iota
	Numeric
	Predicate
	Variable
)

func (k Kind) String() string {
	switch k {
	case Atomic:
		return "Atomic"
	case Numeric:
		return "Numeric"
	case Predicate:
		return "Predicate"
	case Variable:
		return "Variable"
	default:
		return "Unknown"
	}
}

// Term is a value of the Fact model: an Atomic, Numeric, Predicate or
// Variable. Only Kind-appropriate fields are meaningful: Name for
// Atomic/Predicate/Variable, Negative for Atomic/Predicate, Value for
// Numeric, Args for Predicate.
type Term struct {
	Kind     Kind
	Name     string
	Negative bool
	Value    int32
	Args     []Term
}

// NewAtomic builds an Atomic term.
func NewAtomic(name string, negative bool) Term {
	return Term{Kind: Atomic, Name: name, Negative: negative}
}

// NewNumeric builds a Numeric term.
func NewNumeric(v int32) Term {
	return Term{Kind: Numeric, Value: v}
}

// NewPredicate builds a Predicate term. Arity is len(args).
func NewPredicate(name string, args []Term, negative bool) Term {
	return Term{Kind: Predicate, Name: name, Args: args, Negative: negative}
}

// NewVariable builds a Variable term.
func NewVariable(name string) Term {
	return Term{Kind: Variable, Name: name}
}

// Arity returns len(Args) for a Predicate, 0 otherwise.
func (t Term) Arity() int {
	if t.Kind != Predicate {
		return 0
	}
	return len(t.Args)
}

// Equal reports structural equality: same variant, same name where
// applicable, same polarity, same numeric value, same arity and
// element-wise equal arguments.
func (t Term) Equal(other Term) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case Atomic:
		return t.Name == other.Name && t.Negative == other.Negative
	case Numeric:
		return t.Value == other.Value
	case Variable:
		return t.Name == other.Name
	case Predicate:
		if t.Name != other.Name || t.Negative != other.Negative || len(t.Args) != len(other.Args) {
			return false
		}
		for i := range t.Args {
			if !t.Args[i].Equal(other.Args[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Negate returns a term equal to t with inverted polarity. Negating a
// Variable or Numeric is a no-op.
func Negate(t Term) Term {
	switch t.Kind {
	case Atomic:
		return NewAtomic(t.Name, !t.Negative)
	case Predicate:
		return NewPredicate(t.Name, t.Args, !t.Negative)
	default:
		return t
	}
}

// String renders t in its surface syntax form.
func (t Term) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t Term) write(b *strings.Builder) {
	switch t.Kind {
	case Atomic:
		if t.Negative {
			b.WriteByte('!')
		}
		b.WriteString(t.Name)
	case Numeric:
		b.WriteString(strconv.FormatInt(int64(t.Value), 10))
	case Variable:
		b.WriteString(t.Name)
		b.WriteByte('?')
	case Predicate:
		if t.Negative {
			b.WriteByte('!')
		}
		b.WriteString(t.Name)
		b.WriteByte('(')
		for i, arg := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			arg.write(b)
		}
		b.WriteByte(')')
	}
}

// Parse parses a single trimmed token into a Term via an ordered dispatch:
// trailing '?' is a Variable; a token containing '(' and ending in ')' is
// a Predicate named by the text before the first '(' (optional leading '!'
// negates it; the parentheses are not checked for balance); a signed 32-bit integer literal is
// Numeric; anything else is an Atomic (optional leading '!' negates it).
//
// Nested predicates are handled by recursion on the argument substrings.
// Commas always split arguments at the top parenthesis level: escaped or
// quoted commas inside an argument are not supported.
func Parse(token string) (Term, error) {
	tok := strings.TrimSpace(token)
	if tok == "" {
		return Term{}, oops.Code("TERM_PARSE_ERROR").Errorf("empty term")
	}

	if strings.HasSuffix(tok, "?") {
		name := tok[:len(tok)-1]
		if name == "" {
			return Term{}, oops.Code("TERM_PARSE_ERROR").With("token", tok).Errorf("variable has empty name")
		}
		return NewVariable(name), nil
	}

	if open := strings.IndexByte(tok, '('); open >= 0 && strings.HasSuffix(tok, ")") {
		negative := false
		head := tok[:open]
		if strings.HasPrefix(head, "!") {
			negative = true
			head = head[1:]
		}
		if head == "" {
			return Term{}, oops.Code("TERM_PARSE_ERROR").With("token", tok).Errorf("predicate has empty name")
		}
		body := tok[open+1 : len(tok)-1]
		args, err := parseArgs(body)
		if err != nil {
			return Term{}, oops.Wrapf(err, "parsing predicate %q arguments", head)
		}
		return NewPredicate(head, args, negative), nil
	}

	if v, err := strconv.ParseInt(tok, 10, 32); err == nil {
		return NewNumeric(int32(v)), nil
	}

	negative := false
	name := tok
	if strings.HasPrefix(name, "!") {
		negative = true
		name = name[1:]
	}
	if name == "" {
		return Term{}, oops.Code("TERM_PARSE_ERROR").With("token", tok).Errorf("atomic has empty name")
	}
	return NewAtomic(name, negative), nil
}

// parseArgs splits a predicate's argument body on top-level commas and
// parses each one recursively.
func parseArgs(body string) ([]Term, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, nil
	}
	parts := splitTopLevel(body)
	args := make([]Term, 0, len(parts))
	for _, p := range parts {
		t, err := Parse(p)
		if err != nil {
			return nil, err
		}
		args = append(args, t)
	}
	return args, nil
}

// splitTopLevel splits s on commas that are not nested inside parentheses.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(s[start:]))
	return parts
}
