// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PIE Contributors

package loader

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ruleFileLexer tokenises a rule file into comment/blank/content lines.
// Order matters: longer/structural patterns (Comment, Newline, Arrow, Dot)
// are tried before the single-character Text catch-all, so "->" is always
// captured whole even though Text's negated class would otherwise match
// its characters one at a time.
var ruleFileLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Newline", Pattern: `\r?\n`},
	{Name: "Arrow", Pattern: `->`},
	{Name: "Dot", Pattern: `\.`},
	{Name: "Text", Pattern: `[^\n#.]`},
})

// Segment is one token of a content line: a literal Arrow, a literal Dot,
// or a single character of surrounding text (term/antecedent surface
// syntax is parsed by internal/term and internal/rule, not by this
// grammar).
type Segment struct {
	Arrow string `parser:"(  @Arrow"`
	Dot   string `parser:" | @Dot"`
	Text  string `parser:" | @Text )"`
}

// Line is a whole-line comment, a non-empty sequence of Segments, or a
// bare Newline for a blank line. Every alternative consumes at least one
// token and takes the line's terminating Newline with it when present.
type Line struct {
	Comment  string     `parser:"(  @Comment Newline?"`
	Segments []*Segment `parser:" | @@+ Newline?"`
	Blank    bool       `parser:" | @Newline )"`
}

// RuleFile is a full parsed rule file: a sequence of Lines, each ending
// at its Newline token (the last line may lack one).
type RuleFile struct {
	Lines []*Line `parser:"@@*"`
}

var ruleFileParser = participle.MustBuild[RuleFile](
	participle.Lexer(ruleFileLexer),
	participle.UseLookahead(participle.MaxLookahead),
)

// rawLine is the result of collapsing a parsed Line's Segments back to
// plain text, split around the Arrow (if any).
type rawLine struct {
	isComment  bool
	isBlank    bool
	hasArrow   bool
	extraArrow bool // more than one Arrow before the terminating dot
	hasDot     bool
	before     string // body (rule) or whole fact text (no arrow), dot excluded
	after      string // head text (only meaningful when hasArrow), dot excluded
}

// collapse walks a Line's Segments once, splitting on the Arrow and
// stopping at the first Dot. Only one statement per physical line is
// supported: any text after the first Dot is ignored. A second Arrow is
// flagged rather than collapsed away; the caller rejects the line.
func collapse(l *Line) rawLine {
	if l.Comment != "" {
		return rawLine{isComment: true}
	}
	var before, after []byte
	seenArrow := false
	extraArrow := false
	seenDot := false
	for _, seg := range l.Segments {
		switch {
		case seg.Dot != "":
			seenDot = true
		case seenDot:
			// ignore anything past the terminating dot
		case seg.Arrow != "":
			if seenArrow {
				extraArrow = true
			}
			seenArrow = true
		case seenArrow:
			after = append(after, seg.Text...)
		default:
			before = append(before, seg.Text...)
		}
	}
	out := rawLine{hasArrow: seenArrow, extraArrow: extraArrow, hasDot: seenDot, before: string(before), after: string(after)}
	if !seenArrow && !seenDot && len(before) == 0 {
		out.isBlank = true
	}
	return out
}
