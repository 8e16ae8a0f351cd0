// Package loader builds a KnowledgeBase from fact/rule strings or from a
// rule file on disk.
package loader

import (
	"os"
	"strings"

	"github.com/samber/oops"

	"github.com/gargoilxd/pie/internal/kb"
	"github.com/gargoilxd/pie/internal/rule"
	"github.com/gargoilxd/pie/internal/term"
)

// RulePair is one rule-file line before compilation: an antecedent body
// string (may be empty) and a single consequent head string.
type RulePair struct {
	Body string
	Head string
}

// FromStrings builds a KnowledgeBase from already-split fact and rule
// strings: facts are parsed as terms, rule bodies/heads compiled into
// rules. The first failure aborts construction; no partial KnowledgeBase
// is returned.
func FromStrings(facts []string, rules []RulePair) (*kb.KnowledgeBase, error) {
	k := kb.New()

	for i, f := range facts {
		t, err := term.Parse(f)
		if err != nil {
			return nil, oops.Code("LOADER_SYNTAX_ERROR").With("fact_index", i).With("fact", f).Errorf("parsing fact: %v", err)
		}
		k.AddAxiomaticFact(t)
	}

	for i, r := range rules {
		compiled, err := rule.CompileRule(r.Body, r.Head)
		if err != nil {
			return nil, oops.Code("LOADER_SYNTAX_ERROR").With("rule_index", i).With("body", r.Body).With("head", r.Head).Errorf("compiling rule: %v", err)
		}
		k.AddAxiomaticRule(compiled)
	}

	return k, nil
}

// LoadFile reads a rule file and builds a KnowledgeBase from it, applying a
// per-line classification: blank lines and lines starting with '#' are
// comments; a line containing '->' is a rule (BODY -> HEAD.); any other
// non-blank line is a fact (TERM.). The trailing '.' is required and
// trimmed before delegating to FromStrings' underlying parsers.
func LoadFile(path string) (*kb.KnowledgeBase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Code("LOADER_IO_ERROR").With("path", path).Wrapf(err, "reading rule file")
	}

	file, err := ruleFileParser.ParseString(path, string(data))
	if err != nil {
		return nil, oops.Code("LOADER_SYNTAX_ERROR").With("path", path).Wrapf(err, "parsing rule file grammar")
	}

	var facts []string
	var rules []RulePair

	lineNo := 0
	for _, line := range file.Lines {
		lineNo++
		rl := collapse(line)
		if rl.isComment || rl.isBlank {
			continue
		}

		if !rl.hasDot {
			return nil, oops.Code("LOADER_SYNTAX_ERROR").With("line", lineNo).Errorf("line %d missing terminating '.'", lineNo)
		}
		if rl.extraArrow {
			return nil, oops.Code("LOADER_SYNTAX_ERROR").With("line", lineNo).Errorf("line %d has more than one '->'", lineNo)
		}

		if rl.hasArrow {
			rules = append(rules, RulePair{Body: strings.TrimSpace(rl.before), Head: strings.TrimSpace(rl.after)})
			continue
		}

		facts = append(facts, strings.TrimSpace(rl.before))
	}

	k, err := FromStrings(facts, rules)
	if err != nil {
		return nil, oops.Code("LOADER_SYNTAX_ERROR").With("path", path).Wrapf(err, "loading rule file")
	}
	return k, nil
}
