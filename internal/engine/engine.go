// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PIE Contributors

// Package engine implements the forward chainer (Infer), the backward
// chainer (Prove), negation-as-failure, and the query engine (Query) over
// an internal/kb.KnowledgeBase.
package engine

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/gargoilxd/pie/internal/eval"
	"github.com/gargoilxd/pie/internal/kb"
	"github.com/gargoilxd/pie/internal/rule"
	"github.com/gargoilxd/pie/internal/subst"
	"github.com/gargoilxd/pie/internal/term"
	"github.com/gargoilxd/pie/internal/unify"
	"github.com/gargoilxd/pie/pkg/errutil"
)

var tracer = otel.Tracer("pie/engine")

// Options configures the safety ceilings layered on top of the reasoning
// kernel. Zero values mean "unbounded"; the ceilings exist only to bound
// pathological inputs (unbounded term growth with no occurs-check, deep
// rule chains exhausting the call stack). A derivation that needs more
// passes or more depth than a non-zero ceiling allows is cut short by it.
type Options struct {
	// MaxProveDepth bounds internal/engine.process recursion depth. 0 means
	// unbounded.
	MaxProveDepth int
	// MaxInferIterations bounds the forward-chaining saturation loop. 0
	// means unbounded (run to fixed point).
	MaxInferIterations int
	// Logger receives debug-channel messages. Defaults to slog.Default()
	// if nil.
	Logger *slog.Logger
}

// Engine houses Infer, Prove and Query over a single KnowledgeBase.
type Engine struct {
	kb   *kb.KnowledgeBase
	opts Options
}

// New builds an Engine operating on kbase.
func New(kbase *kb.KnowledgeBase, opts Options) *Engine {
	return &Engine{kb: kbase, opts: opts}
}

func (e *Engine) logger() *slog.Logger {
	if e.opts.Logger != nil {
		return e.opts.Logger
	}
	return slog.Default()
}

// bindingAnchors extracts the candidate binding anchors: the subset of a
// postfix antecedent sequence whose item is Fact(t) with t neither a
// Variable nor a Numeric, in positional order.
func bindingAnchors(items []rule.AntecedentItem) []term.Term {
	var anchors []term.Term
	for _, item := range items {
		if item.Kind != rule.ItemFact {
			continue
		}
		if item.Fact.Kind == term.Variable || item.Fact.Kind == term.Numeric {
			continue
		}
		anchors = append(anchors, item.Fact)
	}
	return anchors
}

// negationHolds implements the closed-world check for an already
// substituted negative anchor t: the exact negative literal being present
// counts as a match; the positive counterpart being present fails the
// anchor; otherwise (no information) the negative literal succeeds.
func negationHolds(kbase *kb.KnowledgeBase, t term.Term) bool {
	if kbase.Has(t) {
		return true
	}
	if kbase.Has(term.Negate(t)) {
		return false
	}
	return true
}

// enumerate performs the depth-first anchor enumeration shared by Infer
// and Prove: at anchor index idx, apply current to the anchor; a negative
// anchor is resolved via negationHolds without extending current; a
// positive anchor is unified against every fact in facts, each success
// combined with current and recursed on.
func enumerate(facts []term.Term, anchors []term.Term, idx int, current subst.Substitution, kbase *kb.KnowledgeBase, out *[]subst.Substitution) {
	if idx >= len(anchors) {
		*out = append(*out, current)
		return
	}
	anchor := subst.Apply(current, anchors[idx])
	if anchor.Negative {
		if negationHolds(kbase, anchor) {
			enumerate(facts, anchors, idx+1, current, kbase, out)
		}
		return
	}
	for _, f := range facts {
		candidate, ok := unify.Unify(anchor, f)
		if !ok {
			continue
		}
		combined, ok := subst.Combine(current, candidate)
		if !ok {
			continue
		}
		enumerate(facts, anchors, idx+1, combined, kbase, out)
	}
}

// compare implements the comparison semantics: Equals/NotEquals use
// structural term equality; the four ordered comparisons require both
// operands to be Numeric, failing the rule match with
// CodeComparisonTypeError otherwise.
func compare(op rule.ItemKind, left, right term.Term) (bool, error) {
	switch op {
	case rule.ItemEquals:
		return left.Equal(right), nil
	case rule.ItemNotEquals:
		return !left.Equal(right), nil
	}
	if left.Kind != term.Numeric || right.Kind != term.Numeric {
		return false, oops.Code(CodeComparisonTypeError).
			With("left", left.String()).With("right", right.String()).
			Errorf("ordered comparison requires numeric operands")
	}
	switch op {
	case rule.ItemGreaterThan:
		return left.Value > right.Value, nil
	case rule.ItemGreaterOrEquals:
		return left.Value >= right.Value, nil
	case rule.ItemLesserThan:
		return left.Value < right.Value, nil
	case rule.ItemLesserOrEquals:
		return left.Value <= right.Value, nil
	default:
		return false, oops.Errorf("unknown comparison operator %v", op)
	}
}

// compareEval builds an eval.CompareEval that substitutes both operands
// under sigma before comparing.
func compareEval(sigma subst.Substitution) eval.CompareEval {
	return func(op rule.ItemKind, left, right term.Term) (bool, error) {
		return compare(op, subst.Apply(sigma, left), subst.Apply(sigma, right))
	}
}

// forwardFactEval builds the fact-evaluator callback used by Infer: a
// substituted fact holds if the KB already contains it, or, for a
// negative fact, if the KB does not contain its positive counterpart.
func (e *Engine) forwardFactEval(sigma subst.Substitution) eval.FactEval {
	return func(t term.Term) bool {
		st := subst.Apply(sigma, t)
		if e.kb.Has(st) {
			return true
		}
		if st.Negative {
			return !e.kb.Has(term.Negate(st))
		}
		return false
	}
}

// Infer runs the forward-chaining saturation loop to a fixed point. It is
// idempotent: calling it again once the fixed point is reached adds
// nothing further.
func (e *Engine) Infer(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "pie.engine.infer")
	defer span.End()

	start := time.Now()
	iterations := 0
	derived := 0
	terminated := "fixed_point"

	for {
		iterations++
		if e.opts.MaxInferIterations > 0 && iterations > e.opts.MaxInferIterations {
			iterations-- // this pass did not run
			terminated = "iteration_limit"
			e.logger().WarnContext(ctx, "infer: iteration limit reached, returning partial result",
				"limit", e.opts.MaxInferIterations)
			break
		}

		facts := e.kb.Facts()
		var newly []term.Term
		newlySeen := make(map[string]bool)
		changed := false

		for _, r := range e.kb.Rules() {
			anchors := bindingAnchors(r.Antecedents)
			var substitutions []subst.Substitution
			enumerate(facts, anchors, 0, subst.Empty(), e.kb, &substitutions)

			for _, sigma := range substitutions {
				ok, err := eval.Evaluate(r.Antecedents, e.forwardFactEval(sigma), compareEval(sigma))
				if err != nil {
					errutil.LogWarn(e.logger(), "infer: rule evaluation aborted", err)
					continue
				}
				if !ok {
					continue
				}
				consequent := subst.Apply(sigma, r.Consequent)
				key := consequent.String()
				if e.kb.Has(consequent) || newlySeen[key] {
					continue
				}
				newlySeen[key] = true
				newly = append(newly, consequent)
				changed = true
			}
		}

		for _, f := range newly {
			e.kb.AddFact(f)
		}
		derived += len(newly)
		e.logger().DebugContext(ctx, "infer: saturation pass complete", "iteration", iterations, "new_facts", len(newly))

		if !changed {
			break
		}
	}

	span.SetAttributes(
		attribute.Int("iterations", iterations),
		attribute.Int("facts_derived", derived),
		attribute.String("terminated", terminated),
	)
	recordInferMetrics(time.Since(start), iterations, derived, terminated)
	return nil
}

// process is the recursive backward-chaining proof procedure. Proven
// facts are appended to trace only on overall rule success; the caller
// commits trace to working memory only if the outermost call succeeds
// (commit-on-success).
func (e *Engine) process(fact term.Term, trace *[]term.Term, depth int) (bool, error) {
	if e.opts.MaxProveDepth > 0 && depth > e.opts.MaxProveDepth {
		recordProveDepthExceeded()
		return false, oops.Code(CodeProveDepthExceeded).
			With("depth", depth).With("fact", fact.String()).
			Errorf("backward-chaining recursion exceeded max depth %d", e.opts.MaxProveDepth)
	}

	if e.kb.Has(fact) {
		return true, nil
	}
	if fact.Negative && !e.kb.Has(term.Negate(fact)) {
		return true, nil
	}

	facts := e.kb.Facts()
	for _, r := range e.kb.Rules() {
		sigma0, ok := unify.Unify(r.Consequent, fact)
		if !ok {
			continue
		}

		anchors := bindingAnchors(r.Antecedents)
		var substitutions []subst.Substitution
		enumerate(facts, anchors, 0, sigma0, e.kb, &substitutions)

		for _, sigma := range substitutions {
			var procErr error
			factEval := func(t term.Term) bool {
				if procErr != nil {
					return false
				}
				st := subst.Apply(sigma, t)
				proven, err := e.process(st, trace, depth+1)
				if err != nil {
					procErr = err
					return false
				}
				return proven
			}

			ok, evalErr := eval.Evaluate(r.Antecedents, factEval, compareEval(sigma))
			if procErr != nil {
				return false, procErr
			}
			if evalErr != nil {
				errutil.LogWarn(e.logger(), "prove: rule evaluation aborted", evalErr)
				continue
			}
			if ok {
				*trace = append(*trace, fact)
				return true, nil
			}
		}
	}
	return false, nil
}

// Prove attempts to establish fact by goal-directed search. On success
// every fact along the proof trace is committed to working memory and
// true is returned; on failure the KB is left unmodified.
func (e *Engine) Prove(ctx context.Context, fact term.Term) (bool, error) {
	ctx, span := tracer.Start(ctx, "pie.engine.prove")
	defer span.End()

	start := time.Now()
	var trace []term.Term
	proven, err := e.process(fact, &trace, 0)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}
	if proven {
		for _, f := range trace {
			e.kb.AddFact(f)
		}
		e.logger().DebugContext(ctx, "prove: committed proof trace", "fact", fact.String(), "trace_len", len(trace))
	}

	span.SetAttributes(attribute.Bool("proven", proven), attribute.String("fact", fact.String()))
	recordProveMetrics(time.Since(start), proven)
	return proven, nil
}

// Query enumerates every fact in the KB that unifies with pattern, each
// mapped through apply(σ, pattern), deduplicated by first occurrence.
func (e *Engine) Query(ctx context.Context, pattern term.Term) []term.Term {
	_, span := tracer.Start(ctx, "pie.engine.query")
	defer span.End()

	var results []term.Term
	seen := make(map[string]bool)
	for _, f := range e.kb.Facts() {
		sigma, ok := unify.Unify(pattern, f)
		if !ok {
			continue
		}
		bound := subst.Apply(sigma, pattern)
		key := bound.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		results = append(results, bound)
	}

	span.SetAttributes(attribute.Int("result_count", len(results)))
	recordQueryMetrics(len(results))
	return results
}

// FormatQueryResult renders a Query result: a non-empty result is a
// newline-joined enumeration of the bound instances; an empty result is
// "No" for a positive pattern and "Yes" for a negative pattern
// (closed-world: nothing contradicts it).
func FormatQueryResult(pattern term.Term, results []term.Term) string {
	if len(results) == 0 {
		if pattern.Negative {
			return "Yes"
		}
		return "No"
	}
	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = r.String()
	}
	return strings.Join(lines, "\n")
}
