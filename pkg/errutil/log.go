// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PIE Contributors

package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// knownContextKeys lists the oops context keys the reasoning kernel
// attaches to its own errors (rule/fact parse failures, comparison type
// errors, prove-depth exceedances). These are promoted to top-level log
// attributes instead of being buried in a nested blob, so a derivation
// failure reads as "fact=attack(u?, e?) depth=12" rather than an opaque
// context map; anything else still lands under "context".
var knownContextKeys = []string{
	"fact", "fact_index", "rule_index", "body", "head", "path", "line", "depth", "left", "right", "antecedent",
}

// LogError logs an error at Error level with structured context if it's
// an oops error. For oops errors, it extracts the message and code,
// promotes the reasoning kernel's known context keys to top-level
// attributes, and logs any remaining context under a single "context"
// attribute. For standard errors, it logs the error string.
func LogError(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, errorAttrs(err)...)
}

// LogWarn is LogError at Warn level, for recoverable derivation failures
// the engine aborts and continues past (an ordered comparison on a
// non-numeric operand fails the enclosing rule match, not the run).
func LogWarn(logger *slog.Logger, msg string, err error) {
	logger.Warn(msg, errorAttrs(err)...)
}

func errorAttrs(err error) []any {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return []any{"error", err}
	}

	attrs := []any{"error", oopsErr.Error()}
	if code := oopsErr.Code(); code != nil {
		attrs = append(attrs, "code", code)
	}

	ctx := oopsErr.Context()
	rest := make(map[string]any, len(ctx))
	for k, v := range ctx {
		rest[k] = v
	}
	for _, key := range knownContextKeys {
		if v, ok := rest[key]; ok {
			attrs = append(attrs, key, v)
			delete(rest, key)
		}
	}
	if len(rest) > 0 {
		attrs = append(attrs, "context", rest)
	}

	return attrs
}
