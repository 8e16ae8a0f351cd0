package engine

// Error codes produced by the engine package.
const (
	// CodeComparisonTypeError marks an ordered comparison attempted on a
	// non-Numeric operand after substitution. Fatal for the enclosing rule
	// match only; the engine aborts that match and continues.
	CodeComparisonTypeError = "COMPARISON_TYPE_ERROR"

	// CodeProveDepthExceeded marks backward-chaining recursion exceeding
	// the configured Options.MaxProveDepth ceiling.
	CodeProveDepthExceeded = "PROVE_DEPTH_EXCEEDED"
)
