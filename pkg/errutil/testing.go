// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PIE Contributors

package errutil

import (
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertErrorCode asserts that err is an oops error with the given code.
// Trailing key/value pairs, if any, are asserted against the error's
// context — e.g. AssertErrorCode(t, err, CodeProveDepthExceeded, "depth",
// 3) also checks that the error's "depth" context entry equals 3. This is
// how rule/fact parse failures (which carry a "fact"/"rule_index") and
// prove-depth exceedances (which carry a "depth") get checked in one call
// instead of a separate context-only assertion.
func AssertErrorCode(t *testing.T, err error, code string, contextKV ...any) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T", err)
	assert.Equal(t, code, oopsErr.Code())

	require.Zero(t, len(contextKV)%2, "contextKV must be an even number of key/value arguments")
	ctx := oopsErr.Context()
	for i := 0; i < len(contextKV); i += 2 {
		key, ok := contextKV[i].(string)
		require.True(t, ok, "context key at index %d must be a string", i)
		assert.Contains(t, ctx, key)
		assert.Equal(t, contextKV[i+1], ctx[key])
	}
}
