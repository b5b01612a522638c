package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawdo/rowbatch/dialect"
	"github.com/bawdo/rowbatch/nodes"
	"github.com/bawdo/rowbatch/visitors"
)

// AssertSQL renders node for family and compares it with the expected string.
func AssertSQL(t *testing.T, family dialect.Family, node nodes.Node, expected string, opts ...visitors.Option) {
	t.Helper()
	got, err := visitors.NewRenderContext(family, opts...).Render(node)
	require.NoError(t, err)
	assert.Equal(t, expected, got)
}

// AssertInlined renders node for family with every value inlined.
func AssertInlined(t *testing.T, family dialect.Family, node nodes.Node, expected string) {
	t.Helper()
	AssertSQL(t, family, node, expected, visitors.WithoutParams())
}

// AssertCompiled renders and binds node for family and checks both halves,
// including that the bind count matches the placeholder count.
func AssertCompiled(t *testing.T, family dialect.Family, node nodes.Node, expectedSQL string, expectedArgs ...any) {
	t.Helper()
	r := visitors.NewRenderContext(family)
	got, err := r.Render(node)
	require.NoError(t, err)
	assert.Equal(t, expectedSQL, got)

	args, err := visitors.NewBindContext(family).Bind(node)
	require.NoError(t, err)
	if len(expectedArgs) == 0 {
		assert.Empty(t, args)
	} else {
		assert.Equal(t, expectedArgs, args)
	}
	assert.Equal(t, r.Placeholders(), len(args), "placeholders vs bound values")
}

// AssertRenderError renders node for family and requires an error.
func AssertRenderError(t *testing.T, family dialect.Family, node nodes.Node, opts ...visitors.Option) error {
	t.Helper()
	_, err := visitors.NewRenderContext(family, opts...).Render(node)
	require.Error(t, err)
	return err
}
