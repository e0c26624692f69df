package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/velograph/dialect"
)

const (
	constraint = "CREATE CONSTRAINT BaseNodeIdUnique IF NOT EXISTS FOR (n:BaseNode) REQUIRE n.id IS UNIQUE"
	fullText   = "CREATE FULLTEXT INDEX PersonFullTextIndex IF NOT EXISTS FOR (n:Person) ON EACH [n.label, n.biography] " +
		"OPTIONS {indexConfig: {`fulltext.analyzer`: 'standard-no-stop-words', `fulltext.eventually_consistent`: true}}"
	index = "CREATE INDEX BaseNodeHeadNodeIndex IF NOT EXISTS FOR (n:BaseNode) ON (n.head_node)"
)

func TestExec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  Object
	}{
		{"constraint", constraint, Object{Kind: KindConstraint, Name: "BaseNodeIdUnique", Labels: []string{"BaseNode"}, Properties: []string{"id"}}},
		{"fulltext", fullText, Object{Kind: KindFullText, Name: "PersonFullTextIndex", Labels: []string{"Person"}, Properties: []string{"label", "biography"}}},
		{"index", index, Object{Kind: KindIndex, Name: "BaseNodeHeadNodeIndex", Labels: []string{"BaseNode"}, Properties: []string{"head_node"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := NewDriver()
			require.NoError(t, d.Exec(context.Background(), tt.query, nil))
			got, ok := d.Object(tt.want.Name)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIfNotExists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	d := NewDriver()
	for range 2 {
		require.NoError(t, d.Exec(ctx, constraint, nil))
		require.NoError(t, d.Exec(ctx, fullText, nil))
	}
	assert.Len(t, d.Objects(), 2)
	assert.Len(t, d.Executed(), 4)

	t.Run("same name without IF NOT EXISTS", func(t *testing.T) {
		err := d.Exec(ctx, "CREATE CONSTRAINT BaseNodeIdUnique FOR (n:Other) REQUIRE n.id IS UNIQUE", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("equivalent object", func(t *testing.T) {
		err := d.Exec(ctx, "CREATE CONSTRAINT Other FOR (n:BaseNode) REQUIRE n.id IS UNIQUE", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "equivalent constraint")

		require.NoError(t, d.Exec(ctx, "CREATE CONSTRAINT Other IF NOT EXISTS FOR (n:BaseNode) REQUIRE n.id IS UNIQUE", nil))
		assert.Len(t, d.Objects(), 2)
	})
}

func TestMultilineStatement(t *testing.T) {
	t.Parallel()

	d := NewDriver()
	q := "CREATE CONSTRAINT PGUserNameIndex IF NOT EXISTS\n\tFOR (n:PGUser)\n\tREQUIRE n.username IS UNIQUE\n"
	require.NoError(t, d.Exec(context.Background(), q, nil))
	_, ok := d.Object("PGUserNameIndex")
	assert.True(t, ok)
}

func TestFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	boom := errors.New("boom")
	d := NewDriver()
	d.FailOn("PersonFullTextIndex", boom)

	assert.ErrorIs(t, d.Exec(ctx, fullText, nil), boom)
	require.NoError(t, d.Exec(ctx, constraint, nil))
	_, ok := d.Object("PersonFullTextIndex")
	assert.False(t, ok)
	assert.Len(t, d.Executed(), 2)

	err := d.Exec(ctx, "MATCH (n) RETURN n", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported statement")

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, d.Exec(cctx, constraint, nil), context.Canceled)

	require.NoError(t, d.Close(ctx))
	assert.ErrorIs(t, d.Exec(ctx, constraint, nil), ErrClosed)
	assert.Equal(t, dialect.Memory, d.Dialect())
}
