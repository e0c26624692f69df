package schema_test

import (
	"testing"

	"github.com/syssam/velograph/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComment(t *testing.T) {
	t.Parallel()

	ann := schema.Comment("Person represents a natural person.")
	require.NotNil(t, ann)
	assert.Equal(t, "Person represents a natural person.", ann.Text)
	assert.Equal(t, "Comment", ann.Name())

	var _ schema.Annotation = ann
}

// tagSet is a merging annotation used to exercise the Merger contract.
type tagSet struct {
	tags []string
}

func (*tagSet) Name() string { return "Tags" }

func (s *tagSet) Merge(other schema.Annotation) schema.Annotation {
	o, ok := other.(*tagSet)
	if !ok {
		return s
	}
	return &tagSet{tags: append(append([]string(nil), s.tags...), o.tags...)}
}

func TestMerger(t *testing.T) {
	t.Parallel()

	t.Run("same_type", func(t *testing.T) {
		merged := (&tagSet{tags: []string{"a"}}).Merge(&tagSet{tags: []string{"b", "c"}})
		ts, ok := merged.(*tagSet)
		require.True(t, ok)
		assert.Equal(t, []string{"a", "b", "c"}, ts.tags)
	})

	t.Run("other_type", func(t *testing.T) {
		s := &tagSet{tags: []string{"a"}}
		assert.Same(t, s, s.Merge(schema.Comment("x")))
	})
}
