package edge_test

import (
	"testing"

	"github.com/syssam/velograph/schema/edge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"Is Target Of", "is_target_of"},
		{"is_target_of", "is_target_of"},
		{"Is Known By", "is_known_by"},
		{"ÉTÉ Of", "été_of"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, edge.NormalizeName(tt.input))
		})
	}
}

func TestRelationBuilder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		build    func() *edge.Config
		validate func(t *testing.T, c *edge.Config)
	}{
		{
			name: "defaults",
			build: func() *edge.Config {
				return edge.Relation("Is Target Of").Config()
			},
			validate: func(t *testing.T, c *edge.Config) {
				assert.Equal(t, "is_target_of", c.ReverseName)
				assert.Zero(t, c.Subclasses.Len())
				assert.Empty(t, c.EdgeModel)
				assert.False(t, c.CreateInline)
				assert.False(t, c.EditInline)
				assert.False(t, c.DeleteRelatedOnDetach)
				assert.Empty(t, c.DefaultType)
			},
		},
		{
			name: "inline_and_cascade",
			build: func() *edge.Config {
				return edge.Relation("is_part_of").CreateInline().EditInline().DeleteRelatedOnDetach().Config()
			},
			validate: func(t *testing.T, c *edge.Config) {
				assert.True(t, c.CreateInline)
				assert.True(t, c.EditInline)
				assert.True(t, c.DeleteRelatedOnDetach)
			},
		},
		{
			name: "edge_model_and_default_type",
			build: func() *edge.Config {
				return edge.Relation("is_known_by").EdgeModel("Certainty").DefaultType("Person").Config()
			},
			validate: func(t *testing.T, c *edge.Config) {
				assert.Equal(t, "Certainty", c.EdgeModel)
				assert.Equal(t, "Person", c.DefaultType)
			},
		},
		{
			name: "validators_keep_order",
			build: func() *edge.Config {
				return edge.Relation("has_part").Validate("min_items", 1).Validate("max_items", 3).Config()
			},
			validate: func(t *testing.T, c *edge.Config) {
				require.Len(t, c.Validators, 2)
				assert.Equal(t, "min_items=1", c.Validators[0].String())
				assert.Equal(t, "max_items=3", c.Validators[1].String())
			},
		},
		{
			name: "subclasses_accumulate",
			build: func() *edge.Config {
				return edge.Relation("is_owned_by").Subclasses("is_related_to").Subclasses("is_linked_to", "is_related_to").Config()
			},
			validate: func(t *testing.T, c *edge.Config) {
				assert.Equal(t, []string{"is_linked_to", "is_related_to"}, c.Subclasses.Items())
				assert.True(t, c.Subclasses.Has("is_linked_to"))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, tt.build())
		})
	}
}

func TestConfigEqual(t *testing.T) {
	t.Parallel()

	a := edge.New(edge.Config{ReverseName: "Is Owned By", Subclasses: edge.NewSet("a", "b", "c")})
	b := edge.New(edge.Config{ReverseName: "is_owned_by", Subclasses: edge.NewSet("c", "a", "b", "a")})
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())

	m := map[string]*edge.Config{a.Key(): a}
	assert.Contains(t, m, b.Key())

	c := edge.New(edge.Config{ReverseName: "is_owned_by", Subclasses: edge.NewSet("a")})
	assert.False(t, a.Equal(c))

	var nilCfg *edge.Config
	assert.True(t, nilCfg.Equal(nil))
	assert.False(t, nilCfg.Equal(a))
}

func TestConfigKeyDistinct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b edge.Config
	}{
		{
			name: "validator argument type",
			a:    edge.Config{ReverseName: "r", Validators: []edge.Validator{{Name: "max_items", Arg: 1}}},
			b:    edge.Config{ReverseName: "r", Validators: []edge.Validator{{Name: "max_items", Arg: "1"}}},
		},
		{
			name: "separator in subclass",
			a:    edge.Config{ReverseName: "r", Subclasses: edge.NewSet("a,b")},
			b:    edge.Config{ReverseName: "r", Subclasses: edge.NewSet("a", "b")},
		},
		{
			name: "separator in names",
			a:    edge.Config{ReverseName: "r|x", EdgeModel: ""},
			b:    edge.Config{ReverseName: "r", EdgeModel: "x"},
		},
		{
			name: "separator in validator name",
			a:    edge.Config{ReverseName: "r", Validators: []edge.Validator{{Name: "a,b"}}},
			b:    edge.Config{ReverseName: "r", Validators: []edge.Validator{{Name: "a"}, {Name: "b"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a, b := edge.New(tt.a), edge.New(tt.b)
			assert.False(t, a.Equal(b))
			assert.NotEqual(t, a.Key(), b.Key())
		})
	}

	same := []edge.Validator{{Name: "max_items", Arg: 3}}
	assert.True(t, edge.New(edge.Config{Validators: same}).Equal(edge.New(edge.Config{Validators: same})))
}

func TestSetIsImmutable(t *testing.T) {
	t.Parallel()

	names := []string{"b", "a"}
	s := edge.NewSet(names...)
	names[0] = "z"
	items := s.Items()
	items[0] = "y"
	assert.Equal(t, []string{"a", "b"}, s.Items())
	assert.Equal(t, "{a, b}", s.String())
}
