package gen

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/velograph"
	"github.com/syssam/velograph/compiler/registry"
	"github.com/syssam/velograph/schema/field"
)

func newSpecializer(t *testing.T) (*Specializer, *registry.Registry) {
	t.Helper()
	reg := registry.New(registry.WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, reg.Declare(declarations()...))
	return NewSpecializer(reg, slog.New(slog.DiscardHandler)), reg
}

func TestSpecialize(t *testing.T) {
	t.Parallel()

	s, reg := newSpecializer(t)

	place, err := s.Specialize("Identification", "Place")
	require.NoError(t, err)
	person, err := s.Specialize("Identification", "Person")
	require.NoError(t, err)

	assert.NotSame(t, place, person)
	assert.Equal(t, "Identification[Place]", place.Name)
	assert.Equal(t, BindingKey{Template: "Identification", Args: "Place"}, place.Key)

	again, err := s.Specialize("Identification", "Place")
	require.NoError(t, err)
	assert.Same(t, place, again)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []*Binding{place, person}, s.Bindings())

	target, ok := place.Field("target")
	require.True(t, ok)
	assert.True(t, target.Type.Equal(field.EntityRef("Place")))
	assert.Equal(t, "Place", target.TypeExpr)
	assert.True(t, target.IsRelation())

	// The template keeps its type variable.
	tmpl, err := reg.Get("Identification")
	require.NoError(t, err)
	tf, _ := tmpl.Field("target")
	assert.Equal(t, field.RefParam, tf.Type.Kind)
	assert.True(t, tmpl.Frozen())
}

func TestSpecializeNested(t *testing.T) {
	t.Parallel()

	s, _ := newSpecializer(t)
	b, err := s.Specialize("Pair", "Person", "Place")
	require.NoError(t, err)
	assert.Equal(t, "Pair[Person, Place]", b.Name)
	assert.Equal(t, "Pair[Person,Place]", b.Key.String())

	right, ok := b.Field("right")
	require.True(t, ok)
	assert.Equal(t, "Identification[Place]", right.Type.String())
	assert.True(t, right.Type.Concrete())

	// Template arguments may themselves be bound templates.
	ref := field.TemplateRef("Identification",
		field.TemplateRef("Pair", field.EntityRef("Person"), field.EntityRef("Place")))
	nested, err := s.SpecializeRef(ref)
	require.NoError(t, err)
	assert.Equal(t, "Identification[Pair[Person, Place]]", nested.Name)
}

func TestSpecializeUnion(t *testing.T) {
	t.Parallel()

	s, _ := newSpecializer(t)
	ref := field.TemplateRef("Identification", field.UnionRef(field.EntityRef("Person"), field.EntityRef("Place")))
	b, err := s.SpecializeRef(ref)
	require.NoError(t, err)
	target, _ := b.Field("target")
	assert.Equal(t, []string{"Person", "Place"}, target.Type.Targets())
}

func TestSpecializeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		ref    *field.TypeRef
		reason velograph.Reason
	}{
		{"arity", field.TemplateRef("Pair", field.EntityRef("Person")), velograph.ReasonArity},
		{"too many", field.TemplateRef("Identification", field.EntityRef("Person"), field.EntityRef("Place")), velograph.ReasonArity},
		{"unknown template", field.TemplateRef("Nope", field.EntityRef("Person")), velograph.ReasonUnresolved},
		{"unknown argument", field.TemplateRef("Identification", field.EntityRef("Nope")), velograph.ReasonUnresolved},
		{"not a template", field.TemplateRef("Person", field.EntityRef("Place")), velograph.ReasonInvalid},
		{"primitive argument", field.TemplateRef("Identification", field.PrimitiveRef(field.TypeInt)), velograph.ReasonInvalid},
		{"unbound variable", field.TemplateRef("Identification", field.ParamRef("T")), velograph.ReasonUnresolved},
		{"not a template reference", field.EntityRef("Person"), velograph.ReasonInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, _ := newSpecializer(t)
			_, err := s.SpecializeRef(tt.ref)
			require.Error(t, err)
			assert.True(t, velograph.HasReason(err, tt.reason), err.Error())
			assert.Zero(t, s.Len(), "failed bindings are not cached")
		})
	}
}

func TestOnBind(t *testing.T) {
	t.Parallel()

	s, _ := newSpecializer(t)
	var got []string
	s.OnBind(func(b *Binding) { got = append(got, b.Name) })

	_, err := s.Specialize("Identification", "Place")
	require.NoError(t, err)
	_, err = s.Specialize("Identification", "Place")
	require.NoError(t, err)
	_, err = s.Specialize("Identification", "Person")
	require.NoError(t, err)

	assert.Equal(t, []string{"Identification[Place]", "Identification[Person]"}, got)
}

func TestSpecializerReset(t *testing.T) {
	t.Parallel()

	s, reg := newSpecializer(t)
	old, err := s.Specialize("Identification", "Place")
	require.NoError(t, err)

	reg.Reset()
	assert.Zero(t, s.Len())
	_, ok := s.Binding(old.Key)
	assert.False(t, ok)

	_, err = s.Specialize("Identification", "Place")
	require.Error(t, err)
	assert.True(t, velograph.HasReason(err, velograph.ReasonUnresolved))

	require.NoError(t, reg.Declare(declarations()...))
	fresh, err := s.Specialize("Identification", "Place")
	require.NoError(t, err)
	assert.NotSame(t, old, fresh)
}

func TestSpecializeConcurrent(t *testing.T) {
	t.Parallel()

	s, _ := newSpecializer(t)
	var (
		wg      sync.WaitGroup
		results = make([]*Binding, 16)
	)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := s.Specialize("Identification", "Person")
			assert.NoError(t, err)
			results[i] = b
		}()
	}
	wg.Wait()
	for _, b := range results {
		assert.Same(t, results[0], b)
	}
	assert.Equal(t, 1, s.Len())
}
