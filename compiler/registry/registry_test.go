package registry_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/velograph"
	"github.com/syssam/velograph/compiler/load"
	"github.com/syssam/velograph/compiler/registry"
	"github.com/syssam/velograph/schema/edge"
	"github.com/syssam/velograph/schema/field"
)

type Person struct{ velograph.Entity }

func (Person) Fields() []velograph.Field {
	return []velograph.Field{
		// Place is declared after Person.
		field.Relation("lives_in", "Place").Config(edge.Relation("is home of")),
		field.Relation("knows", "Person").Many().Config(edge.Relation("is known by")),
	}
}

type Place struct{ velograph.Entity }

func (Place) Fields() []velograph.Field {
	return []velograph.Field{field.String("country")}
}

type Group struct{ velograph.Entity }

func (Group) Fields() []velograph.Field {
	return []velograph.Field{
		field.Relation("members", "Person", "Group").Many().Config(edge.Relation("is member of")),
	}
}

type Certainty struct{ velograph.EdgeModel }

type Identification struct{ velograph.ReifiedRelation }

func TestRegister(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	require.NoError(t, reg.Declare(Person{}, Certainty{}, Place{}, Identification{}, Group{}))
	assert.Equal(t, 5, reg.Len())

	names := func(ss []*load.Schema) []string {
		var out []string
		for _, s := range ss {
			out = append(out, s.Name)
		}
		return out
	}
	assert.Equal(t, []string{"Person", "Place", "Group"}, names(reg.AllBase()))
	assert.Equal(t, []string{"Certainty"}, names(reg.AllEdges()))
	assert.Equal(t, []string{"Identification"}, names(reg.AllTemplates()))

	person, err := reg.Get("Person")
	require.NoError(t, err)
	assert.Equal(t, load.KindEntity, person.Kind)

	_, err = reg.Get("Nobody")
	require.Error(t, err)
	assert.True(t, velograph.IsNotFound(err))
}

func TestRegisterIdempotent(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	require.NoError(t, reg.Declare(Person{}, Place{}))
	first, err := reg.Get("Person")
	require.NoError(t, err)

	require.NoError(t, reg.Declare(Person{}))
	second, err := reg.Get("Person")
	require.NoError(t, err)
	assert.NotSame(t, first, second, "definition is replaced in place")
	assert.Equal(t, 2, reg.Len())
	assert.Len(t, reg.AllBase(), 2)
	assert.Equal(t, "Person", reg.AllBase()[0].Name, "registration order is kept")

	require.NoError(t, reg.Register(second))
}

func TestRegisterConflictingKind(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	require.NoError(t, reg.Declare(Place{}))

	edgePlace := &load.Schema{Name: "Place", Kind: load.KindEdge}
	err := reg.Register(edgePlace)
	require.Error(t, err)
	assert.True(t, velograph.HasReason(err, velograph.ReasonDuplicate))

	err = reg.RegisterTemplate(&load.Schema{Name: "Other", Kind: load.KindEntity})
	assert.True(t, velograph.HasReason(err, velograph.ReasonInvalid))

	err = reg.Register(&load.Schema{Name: "NoKind"})
	assert.True(t, velograph.HasReason(err, velograph.ReasonInvalid))

	err = reg.Register(nil)
	assert.True(t, velograph.IsConfigurationError(err))
}

func TestRegisterFrozen(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	require.NoError(t, reg.Declare(Place{}))
	place, err := reg.Get("Place")
	require.NoError(t, err)
	place.Freeze()

	err = reg.Declare(Place{})
	assert.True(t, velograph.HasReason(err, velograph.ReasonFrozen))
}

func TestResolve(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	require.NoError(t, reg.Declare(Person{}, Group{}, Identification{}))

	// Place is referenced by Person but not declared yet.
	person, err := reg.Get("Person")
	require.NoError(t, err)
	livesIn, _ := person.Field("lives_in")
	_, err = reg.Resolve(livesIn.Type)
	require.Error(t, err)
	assert.True(t, velograph.HasReason(err, velograph.ReasonUnresolved))
	assert.True(t, errors.Is(err, velograph.ErrNotFound))

	require.NoError(t, reg.Declare(Place{}))
	targets, err := reg.Resolve(livesIn.Type)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "Place", targets[0].Name)

	group, _ := reg.Get("Group")
	members, _ := group.Field("members")
	targets, err = reg.Resolve(members.Type)
	require.NoError(t, err)
	assert.Len(t, targets, 2)

	targets, err = reg.Resolve(field.TemplateRef("Identification", field.EntityRef("Place")))
	require.NoError(t, err)
	assert.Equal(t, load.KindTemplate, targets[0].Kind)

	_, err = reg.Resolve(field.TemplateRef("Place", field.EntityRef("Person")))
	assert.True(t, velograph.HasReason(err, velograph.ReasonInvalid))

	_, err = reg.Resolve(field.ParamRef("T"))
	assert.True(t, velograph.HasReason(err, velograph.ReasonUnresolved))

	targets, err = reg.Resolve(field.PrimitiveRef(field.TypeInt))
	require.NoError(t, err)
	assert.Empty(t, targets)
}

func TestReverseRelations(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	require.NoError(t, reg.Declare(Person{}, Place{}, Group{}))

	rs := reg.ReverseRelations("Person")
	require.Len(t, rs, 2)
	assert.Equal(t, "Person", rs[0].Holder.Name)
	assert.Equal(t, "knows", rs[0].Field.Name)
	assert.Equal(t, "Group", rs[1].Holder.Name)
	assert.Equal(t, "members", rs[1].Field.Name)

	assert.Len(t, reg.ReverseRelations("Place"), 1)
	assert.Empty(t, reg.ReverseRelations("Certainty"))
}

func TestReset(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	var calls int
	reg.OnReset(func() {
		calls++
		// Listeners observe the cleared state.
		assert.Equal(t, 0, reg.Len())
	})
	require.NoError(t, reg.Declare(Person{}, Place{}, Certainty{}, Identification{}))
	before := reg.Generation()

	reg.Reset()
	assert.Equal(t, 1, calls)
	assert.Equal(t, before+1, reg.Generation())
	for _, name := range []string{"Person", "Place", "Certainty", "Identification"} {
		_, err := reg.Get(name)
		assert.True(t, velograph.IsNotFound(err), name)
	}
	assert.Empty(t, reg.AllBase())
	assert.Empty(t, reg.AllEdges())
	assert.Empty(t, reg.AllTemplates())

	// Redeclaring as another kind succeeds since no state survives.
	require.NoError(t, reg.Register(&load.Schema{Name: "Person", Kind: load.KindEdge}))
	person, err := reg.Get("Person")
	require.NoError(t, err)
	assert.Equal(t, load.KindEdge, person.Kind)
}

func TestConcurrentReads(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	require.NoError(t, reg.Declare(Person{}, Place{}, Group{}))

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_, err := reg.Get("Person")
				assert.NoError(t, err)
				assert.Len(t, reg.AllBase(), 3)
			}
		}()
	}
	wg.Wait()
}
