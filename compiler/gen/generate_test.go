package gen

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/velograph"
	"github.com/syssam/velograph/compiler/load"
	"github.com/syssam/velograph/compiler/registry"
)

func TestJenniferGenerator(t *testing.T) {
	t.Parallel()

	target := t.TempDir()
	g := newGraph(t, WithTarget(target), WithPackage("models"), WithWorkers(2))

	gen := NewJenniferGenerator(g)
	assert.Same(t, g, gen.Graph())
	require.NoError(t, gen.Generate(context.Background()))

	for _, name := range []string{
		"person.go", "place.go", "address.go", "hidden.go",
		"identificationplace.go", "velograph.go",
	} {
		assert.FileExists(t, filepath.Join(target, name))
	}

	read := func(name string) string {
		b, err := os.ReadFile(filepath.Join(target, name))
		require.NoError(t, err)
		return string(b)
	}

	t.Run("header and package", func(t *testing.T) {
		src := read("person.go")
		assert.Contains(t, src, "// Code generated by velograph. DO NOT EDIT.")
		assert.Contains(t, src, "package models")
		assert.Contains(t, src, `const PersonType = "Person"`)
	})

	t.Run("variant structs", func(t *testing.T) {
		src := read("person.go")
		for _, name := range []string{
			"type PersonCreate struct", "type PersonHeadView struct",
			"type PersonEditSet struct", "type PersonReferenceSet struct",
			"type PersonEmbeddedView struct",
		} {
			assert.Contains(t, src, name)
		}
		assert.NotContains(t, src, "type PersonReferenceCreate struct")
	})

	t.Run("field types", func(t *testing.T) {
		src := read("person.go")
		for _, tt := range []struct{ name, typ, tag string }{
			{"Age", `*int64`, `age,omitempty`},
			{"Label", `string`, `label`},
			{"UUID", `uuid.UUID`, `uuid`},
			{"Knows", `[]any`, `knows`},
			{"Knows", `[]PersonReferenceView`, `knows`},
			{"IsKnownBy", `[]PersonReferenceView`, `isKnownBy,omitempty`},
			{"Address", `*AddressEmbeddedView`, `address,omitempty`},
			{"IdentifiedAs", `*IdentificationPlaceView`, `identifiedAs`},
			{"Legacy", `any`, `legacy`},
			{"ModifiedWhen", `time.Time`, `modifiedWhen`},
			{"ModifiedBy", `string`, `modifiedBy,omitempty`},
		} {
			assert.Regexp(t, structField(tt.name, tt.typ, tt.tag), src)
		}
		assert.Contains(t, src, `"github.com/google/uuid"`)
		assert.Regexp(t, `LivesInEdge\s+\*struct`, src)
	})

	t.Run("meta gating", func(t *testing.T) {
		src := read("place.go")
		assert.NotContains(t, src, "type PlaceCreate struct")
		assert.NotContains(t, src, "type PlaceEditSet struct")
		assert.Contains(t, src, "type PlaceReferenceCreate struct")

		src = read("hidden.go")
		assert.NotContains(t, src, "type HiddenView struct")
		assert.Contains(t, src, "type HiddenReferenceView struct")
	})

	t.Run("bindings render every shape", func(t *testing.T) {
		src := read("identificationplace.go")
		assert.Contains(t, src, `const IdentificationPlaceType = "Identification[Place]"`)
		assert.Contains(t, src, "type IdentificationPlaceCreate struct")
		assert.Regexp(t, structField("Certainty", "*int64", "certainty,omitempty"), src)
	})

	t.Run("index", func(t *testing.T) {
		src := read("velograph.go")
		assert.Contains(t, src, "var Types = []string{")
		assert.Contains(t, src, `"Identification[Place]"`)
	})
}

// structField matches a rendered struct field, whatever its alignment.
func structField(name, typ, tag string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + name + `\s+` + regexp.QuoteMeta(typ) + `\s+` + regexp.QuoteMeta("`json:\""+tag+"\"`"))
}

func TestGenerateDefaultPackage(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "graphmodels")
	g := newGraph(t, WithTarget(target))
	require.NoError(t, Generate(context.Background(), g))

	b, err := os.ReadFile(filepath.Join(target, "address.go"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "package graphmodels")
}

func TestGenerateErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing target", func(t *testing.T) {
		g := newGraph(t)
		err := NewJenniferGenerator(g).Generate(context.Background())
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})

	t.Run("derivation failure", func(t *testing.T) {
		reg := registry.New(registry.WithLogger(slog.New(slog.DiscardHandler)))
		require.NoError(t, reg.Declare(Person{}))
		g, err := NewGraph(reg, WithTarget(t.TempDir()), WithLogger(slog.New(slog.DiscardHandler)))
		require.NoError(t, err)

		err = Generate(context.Background(), g)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrGenerationFailed)
		assert.ErrorIs(t, err, velograph.ErrConfiguration)
	})
}

func TestGenerateFileNames(t *testing.T) {
	t.Parallel()

	graph := func(t *testing.T, decl string) *Graph {
		t.Helper()
		schemas, err := load.Parse(strings.NewReader(decl))
		require.NoError(t, err)
		reg := registry.New(registry.WithLogger(slog.New(slog.DiscardHandler)))
		require.NoError(t, reg.Load(schemas...))
		g, err := NewGraph(reg,
			WithTarget(t.TempDir()),
			WithPackage("models"),
			WithLogger(slog.New(slog.DiscardHandler)),
		)
		require.NoError(t, err)
		return g
	}

	t.Run("index file name", func(t *testing.T) {
		t.Parallel()
		g := graph(t, "models:\n  - name: Velograph\n  - name: Dock\n")
		require.NoError(t, Generate(context.Background(), g))

		typ, err := os.ReadFile(filepath.Join(g.Target, "velograph_type.go"))
		require.NoError(t, err)
		assert.Contains(t, string(typ), `VelographType = "Velograph"`)

		index, err := os.ReadFile(filepath.Join(g.Target, "velograph.go"))
		require.NoError(t, err)
		assert.Contains(t, string(index), "var Types")
		assert.FileExists(t, filepath.Join(g.Target, "dock.go"))
	})

	t.Run("case collision", func(t *testing.T) {
		t.Parallel()
		g := graph(t, "models:\n  - name: Harbourlog\n  - name: HarbourLog\n")
		err := Generate(context.Background(), g)
		require.Error(t, err)
		assert.True(t, IsGenerationError(err))
		assert.ErrorContains(t, err, "types Harbourlog and HarbourLog share a file name")
		assert.NoFileExists(t, filepath.Join(g.Target, "harbourlog.go"))
	})
}
