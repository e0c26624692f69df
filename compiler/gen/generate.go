package gen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/velograph/schema/field"
)

const (
	uuidPkg = "github.com/google/uuid"
	// indexFile holds the list of generated type names.
	indexFile = "velograph.go"
)

// JenniferGenerator renders the variants of a derived graph as Go structs,
// one file per type.
type JenniferGenerator struct {
	graph *Graph
}

// NewJenniferGenerator returns a generator for g. The output directory,
// package name and worker count come from the graph configuration.
func NewJenniferGenerator(g *Graph) *JenniferGenerator {
	return &JenniferGenerator{graph: g}
}

// Graph returns the graph being generated.
func (g *JenniferGenerator) Graph() *Graph { return g.graph }

// Generate derives the graph and writes its files. Files are rendered in
// parallel, bounded by the configured workers.
func (g *JenniferGenerator) Generate(ctx context.Context) error {
	cfg := g.graph.Config
	if cfg.Target == "" {
		return NewConfigError("Target", nil, "no target directory: use WithTarget")
	}
	if err := g.graph.Derive(); err != nil {
		return NewGenerationError("derive", "", "", err)
	}
	files, err := filenames(g.graph.Types())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Target, 0o755); err != nil {
		return NewGenerationError("write", cfg.Target, "create target directory", err)
	}

	errg, ctx := errgroup.WithContext(ctx)
	errg.SetLimit(cfg.Workers)
	for _, t := range g.graph.Types() {
		errg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return g.writeFile(g.genType(t), files[t])
		})
	}
	errg.Go(func() error {
		return g.writeFile(g.genIndex(), indexFile)
	})
	if err := errg.Wait(); err != nil {
		return err
	}
	cfg.Logger.Info("code generated", "target", cfg.Target, "types", len(g.graph.Nodes))
	return nil
}

// Generate derives g and writes its Go code to the configured target.
func Generate(ctx context.Context, g *Graph) error {
	return NewJenniferGenerator(g).Generate(ctx)
}

// filenames assigns a file to every type. A type that would take the
// index file gets a _type suffix. Types whose names differ only by case
// would share a file and are rejected.
func filenames(types []*Type) (map[*Type]string, error) {
	files := make(map[*Type]string, len(types))
	owners := make(map[string]*Type, len(types))
	for _, t := range types {
		name := strings.ToLower(t.GoName) + ".go"
		if name == indexFile {
			name = strings.TrimSuffix(name, ".go") + "_type.go"
		}
		if other, ok := owners[name]; ok {
			return nil, NewGenerationError("write", name,
				fmt.Sprintf("types %s and %s share a file name", other.Name, t.Name), nil)
		}
		owners[name] = t
		files[t] = name
	}
	return files, nil
}

func (g *JenniferGenerator) pkg() string {
	if p := g.graph.Package; p != "" {
		return p
	}
	return filepath.Base(g.graph.Target)
}

// writeFile renders f into the target directory.
func (g *JenniferGenerator) writeFile(f *jen.File, name string) error {
	path := filepath.Join(g.graph.Target, name)
	out, err := os.Create(path)
	if err != nil {
		return NewGenerationError("write", name, "", err)
	}
	defer out.Close()
	if err := f.Render(out); err != nil {
		return NewGenerationError("render", name, "", err)
	}
	return nil
}

// newFile creates a new Jennifer file with the header comment.
func (g *JenniferGenerator) newFile() *jen.File {
	f := jen.NewFile(g.pkg())
	if h := g.graph.Header; h != "" {
		f.HeaderComment(h)
	}
	return f
}

// genIndex renders the list of type names.
func (g *JenniferGenerator) genIndex() *jen.File {
	f := g.newFile()
	f.Comment("Types lists the names of the generated types, base entities first.")
	names := make([]jen.Code, 0, len(g.graph.Nodes))
	for _, t := range g.graph.Types() {
		names = append(names, jen.Lit(t.Name))
	}
	f.Var().Id("Types").Op("=").Index().String().Values(names...)
	return f
}

// genType renders the exposed variants of t.
func (g *JenniferGenerator) genType(t *Type) *jen.File {
	f := g.newFile()
	f.Commentf("%sType is the type name of %s.", t.GoName, t.GoName)
	f.Const().Id(t.GoName + "Type").Op("=").Lit(t.Name)
	for _, v := range t.Rendered() {
		f.Line()
		if t.Comment != "" && (v.Kind == View || v.Kind == HeadView) {
			f.Comment(t.Comment)
			f.Comment("")
		}
		f.Commentf("%s is the %s shape of %s.", v.Name(), v.Kind, t.Name)
		f.Type().Id(v.Name()).StructFunc(func(grp *jen.Group) {
			for _, vf := range v.Fields {
				g.genField(grp, vf)
			}
		})
	}
	return f
}


func (g *JenniferGenerator) genField(grp *jen.Group, f *Field) {
	name := f.StructField()
	s := jen.Id(name).Add(g.goType(f)).Tag(tag(f.JSONName, f.Required))
	if f.Comment != "" {
		s.Comment(f.Comment)
	}
	grp.Add(s)
	if len(f.EdgeFields) == 0 {
		return
	}
	// The edge model fields travel next to the relation they describe.
	grp.Id(name + "Edge").Op("*").StructFunc(func(eg *jen.Group) {
		for _, ef := range f.EdgeFields {
			g.genField(eg, ef)
		}
	}).Tag(tag(f.JSONName+"Edge", false))
}

func tag(name string, required bool) map[string]string {
	if !required {
		name += ",omitempty"
	}
	return map[string]string{"json": name}
}

// goType returns the Jennifer code for the Go type of a variant field.
func (g *JenniferGenerator) goType(f *Field) jen.Code {
	base := g.baseType(f)
	switch {
	case f.Many:
		return jen.Index().Add(base)
	case f.Opaque || len(f.Refs) > 1:
		return base
	case len(f.Refs) == 1, !f.Required && f.Kind != FieldMeta:
		return jen.Op("*").Add(base)
	}
	return base
}

func (g *JenniferGenerator) baseType(f *Field) jen.Code {
	switch {
	case f.Opaque:
		return jen.Any()
	case len(f.Refs) > 1:
		return jen.Any()
	case len(f.Refs) == 1:
		return jen.Id(refName(f.Refs[0]))
	}
	return primitiveType(f.Primitive)
}

func refName(r Ref) string {
	return goName(r.Type) + r.Variant.String()
}

func primitiveType(p field.Primitive) jen.Code {
	switch p {
	case field.TypeInt:
		return jen.Int64()
	case field.TypeFloat:
		return jen.Float64()
	case field.TypeBool:
		return jen.Bool()
	case field.TypeDate, field.TypeDateTime:
		return jen.Qual("time", "Time")
	case field.TypeUUID:
		return jen.Qual(uuidPkg, "UUID")
	case field.TypeJSON:
		return jen.Qual("encoding/json", "RawMessage")
	}
	return jen.String()
}
