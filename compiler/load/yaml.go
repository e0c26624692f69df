package load

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/syssam/velograph"
	"github.com/syssam/velograph/schema"
	"github.com/syssam/velograph/schema/edge"
	"github.com/syssam/velograph/schema/field"
	"github.com/syssam/velograph/schema/index"
)

// File is the layout of a YAML declaration file.
//
//	models:
//	  - name: Person
//	    meta: {create_by_reference: true}
//	    fields:
//	      - name: viaf_id
//	        type: str
//	        indexes: [unique]
//	      - name: knows
//	        type: list[Person]
//	        relation: {reverse_name: is known by}
//	  - name: Identification
//	    kind: template
//	    params: [T]
//	    fields:
//	      - name: target
//	        type: T
//	        relation: {reverse_name: is_target_of}
type File struct {
	Models []yaml.Node `yaml:"models"`
}

// ModelSpec is one model of a declaration file.
type ModelSpec struct {
	Name    string      `yaml:"name"`
	Kind    Kind        `yaml:"kind"`
	Params  []string    `yaml:"params"`
	Comment string      `yaml:"comment"`
	Meta    yaml.Node   `yaml:"meta"`
	Fields  []yaml.Node `yaml:"fields"`
}

// FieldSpec is one field of a model in a declaration file.
type FieldSpec struct {
	Name       string        `yaml:"name"`
	Type       string        `yaml:"type"`
	Optional   bool          `yaml:"optional"`
	Many       bool          `yaml:"many"`
	Embedded   bool          `yaml:"embedded"`
	ServerOnly bool          `yaml:"server_only"`
	Comment    string        `yaml:"comment"`
	Indexes    []string      `yaml:"indexes"`
	Relation   *RelationSpec `yaml:"relation"`
}

// RelationSpec is the relation configuration of a field in a declaration file.
type RelationSpec struct {
	ReverseName           string   `yaml:"reverse_name"`
	Subclasses            []string `yaml:"subclasses"`
	EdgeModel             string   `yaml:"edge_model"`
	CreateInline          bool     `yaml:"create_inline"`
	EditInline            bool     `yaml:"edit_inline"`
	DeleteRelatedOnDetach bool     `yaml:"delete_related_on_detach"`
	DefaultType           string   `yaml:"default_type"`
	Validators            []struct {
		Name string `yaml:"name"`
		Arg  any    `yaml:"arg"`
	} `yaml:"validators"`
}

// ParseFile reads the models declared in the YAML file at path.
func ParseFile(path string, opts ...Option) ([]*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading declaration file: %w", err)
	}
	schemas, err := Parse(bytes.NewReader(data), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, s := range schemas {
		s.Pos = path + ":" + s.Pos
	}
	return schemas, nil
}

// Parse reads the models of a YAML declaration document, in order.
func Parse(r io.Reader, opts ...Option) ([]*Schema, error) {
	cfg := newConfig(opts)
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing declaration file: %w", err)
	}
	schemas := make([]*Schema, 0, len(f.Models))
	for i := range f.Models {
		s, err := parseModel(&f.Models[i], cfg)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}
	return schemas, nil
}

func parseModel(node *yaml.Node, cfg *config) (*Schema, error) {
	var spec ModelSpec
	if err := node.Decode(&spec); err != nil {
		return nil, fmt.Errorf("line %d: %w", node.Line, err)
	}
	if spec.Name == "" {
		return nil, velograph.NewConfigurationError(velograph.ReasonInvalid, "", "",
			fmt.Sprintf("line %d: model without a name", node.Line))
	}
	if spec.Kind == 0 {
		spec.Kind = KindEntity
	}
	s := &Schema{
		Name:        spec.Name,
		Kind:        spec.Kind,
		Meta:        velograph.DefaultMeta(),
		Pos:         fmt.Sprint(node.Line),
		Annotations: make(map[string]any),
	}
	if spec.Comment != "" {
		s.addAnnotation(schema.Comment(spec.Comment))
	}
	if spec.Meta.Kind != 0 {
		// Keys missing from the document keep their defaults.
		if err := spec.Meta.Decode(&s.Meta); err != nil {
			return nil, velograph.NewConfigurationError(velograph.ReasonInvalid, s.Name, "", err.Error())
		}
	}
	if s.Kind == KindTemplate {
		s.Params = spec.Params
		if len(s.Params) == 0 {
			s.Params = []string{"T"}
		}
	} else if len(spec.Params) > 0 {
		return nil, velograph.NewConfigurationError(velograph.ReasonInvalid, s.Name, "",
			"only templates declare type variables")
	}
	fields := make([]velograph.Field, 0, len(spec.Fields))
	lines := make([]int, 0, len(spec.Fields))
	for i := range spec.Fields {
		fn := &spec.Fields[i]
		var fs FieldSpec
		if err := fn.Decode(&fs); err != nil {
			return nil, velograph.NewConfigurationError(velograph.ReasonInvalid, s.Name, "",
				fmt.Sprintf("line %d: %v", fn.Line, err))
		}
		b, err := fs.builder()
		if err != nil {
			return nil, velograph.NewConfigurationError(velograph.ReasonInvalid, s.Name, fs.Name,
				fmt.Sprintf("line %d: %v", fn.Line, err))
		}
		fields = append(fields, b)
		lines = append(lines, fn.Line)
	}
	if err := s.loadFields(fields, lines, cfg.logger); err != nil {
		return nil, err
	}
	return s, nil
}

// builder converts a field spec to the equivalent field builder.
func (fs *FieldSpec) builder() (*field.Builder, error) {
	b := field.Expr(fs.Name, fs.Type)
	for _, name := range fs.Indexes {
		kind, ok := index.ParseKind(name)
		if !ok {
			return nil, fmt.Errorf("unknown index marker %q", name)
		}
		b.Annotations(index.Marker{Kind: kind})
	}
	if fs.Optional {
		b.Optional()
	}
	if fs.Many {
		b.Many()
	}
	if fs.ServerOnly {
		b.ServerOnly()
	}
	if fs.Embedded {
		b.Descriptor().Embedded = true
	}
	if fs.Comment != "" {
		b.Comment(fs.Comment)
	}
	if rs := fs.Relation; rs != nil {
		eb := edge.Relation(rs.ReverseName).
			Subclasses(rs.Subclasses...).
			EdgeModel(rs.EdgeModel).
			DefaultType(rs.DefaultType)
		if rs.CreateInline {
			eb.CreateInline()
		}
		if rs.EditInline {
			eb.EditInline()
		}
		if rs.DeleteRelatedOnDetach {
			eb.DeleteRelatedOnDetach()
		}
		for _, v := range rs.Validators {
			eb.Validate(v.Name, v.Arg)
		}
		b.Config(eb)
	}
	return b, nil
}
