package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/syssam/velograph"
	"github.com/syssam/velograph/compiler/gen"
)

type (
	typeDoc struct {
		Name     string       `yaml:"name" json:"name"`
		GoName   string       `yaml:"go_name" json:"goName"`
		Binding  bool         `yaml:"binding,omitempty" json:"binding,omitempty"`
		Variants []variantDoc `yaml:"variants" json:"variants"`
	}

	variantDoc struct {
		Kind   string     `yaml:"kind" json:"kind"`
		Name   string     `yaml:"name" json:"name"`
		Fields []fieldDoc `yaml:"fields" json:"fields"`
	}

	fieldDoc struct {
		Name      string     `yaml:"name" json:"name"`
		JSONName  string     `yaml:"json_name" json:"jsonName"`
		Kind      string     `yaml:"kind" json:"kind"`
		Type      string     `yaml:"type,omitempty" json:"type,omitempty"`
		Many      bool       `yaml:"many,omitempty" json:"many,omitempty"`
		Required  bool       `yaml:"required,omitempty" json:"required,omitempty"`
		ReadOnly  bool       `yaml:"read_only,omitempty" json:"readOnly,omitempty"`
		Generated bool       `yaml:"generated,omitempty" json:"generated,omitempty"`
		Refs      []string   `yaml:"refs,omitempty" json:"refs,omitempty"`
		Edge      []fieldDoc `yaml:"edge,omitempty" json:"edge,omitempty"`
	}
)

func newDeriveCmd(opts *options) *cobra.Command {
	var (
		name   string
		format string
	)
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Print the API variants of the declared models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := opts.registry()
			if err != nil {
				return err
			}
			g, err := gen.NewGraph(reg, gen.WithLogger(opts.logger))
			if err != nil {
				return err
			}
			if err := g.Derive(); err != nil {
				return err
			}
			types := g.Types()
			if name != "" {
				t, ok := g.Type(name)
				if !ok {
					return velograph.NewNotFoundError("type " + name)
				}
				types = []*gen.Type{t}
			}
			docs := make([]typeDoc, 0, len(types))
			for _, t := range types {
				docs = append(docs, newTypeDoc(t))
			}
			return encode(cmd.OutOrStdout(), format, docs)
		},
	}
	cmd.Flags().StringVar(&name, "type", "", "print a single model or binding")
	cmd.Flags().StringVarP(&format, "format", "o", "yaml", "output format (yaml|json)")
	return cmd
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func newTypeDoc(t *gen.Type) typeDoc {
	doc := typeDoc{Name: t.Name, GoName: t.GoName, Binding: t.IsBinding()}
	for _, v := range t.Rendered() {
		doc.Variants = append(doc.Variants, variantDoc{
			Kind:   v.Kind.String(),
			Name:   v.Name(),
			Fields: newFieldDocs(v.Fields),
		})
	}
	return doc
}

func newFieldDocs(fields []*gen.Field) []fieldDoc {
	docs := make([]fieldDoc, 0, len(fields))
	for _, f := range fields {
		doc := fieldDoc{
			Name:      f.Name,
			JSONName:  f.JSONName,
			Kind:      f.Kind.String(),
			Many:      f.Many,
			Required:  f.Required,
			ReadOnly:  f.ReadOnly,
			Generated: f.Generated,
		}
		switch {
		case f.Opaque:
			doc.Type = "opaque"
		case f.Kind == gen.FieldScalar || f.Kind == gen.FieldMeta:
			doc.Type = f.Primitive.String()
		}
		for _, r := range f.Refs {
			doc.Refs = append(doc.Refs, r.String())
		}
		if len(f.EdgeFields) > 0 {
			doc.Edge = newFieldDocs(f.EdgeFields)
		}
		docs = append(docs, doc)
	}
	return docs
}
