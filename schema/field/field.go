package field

import (
	"errors"
	"fmt"

	"github.com/syssam/velograph/schema"
	"github.com/syssam/velograph/schema/edge"
	"github.com/syssam/velograph/schema/index"
)

// A Descriptor for field configuration.
type Descriptor struct {
	Name        string              // field name.
	Type        *TypeRef            // value kind.
	Many        bool                // collection of values.
	Optional    bool                // not required on input.
	Embedded    bool                // target only exists attached to its holder.
	ServerOnly  bool                // computed by the server, excluded from input shapes.
	Relation    *edge.Config        // relation configuration.
	Comment     string              // field comment.
	Annotations []schema.Annotation // field annotations.
	Err         error               // first builder error.
}

// Builder is the fluent builder shared by all field kinds.
type Builder struct {
	desc *Descriptor
}

func newBuilder(name string, t *TypeRef) *Builder {
	b := &Builder{desc: &Descriptor{Name: name, Type: t}}
	if name == "" {
		b.desc.Err = errors.New("field: missing field name")
	}
	return b
}

// String returns a new string field.
func String(name string) *Builder { return newBuilder(name, PrimitiveRef(TypeString)) }

// Text returns a new long-text field.
func Text(name string) *Builder { return newBuilder(name, PrimitiveRef(TypeText)) }

// Int returns a new integer field.
func Int(name string) *Builder { return newBuilder(name, PrimitiveRef(TypeInt)) }

// Float returns a new float field.
func Float(name string) *Builder { return newBuilder(name, PrimitiveRef(TypeFloat)) }

// Bool returns a new boolean field.
func Bool(name string) *Builder { return newBuilder(name, PrimitiveRef(TypeBool)) }

// Date returns a new date field.
func Date(name string) *Builder { return newBuilder(name, PrimitiveRef(TypeDate)) }

// DateTime returns a new date-time field.
func DateTime(name string) *Builder { return newBuilder(name, PrimitiveRef(TypeDateTime)) }

// UUID returns a new uuid field.
func UUID(name string) *Builder { return newBuilder(name, PrimitiveRef(TypeUUID)) }

// URL returns a new url field.
func URL(name string) *Builder { return newBuilder(name, PrimitiveRef(TypeURL)) }

// JSON returns a new field holding an arbitrary JSON document.
func JSON(name string) *Builder { return newBuilder(name, PrimitiveRef(TypeJSON)) }

// Relation returns a new relation field pointing at one of the given
// entity types. More than one target makes the relation polymorphic.
// Targets may be declared later than the holder.
//
//	field.Relation("owner", "Person", "Organisation").
//		Config(edge.Relation("owns").DefaultType("Person"))
func Relation(name string, targets ...string) *Builder {
	refs := make([]*TypeRef, len(targets))
	for i, t := range targets {
		refs[i] = EntityRef(t)
	}
	var b *Builder
	if len(refs) == 0 {
		b = newBuilder(name, UnknownRef(""))
		b.fail(fmt.Errorf("field: relation %q has no target", name))
		return b
	}
	return newBuilder(name, UnionRef(refs...))
}

// Reified returns a new field typed by a template bound to args.
//
//	field.Reified("subject", "Identification", "Person")
func Reified(name, template string, args ...string) *Builder {
	refs := make([]*TypeRef, len(args))
	for i, a := range args {
		refs[i] = EntityRef(a)
	}
	b := newBuilder(name, TemplateRef(template, refs...))
	if len(args) == 0 {
		b.fail(fmt.Errorf("field: reified field %q has no type arguments", name))
	}
	return b
}

// Embedded returns a new field holding an embedded entity.
func Embedded(name, target string) *Builder {
	b := newBuilder(name, EntityRef(target))
	b.desc.Embedded = true
	return b
}

// Param returns a new field typed by the type variable param of the
// enclosing template.
func Param(name, param string) *Builder {
	return newBuilder(name, ParamRef(param))
}

// Type returns a new field typed by a type reference.
func Type(name string, t *TypeRef) *Builder {
	if t == nil {
		b := newBuilder(name, UnknownRef(""))
		b.fail(fmt.Errorf("field: %q has a nil type", name))
		return b
	}
	return newBuilder(name, t)
}

// Expr returns a new field typed by a type expression, as accepted by
// ParseType. An expression that cannot be parsed yields a field of
// unknown type instead of an error. Markers are turned into annotations.
func Expr(name, expr string) *Builder {
	e, err := ParseType(expr)
	if err != nil {
		return newBuilder(name, UnknownRef(expr))
	}
	b := newBuilder(name, e.Type)
	b.desc.Many = e.Many
	for _, m := range e.Markers {
		if m == MarkerServerOnly {
			b.desc.ServerOnly = true
			continue
		}
		if k, ok := index.ParseKind(m); ok {
			b.desc.Annotations = append(b.desc.Annotations, index.Marker{Kind: k})
		}
	}
	return b
}

// MarkerServerOnly is the type expression marker for server-only fields.
const MarkerServerOnly = "server_only"

// Many marks the field as a collection.
func (b *Builder) Many() *Builder {
	b.desc.Many = true
	return b
}

// Optional indicates that this field is not required on input.
func (b *Builder) Optional() *Builder {
	b.desc.Optional = true
	return b
}

// ServerOnly marks the field as computed by the server. Server-only
// fields are excluded from every input shape.
func (b *Builder) ServerOnly() *Builder {
	b.desc.ServerOnly = true
	return b
}

// Comment sets the comment of the field.
func (b *Builder) Comment(c string) *Builder {
	b.desc.Comment = c
	return b
}

// Annotations adds a list of annotations to the field.
func (b *Builder) Annotations(annotations ...schema.Annotation) *Builder {
	b.desc.Annotations = append(b.desc.Annotations, annotations...)
	return b
}

// Config attaches a relation configuration. Primitive fields cannot
// carry one.
func (b *Builder) Config(c *edge.Builder) *Builder {
	switch {
	case c == nil:
		b.fail(fmt.Errorf("field: nil relation config for %q", b.desc.Name))
	case b.desc.Type.Kind == RefPrimitive:
		b.fail(fmt.Errorf("field: primitive field %q cannot carry a relation config", b.desc.Name))
	case b.desc.Embedded:
		b.fail(fmt.Errorf("field: embedded field %q cannot carry a relation config", b.desc.Name))
	default:
		b.desc.Relation = c.Config()
	}
	return b
}

// Descriptor implements the velograph.Field interface by returning its descriptor.
func (b *Builder) Descriptor() *Descriptor {
	return b.desc
}

func (b *Builder) fail(err error) {
	if b.desc.Err == nil {
		b.desc.Err = err
	}
}

// IsString reports whether the field holds a string value that is part
// of the full-text index.
func (d *Descriptor) IsString() bool {
	return d.Type != nil &&
		d.Type.Kind == RefPrimitive &&
		d.Type.Primitive.IsString() &&
		!index.Has(d.Annotations, index.KindOmitFullText)
}
