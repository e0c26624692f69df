package field

import (
	"slices"
	"strings"
)

// A Primitive is the value kind of a scalar field.
type Primitive uint8

// List of primitive value kinds.
const (
	TypeInvalid Primitive = iota
	TypeString
	TypeText
	TypeInt
	TypeFloat
	TypeBool
	TypeDate
	TypeDateTime
	TypeUUID
	TypeURL
	TypeJSON
)

var primitiveNames = [...]string{
	TypeInvalid:  "invalid",
	TypeString:   "string",
	TypeText:     "text",
	TypeInt:      "int",
	TypeFloat:    "float",
	TypeBool:     "bool",
	TypeDate:     "date",
	TypeDateTime: "datetime",
	TypeUUID:     "uuid",
	TypeURL:      "url",
	TypeJSON:     "json",
}

// aliases accepted by ParsePrimitive besides the canonical names.
var primitiveAliases = map[string]Primitive{
	"str":     TypeString,
	"integer": TypeInt,
	"number":  TypeFloat,
	"boolean": TypeBool,
	"time":    TypeDateTime,
}

// String returns the canonical name of the primitive.
func (p Primitive) String() string {
	if int(p) < len(primitiveNames) {
		return primitiveNames[p]
	}
	return primitiveNames[TypeInvalid]
}

// IsString reports whether values of p are strings eligible for full-text
// indexing. Text is the long-form string type and counts as a string.
func (p Primitive) IsString() bool {
	return p == TypeString || p == TypeText
}

// ParsePrimitive returns the primitive named s.
func ParsePrimitive(s string) (Primitive, bool) {
	for i, name := range primitiveNames {
		if i > 0 && name == s {
			return Primitive(i), true
		}
	}
	p, ok := primitiveAliases[s]
	return p, ok
}

// RefKind is the tag of a TypeRef.
type RefKind uint8

// Type reference kinds.
const (
	// RefUnknown is an annotation that could not be decomposed.
	RefUnknown RefKind = iota
	// RefPrimitive is a scalar value.
	RefPrimitive
	// RefEntity references another model by name.
	RefEntity
	// RefTemplate references a generic template with type arguments.
	RefTemplate
	// RefParam is a type variable of the enclosing template.
	RefParam
	// RefUnion is a polymorphic reference to one of several entities.
	RefUnion
)

// TypeRef is the value kind of a field: a primitive, a reference to
// another model, a generic template reference, a type variable or a
// union of entity references. TypeRefs are treated as immutable values.
type TypeRef struct {
	Kind      RefKind
	Primitive Primitive
	// Name of the referenced entity, template or type variable.
	Name string
	// Args of a template reference, positionally matching its parameters.
	Args []*TypeRef
	// Options of a union.
	Options []*TypeRef
	// Raw holds the original text of an unknown reference.
	Raw string
}

// PrimitiveRef returns a reference to a primitive kind.
func PrimitiveRef(p Primitive) *TypeRef {
	return &TypeRef{Kind: RefPrimitive, Primitive: p}
}

// EntityRef returns a reference to the model named name.
func EntityRef(name string) *TypeRef {
	return &TypeRef{Kind: RefEntity, Name: name}
}

// TemplateRef returns a reference to the template named name bound to args.
func TemplateRef(name string, args ...*TypeRef) *TypeRef {
	return &TypeRef{Kind: RefTemplate, Name: name, Args: args}
}

// ParamRef returns a reference to the type variable named name.
func ParamRef(name string) *TypeRef {
	return &TypeRef{Kind: RefParam, Name: name}
}

// UnionRef returns a union of the given references. A union of one option
// collapses to the option itself.
func UnionRef(options ...*TypeRef) *TypeRef {
	if len(options) == 1 {
		return options[0]
	}
	return &TypeRef{Kind: RefUnion, Options: options}
}

// UnknownRef returns a reference for an annotation that could not be parsed.
func UnknownRef(raw string) *TypeRef {
	return &TypeRef{Kind: RefUnknown, Raw: raw}
}

// String returns the canonical expression of the reference.
func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case RefPrimitive:
		return t.Primitive.String()
	case RefEntity, RefParam:
		return t.Name
	case RefTemplate:
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = a.String()
		}
		return t.Name + "[" + strings.Join(args, ", ") + "]"
	case RefUnion:
		opts := make([]string, len(t.Options))
		for i, o := range t.Options {
			opts[i] = o.String()
		}
		return strings.Join(opts, " | ")
	default:
		return t.Raw
	}
}

// Concrete reports whether the reference contains no type variables.
func (t *TypeRef) Concrete() bool {
	return len(t.Params()) == 0
}

// Params returns the type variables referenced anywhere in t, in order
// of first appearance.
func (t *TypeRef) Params() []string {
	var names []string
	t.walk(func(r *TypeRef) {
		if r.Kind == RefParam && !slices.Contains(names, r.Name) {
			names = append(names, r.Name)
		}
	})
	return names
}

// Targets returns the entity names referenced directly by an entity
// reference or a union.
func (t *TypeRef) Targets() []string {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case RefEntity:
		return []string{t.Name}
	case RefUnion:
		var names []string
		for _, o := range t.Options {
			names = append(names, o.Targets()...)
		}
		return names
	}
	return nil
}

// Substitute returns a copy of t where every type variable found in bind
// is replaced by its binding, including inside nested template arguments
// and unions. A variable bound to a union is flattened into an enclosing
// union. t itself is never modified.
func (t *TypeRef) Substitute(bind map[string]*TypeRef) *TypeRef {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case RefParam:
		if b, ok := bind[t.Name]; ok {
			return b.clone()
		}
		return t.clone()
	case RefTemplate:
		args := make([]*TypeRef, len(t.Args))
		for i, a := range t.Args {
			args[i] = a.Substitute(bind)
		}
		return TemplateRef(t.Name, args...)
	case RefUnion:
		var opts []*TypeRef
		for _, o := range t.Options {
			s := o.Substitute(bind)
			if s.Kind == RefUnion {
				opts = append(opts, s.Options...)
			} else {
				opts = append(opts, s)
			}
		}
		return UnionRef(opts...)
	default:
		return t.clone()
	}
}

// BindParams returns a copy of t where entity references named like one of
// params become type variables. It is used for declarations that cannot
// tell a type variable from an entity name at declaration time.
func (t *TypeRef) BindParams(params []string) *TypeRef {
	if len(params) == 0 || t == nil {
		return t
	}
	bind := make(map[string]*TypeRef, len(params))
	for _, p := range params {
		bind[p] = ParamRef(p)
	}
	return t.rewrite(func(r *TypeRef) *TypeRef {
		if r.Kind == RefEntity {
			if b, ok := bind[r.Name]; ok {
				return b
			}
		}
		return nil
	})
}

// Equal reports whether both references denote the same type.
func (t *TypeRef) Equal(other *TypeRef) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind || t.Primitive != other.Primitive || t.Name != other.Name || t.Raw != other.Raw ||
		len(t.Args) != len(other.Args) || len(t.Options) != len(other.Options) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(other.Args[i]) {
			return false
		}
	}
	for i := range t.Options {
		if !t.Options[i].Equal(other.Options[i]) {
			return false
		}
	}
	return true
}

func (t *TypeRef) walk(fn func(*TypeRef)) {
	if t == nil {
		return
	}
	fn(t)
	for _, a := range t.Args {
		a.walk(fn)
	}
	for _, o := range t.Options {
		o.walk(fn)
	}
}

// rewrite copies t bottom-up, replacing the nodes for which fn returns
// a non-nil reference.
func (t *TypeRef) rewrite(fn func(*TypeRef) *TypeRef) *TypeRef {
	if r := fn(t); r != nil {
		return r.clone()
	}
	c := &TypeRef{Kind: t.Kind, Primitive: t.Primitive, Name: t.Name, Raw: t.Raw}
	for _, a := range t.Args {
		c.Args = append(c.Args, a.rewrite(fn))
	}
	for _, o := range t.Options {
		c.Options = append(c.Options, o.rewrite(fn))
	}
	return c
}

func (t *TypeRef) clone() *TypeRef {
	return t.rewrite(func(*TypeRef) *TypeRef { return nil })
}
