package gen

import (
	"fmt"
	"strings"

	"github.com/syssam/velograph/schema/edge"
	"github.com/syssam/velograph/schema/field"
)

// VariantKind is one of the derived shapes of a model.
type VariantKind uint8

// Variant kinds, in derivation order.
const (
	Create VariantKind = iota
	HeadView
	View
	EditHeadView
	EditView
	EditSet
	ReferenceCreate
	ReferenceView
	ReferenceSet
	EmbeddedCreate
	EmbeddedView
	EmbeddedSet
)

// VariantKinds lists every variant kind in derivation order.
var VariantKinds = []VariantKind{
	Create, HeadView, View, EditHeadView, EditView, EditSet,
	ReferenceCreate, ReferenceView, ReferenceSet,
	EmbeddedCreate, EmbeddedView, EmbeddedSet,
}

var variantNames = [...]string{
	Create:          "Create",
	HeadView:        "HeadView",
	View:            "View",
	EditHeadView:    "EditHeadView",
	EditView:        "EditView",
	EditSet:         "EditSet",
	ReferenceCreate: "ReferenceCreate",
	ReferenceView:   "ReferenceView",
	ReferenceSet:    "ReferenceSet",
	EmbeddedCreate:  "EmbeddedCreate",
	EmbeddedView:    "EmbeddedView",
	EmbeddedSet:     "EmbeddedSet",
}

// String returns the name of the variant kind.
func (k VariantKind) String() string {
	if int(k) < len(variantNames) {
		return variantNames[k]
	}
	return fmt.Sprintf("VariantKind(%d)", k)
}

// ParseVariantKind returns the variant kind with the given name.
func ParseVariantKind(s string) (VariantKind, error) {
	for i, name := range variantNames {
		if strings.EqualFold(name, s) {
			return VariantKind(i), nil
		}
	}
	return 0, fmt.Errorf("gen: unknown variant kind %q", s)
}

// Input reports whether the variant is a payload accepted from callers.
func (k VariantKind) Input() bool {
	switch k {
	case Create, EditSet, ReferenceCreate, ReferenceSet, EmbeddedCreate, EmbeddedSet:
		return true
	}
	return false
}

// Reference reports whether the variant is one of the reference shapes.
func (k VariantKind) Reference() bool {
	return k == ReferenceCreate || k == ReferenceView || k == ReferenceSet
}

// Embedded reports whether the variant is one of the embedded shapes.
func (k VariantKind) Embedded() bool {
	return k == EmbeddedCreate || k == EmbeddedView || k == EmbeddedSet
}

// Operation is an API operation gated by the meta flags of a model.
type Operation string

// Operations.
const (
	OpCreate            Operation = "create"
	OpEdit              Operation = "edit"
	OpDelete            Operation = "delete"
	OpView              Operation = "view"
	OpSearch            Operation = "search"
	OpCreateByReference Operation = "create_by_reference"
)

// Operation returns the operation gating the variant, if any.
func (k VariantKind) Operation() (Operation, bool) {
	switch k {
	case Create:
		return OpCreate, true
	case HeadView, View:
		return OpView, true
	case EditHeadView, EditView, EditSet:
		return OpEdit, true
	case ReferenceCreate:
		return OpCreateByReference, true
	}
	return "", false
}

// FieldKind classifies the fields of a variant.
type FieldKind uint8

// Field kinds.
const (
	// FieldScalar holds a primitive value, or an opaque value when the
	// declared type could not be parsed.
	FieldScalar FieldKind = iota
	// FieldMeta is a fixed metadata field added by the variant itself.
	FieldMeta
	// FieldRelation points at other models.
	FieldRelation
	// FieldEmbedded holds an embedded model.
	FieldEmbedded
	// FieldTemplate holds a bound template.
	FieldTemplate
	// FieldReverse is a read-only reverse relation.
	FieldReverse
)

var fieldKindNames = [...]string{
	FieldScalar:   "scalar",
	FieldMeta:     "meta",
	FieldRelation: "relation",
	FieldEmbedded: "embedded",
	FieldTemplate: "template",
	FieldReverse:  "reverse",
}

func (k FieldKind) String() string {
	if int(k) < len(fieldKindNames) {
		return fieldKindNames[k]
	}
	return fmt.Sprintf("FieldKind(%d)", k)
}

// Ref is one accepted or produced shape of a non-scalar field.
type Ref struct {
	// Type is the name of the model or binding.
	Type string
	// Variant is the shape of the referenced type.
	Variant VariantKind
}

// String returns Type.Variant.
func (r Ref) String() string {
	return r.Type + "." + r.Variant.String()
}

// Field is a field of a variant.
type Field struct {
	Name     string
	JSONName string
	Kind     FieldKind
	// Primitive is the value kind of scalar and meta fields.
	Primitive field.Primitive
	// Opaque is set for scalar fields whose declared type was unparseable.
	Opaque   bool
	Many     bool
	Required bool
	ReadOnly bool
	// Generated is set for identifiers assigned locally when absent.
	Generated bool
	// Refs lists the shapes a relation, embedded or template field holds.
	// Relation inputs accept any of them.
	Refs []Ref
	// Relation is the configuration of relation and reverse fields.
	Relation *edge.Config
	// EdgeFields are the fields of the relation's edge model.
	EdgeFields []*Field
	// Holder is the model holding a reverse relation.
	Holder  string
	Comment string
}

// StructField returns the Go name of the field.
func (f *Field) StructField() string {
	return pascal(f.Name)
}

// Variant is one derived shape of a model.
type Variant struct {
	Kind   VariantKind
	Type   *Type
	Fields []*Field
}

// Name returns the Go name of the variant, e.g. PersonCreate.
func (v *Variant) Name() string {
	return v.Type.GoName + v.Kind.String()
}

// Field returns the field with the given name.
func (v *Variant) Field(name string) (*Field, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// FieldNames returns the field names in order.
func (v *Variant) FieldNames() []string {
	names := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		names[i] = f.Name
	}
	return names
}

func metaField(name string, p field.Primitive, required bool) *Field {
	return &Field{
		Name:      name,
		JSONName:  camel(name),
		Kind:      FieldMeta,
		Primitive: p,
		Required:  required,
	}
}

// Fixed metadata field names.
const (
	FieldType         = "type"
	FieldID           = "id"
	FieldUUID         = "uuid"
	FieldLabel        = "label"
	FieldHeadUUID     = "head_uuid"
	FieldHeadType     = "head_type"
	FieldModifiedWhen = "modified_when"
	FieldModifiedBy   = "modified_by"
)

// prefix returns the fixed metadata fields leading a variant.
func prefix(kind VariantKind) []*Field {
	switch kind {
	case Create, ReferenceCreate:
		id := metaField(FieldID, field.TypeString, false)
		id.Generated = true
		return []*Field{
			metaField(FieldType, field.TypeString, false),
			id,
			metaField(FieldLabel, field.TypeString, true),
		}
	case HeadView, View, EditHeadView, EditView, ReferenceView:
		return readOnly(
			metaField(FieldType, field.TypeString, true),
			metaField(FieldUUID, field.TypeUUID, true),
			metaField(FieldLabel, field.TypeString, true),
		)
	case ReferenceSet:
		return []*Field{
			metaField(FieldType, field.TypeString, true),
			metaField(FieldUUID, field.TypeUUID, true),
		}
	case EmbeddedView:
		return readOnly(
			metaField(FieldUUID, field.TypeUUID, true),
			metaField(FieldHeadUUID, field.TypeUUID, false),
			metaField(FieldHeadType, field.TypeString, false),
		)
	case EmbeddedSet:
		return []*Field{
			metaField(FieldUUID, field.TypeUUID, true),
			metaField(FieldHeadUUID, field.TypeUUID, false),
			metaField(FieldHeadType, field.TypeString, false),
		}
	}
	return nil
}

// suffix returns the fixed metadata fields closing a variant.
func suffix(kind VariantKind) []*Field {
	if kind == EditHeadView || kind == EditView {
		return readOnly(
			metaField(FieldModifiedWhen, field.TypeDateTime, true),
			metaField(FieldModifiedBy, field.TypeString, false),
		)
	}
	return nil
}

func readOnly(fs ...*Field) []*Field {
	for _, f := range fs {
		f.ReadOnly = true
	}
	return fs
}
