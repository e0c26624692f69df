// Package velograph declares the building blocks of a graph schema:
// entity types, edge payload types and generic relation templates.
//
// A model is declared by embedding one of Entity, EdgeModel or Template
// and overriding the methods it needs:
//
//	type Person struct{ velograph.Entity }
//
//	func (Person) Fields() []velograph.Field {
//	    return []velograph.Field{
//	        field.Int("age").Optional(),
//	        field.Relation("knows", "Person").
//	            Config(edge.Relation("is known by")),
//	    }
//	}
//
// Declarations are explicit: nothing is registered until they are handed to
// a registry.Registry with Declare.
package velograph

import (
	"github.com/google/uuid"

	"github.com/syssam/velograph/schema"
	"github.com/syssam/velograph/schema/edge"
	"github.com/syssam/velograph/schema/field"
)

type (
	// Interface is the declaration of a model type.
	Interface interface {
		// Fields returns the canonical fields of the model.
		Fields() []Field
		// Meta returns the behavioral flags of the model.
		Meta() Meta
		// Annotations returns schema-level annotations.
		Annotations() []schema.Annotation
	}

	// Field is the interface implemented by the field builders.
	Field interface {
		Descriptor() *field.Descriptor
	}

	// Schema is the default implementation of Interface.
	Schema struct{}

	// Entity is embedded by base entity declarations: top-level,
	// independently addressable node types.
	Entity struct{ Schema }

	// EdgeModel is embedded by declarations of edge payload types, the
	// properties attached to a relation rather than to a node.
	EdgeModel struct{ Schema }

	// Template is embedded by generic relation/embedding templates. A
	// template is parameterized by the names returned from Params.
	Template struct{ Schema }
)

// Fields of the schema.
func (Schema) Fields() []Field { return nil }

// Meta of the schema.
func (Schema) Meta() Meta { return DefaultMeta() }

// Annotations of the schema.
func (Schema) Annotations() []schema.Annotation { return nil }

func (Entity) entity() {}

func (EdgeModel) edgeModel() {}

// Params returns the type variables of the template. Templates have one
// variable named "T" unless overridden.
func (Template) Params() []string { return []string{"T"} }

// EntitySchema is implemented by types embedding Entity.
type EntitySchema interface {
	Interface
	entity()
}

// EdgeSchema is implemented by types embedding EdgeModel.
type EdgeSchema interface {
	Interface
	edgeModel()
}

// TemplateSchema is implemented by types embedding Template.
type TemplateSchema interface {
	Interface
	Params() []string
}

var (
	_ EntitySchema   = Entity{}
	_ EdgeSchema     = EdgeModel{}
	_ TemplateSchema = Template{}
)

// Meta holds the behavioral flags of a base entity type.
type Meta struct {
	// Abstract models are registered but exposed neither at the API
	// boundary nor in the full-text indexes.
	Abstract bool `yaml:"abstract" json:"abstract,omitempty"`
	// Create allows direct creation.
	Create bool `yaml:"create" json:"create"`
	// Edit allows direct editing.
	Edit bool `yaml:"edit" json:"edit"`
	// Delete allows direct deletion.
	Delete bool `yaml:"delete" json:"delete"`
	// View allows direct viewing.
	View bool `yaml:"view" json:"view"`
	// Search allows direct searching.
	Search bool `yaml:"search" json:"search"`
	// CreateByReference allows creation by providing an identifier and a label.
	CreateByReference bool `yaml:"create_by_reference" json:"createByReference,omitempty"`
	// LabelField names an alternative field displayed as label.
	LabelField string `yaml:"label_field" json:"labelField,omitempty"`
}

// DefaultMeta returns the meta flags of a plain entity: every operation
// allowed, no creation by reference.
func DefaultMeta() Meta {
	return Meta{
		Create: true,
		Edit:   true,
		Delete: true,
		View:   true,
		Search: true,
	}
}

// ReifiedRelation is the built-in relation template. It wraps a plain
// reference to T so that relation-specific fields can be attached to it.
//
//	type Identification struct{ velograph.ReifiedRelation }
//
//	func (Identification) Fields() []velograph.Field {
//	    return append(velograph.ReifiedRelation{}.Fields(),
//	        field.Int("certainty"),
//	    )
//	}
type ReifiedRelation struct{ Template }

// Fields of the ReifiedRelation.
func (ReifiedRelation) Fields() []Field {
	return []Field{
		field.Param("target", "T").
			Config(edge.Relation("is_target_of")),
	}
}

// NewID returns a locally generated, time-ordered identifier.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
