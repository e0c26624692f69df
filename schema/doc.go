// Package schema provides the building blocks for declaring velograph models.
//
// This package holds the annotation interfaces shared by its subpackages:
//
//   - [field]: Field builders and type references
//   - [edge]: Relation configuration for relation-typed fields
//   - [index]: Per-field index and full-text markers
//
// # Quick Start
//
//	type Person struct{ velograph.Entity }
//
//	func (Person) Fields() []velograph.Field {
//	    return []velograph.Field{
//	        field.String("nickname").Optional().
//	            Annotations(index.OmitFromFullText()),
//	        field.Relation("knows", "Person", "Organisation").Many().
//	            Config(edge.Relation("is known by").DefaultType("Person")),
//	        field.Reified("identified_by", "Identification", "Person"),
//	        field.Embedded("date", "DateRange").Optional(),
//	    }
//	}
//
// # Annotations
//
// Annotations attach metadata to models and fields. Annotations with the
// same name are merged when they implement Merger:
//
//	schema.Comment("A natural person")
//	index.Unique()
//	index.OmitFromFullText()
package schema
