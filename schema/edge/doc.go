// Package edge provides the relation configuration attached to
// relation-typed fields.
//
// A relation is declared on the holder's field and always carries the name
// of its reverse edge, which is normalized to snake case:
//
//	field.Relation("knows", "Person").
//	    Config(edge.Relation("Is Known By"))   // reverse name "is_known_by"
//
// # Inline Create and Edit
//
// By default a relation only accepts references to existing targets. The
// inline flags allow the target to be created or edited as part of the
// holder's payload:
//
//	edge.Relation("is_described_by").CreateInline().EditInline()
//
// # Edge Payloads
//
// Properties can be stored on the edge itself by naming an edge model:
//
//	edge.Relation("is_known_by").EdgeModel("Certainty")
//
// # Cascades
//
// DeleteRelatedOnDetach removes the target when the relation is detached,
// which is the usual choice for inline-created targets:
//
//	edge.Relation("is_part_of").CreateInline().DeleteRelatedOnDetach()
//
// # Polymorphic Targets
//
// When a relation accepts several target types, DefaultType names the type
// used for payloads that do not carry an explicit type tag:
//
//	field.Relation("is_about", "Person", "Organisation").
//	    Config(edge.Relation("is_subject_of").DefaultType("Person"))
package edge
