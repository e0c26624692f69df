// Package field provides fluent builders for declaring the fields of a
// graph model.
//
// Scalar fields:
//
//	field.String("name")
//	field.Text("description").Annotations(index.OmitFromFullText())
//	field.Int("count").Optional()
//	field.DateTime("born_when")
//
// Relation fields reference other models by name. Targets may be declared
// in any order; they are resolved when the schema is derived:
//
//	field.Relation("knows", "Person").
//	    Many().
//	    Config(edge.Relation("is known by"))
//
// Templates are referenced with their type arguments, and fields of a
// template refer to its type variables with Param:
//
//	field.Reified("subject", "Identification", "Person")
//	field.Param("target", "T").Config(edge.Relation("is_target_of"))
//
// Fields can also be typed by an expression, the form used by YAML
// declaration files:
//
//	field.Expr("owners", "list[Person | Organisation]")
//	field.Expr("code", "Annotated[string, unique, omit_fulltext]")
//
// An expression that cannot be parsed yields a field of unknown type,
// which is treated as a plain, non-indexed field.
package field
