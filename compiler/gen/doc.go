// Package gen derives the operational shapes of declared models and
// generates Go code for them.
//
// # Pipeline
//
//	declarations (velograph.Interface, YAML)
//	        ↓
//	   load.Schema (canonical fields)
//	        ↓
//	   registry.Registry
//	        ↓
//	   Specializer (template bindings) + Graph (variants)
//	        ↓
//	   JenniferGenerator (variant structs)
//
// # Specialization
//
// A Specializer binds a template to an ordered tuple of type arguments.
// Bindings are cached on BindingKey and returned by reference on later
// calls; the cache is cleared when the registry is reset:
//
//	s := gen.NewSpecializer(reg, logger)
//	b, err := s.Specialize("Identification", "Person")
//	// b.Name == "Identification[Person]"
//
// # Variants
//
// Every base entity and every binding is projected into twelve variant
// kinds: Create, HeadView, View, EditHeadView, EditView, EditSet, the
// Reference family and the Embedded family. Type.Variant is the gated
// accessor honoring the meta flags of the model; Type.Internal is not.
//
//	g, err := gen.NewGraph(reg)
//	if err := g.Derive(); err != nil {
//	    return err
//	}
//	person, _ := g.Type("Person")
//	create, err := person.Variant(gen.Create)
//
// Bindings discovered while deriving are derived in the same pass.
// Bindings created later through Graph.Bind are derived immediately.
//
// # Code Generation
//
// JenniferGenerator writes one file per type holding a struct per exposed
// variant. Relation fields accepting several shapes are typed any.
//
//	g, _ := gen.NewGraph(reg, gen.WithTarget("./models"), gen.WithPackage("models"))
//	err := gen.Generate(ctx, g)
package gen
