package gen

import (
	"fmt"
	"slices"
	"sync"

	"github.com/syssam/velograph"
	"github.com/syssam/velograph/compiler/load"
	"github.com/syssam/velograph/compiler/registry"
	"github.com/syssam/velograph/schema/field"
)

type (
	// Graph holds the derived types of a registry: one Type per base
	// entity and one per template binding.
	Graph struct {
		*Config
		reg  *registry.Registry
		spec *Specializer

		types map[string]*Type
		// Nodes are the derived types, base entities in registration
		// order followed by bindings in creation order.
		Nodes []*Type

		mu      sync.Mutex
		pending []*Binding
	}

	// Type is a base entity or a template binding together with its
	// derived variants.
	Type struct {
		// Name is the model name or the canonical binding name.
		Name string
		// GoName is the Go identifier of the type.
		GoName string
		// Schema is the model definition, or the template of a binding.
		Schema *load.Schema
		// Binding is set for bound templates.
		Binding *Binding
		Meta    velograph.Meta
		Comment string

		variants map[VariantKind]*Variant
	}
)

var reserved = []string{
	FieldType, FieldID, FieldUUID, FieldLabel,
	FieldHeadUUID, FieldHeadType, FieldModifiedWhen, FieldModifiedBy,
}

// NewGraph returns an empty graph over reg. Call Derive to derive the
// registered base entities.
func NewGraph(reg *registry.Registry, opts ...Option) (*Graph, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	g := &Graph{
		Config: cfg,
		reg:    reg,
		types:  make(map[string]*Type),
	}
	g.spec = NewSpecializer(reg, cfg.Logger)
	g.spec.OnBind(g.enqueue)
	reg.OnReset(g.clear)
	return g, nil
}

// Specializer returns the specializer of the graph. Bindings created
// through it directly are derived by the next call to Derive.
func (g *Graph) Specializer() *Specializer { return g.spec }

// Registry returns the registry of the graph.
func (g *Graph) Registry() *registry.Registry { return g.reg }

// Derive derives every base entity not derived yet, and every binding
// created since the last derivation, including the bindings discovered
// while deriving. Models read by the derivation are frozen.
func (g *Graph) Derive() error {
	fresh := false
	for _, s := range g.reg.AllBase() {
		if _, ok := g.types[s.Name]; ok {
			continue
		}
		fresh = true
		s.Freeze()
		t := &Type{
			Name:    s.Name,
			GoName:  goName(s.Name),
			Schema:  s,
			Meta:    s.Meta,
			Comment: s.Comment,
		}
		if err := g.derive(t, s.Fields); err != nil {
			return err
		}
	}
	if fresh && g.HeadReverseRelations {
		if err := g.refreshHeads(); err != nil {
			return err
		}
	}
	return g.drain()
}

// refreshHeads projects the head views of the base entities again, so
// that they carry the reverse relations of holders derived after them.
func (g *Graph) refreshHeads() error {
	for _, t := range g.Nodes {
		if t.IsBinding() {
			continue
		}
		for _, kind := range []VariantKind{HeadView, EditHeadView} {
			v, err := g.project(t, kind, t.Schema.Fields)
			if err != nil {
				return err
			}
			t.variants[kind] = v
		}
	}
	return nil
}

// Bind specializes the named template with the named models and derives
// the resulting type.
func (g *Graph) Bind(template string, args ...string) (*Type, error) {
	b, err := g.spec.Specialize(template, args...)
	if err != nil {
		return nil, err
	}
	if err := g.drain(); err != nil {
		return nil, err
	}
	return g.types[b.Name], nil
}

// Type returns the derived type with the given name.
func (g *Graph) Type(name string) (*Type, bool) {
	t, ok := g.types[name]
	return t, ok
}

// Types returns the derived types, in order.
func (g *Graph) Types() []*Type {
	return slices.Clone(g.Nodes)
}

// Bindings returns the derived template bindings, in creation order.
func (g *Graph) Bindings() []*Type {
	var ts []*Type
	for _, t := range g.Nodes {
		if t.Binding != nil {
			ts = append(ts, t)
		}
	}
	return ts
}

func (g *Graph) enqueue(b *Binding) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = append(g.pending, b)
}

func (g *Graph) dequeue() (*Binding, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.pending) == 0 {
		return nil, false
	}
	b := g.pending[0]
	g.pending = g.pending[1:]
	return b, true
}

// drain derives the pending bindings. Deriving a binding may create new
// ones, which are derived in the same pass.
func (g *Graph) drain() error {
	for {
		b, ok := g.dequeue()
		if !ok {
			return nil
		}
		if _, ok := g.types[b.Name]; ok {
			continue
		}
		t := &Type{
			Name:    b.Name,
			GoName:  goName(b.Name),
			Schema:  b.Template,
			Binding: b,
			Meta:    b.Template.Meta,
			Comment: b.Template.Comment,
		}
		if err := g.derive(t, b.Fields); err != nil {
			return err
		}
	}
}

func (g *Graph) clear() {
	g.mu.Lock()
	g.pending = nil
	g.mu.Unlock()
	g.types = make(map[string]*Type)
	g.Nodes = nil
}

// derive projects the canonical fields of t into every variant kind and
// adds t to the graph.
func (g *Graph) derive(t *Type, fields []*load.Field) error {
	for _, f := range fields {
		if slices.Contains(reserved, f.Name) {
			return velograph.NewConfigurationError(velograph.ReasonInvalid, t.Name, f.Name,
				"field name is reserved for variant metadata")
		}
	}
	t.variants = make(map[VariantKind]*Variant, len(VariantKinds))
	for _, kind := range VariantKinds {
		v, err := g.project(t, kind, fields)
		if err != nil {
			return err
		}
		t.variants[kind] = v
	}
	g.types[t.Name] = t
	g.Nodes = append(g.Nodes, t)
	g.Logger.Debug("type derived", "type", t.Name, "fields", len(fields))
	return nil
}

func (g *Graph) project(t *Type, kind VariantKind, fields []*load.Field) (*Variant, error) {
	v := &Variant{Kind: kind, Type: t}
	v.Fields = append(v.Fields, prefix(kind)...)
	if !kind.Reference() {
		for _, f := range fields {
			if f.ServerOnly && kind.Input() {
				continue
			}
			vf, err := g.retype(t, kind, f)
			if err != nil {
				return nil, err
			}
			v.Fields = append(v.Fields, vf)
		}
	}
	if (kind == HeadView || kind == EditHeadView) && t.Binding == nil && g.HeadReverseRelations {
		v.Fields = g.reverse(t, v.Fields)
	}
	v.Fields = append(v.Fields, suffix(kind)...)
	return v, nil
}

// retype returns the variant field of a canonical field.
func (g *Graph) retype(t *Type, kind VariantKind, f *load.Field) (*Field, error) {
	vf := &Field{
		Name:     f.Name,
		JSONName: camel(f.Name),
		Many:     f.Many,
		Required: f.Required,
		ReadOnly: !kind.Input(),
		Comment:  f.Comment,
	}
	switch {
	case f.Fallback:
		vf.Kind = FieldScalar
		vf.Opaque = true
	case f.Type.Kind == field.RefPrimitive:
		vf.Kind = FieldScalar
		vf.Primitive = f.Type.Primitive
	case f.Embedded:
		targets, err := g.targets(t, f, load.KindEntity)
		if err != nil {
			return nil, err
		}
		vf.Kind = FieldEmbedded
		for _, s := range targets {
			vf.Refs = append(vf.Refs, Ref{Type: s.Name, Variant: embeddedFamily(kind)})
		}
	case f.IsTemplate():
		b, err := g.spec.SpecializeRef(f.Type)
		if err != nil {
			return nil, fieldError(t, f, err)
		}
		vf.Kind = FieldTemplate
		vf.Refs = []Ref{{Type: b.Name, Variant: templateFamily(kind)}}
	case f.IsRelation():
		targets, err := g.targets(t, f, load.KindEntity)
		if err != nil {
			return nil, err
		}
		vf.Kind = FieldRelation
		vf.Relation = f.Relation
		for _, s := range targets {
			vf.Refs = append(vf.Refs, relationRefs(kind, f, s)...)
		}
		if name := f.Relation.EdgeModel; name != "" {
			efs, err := g.edgeFields(t, kind, f, name)
			if err != nil {
				return nil, err
			}
			vf.EdgeFields = efs
		}
	default:
		return nil, velograph.NewConfigurationError(velograph.ReasonUnresolved, t.Name, f.Name,
			fmt.Sprintf("cannot derive a field of type %s", f.Type))
	}
	return vf, nil
}

// relationRefs returns the shapes a relation field holds for one target.
func relationRefs(kind VariantKind, f *load.Field, target *load.Schema) []Ref {
	if !kind.Input() {
		return []Ref{{Type: target.Name, Variant: ReferenceView}}
	}
	refs := []Ref{{Type: target.Name, Variant: ReferenceSet}}
	if f.Relation.CreateInline && allows(target.Meta, OpCreate) {
		refs = append(refs, Ref{Type: target.Name, Variant: Create})
	}
	if (kind == EditSet || kind == EmbeddedSet) && f.Relation.EditInline && allows(target.Meta, OpEdit) {
		refs = append(refs, Ref{Type: target.Name, Variant: EditSet})
	}
	if allows(target.Meta, OpCreateByReference) {
		refs = append(refs, Ref{Type: target.Name, Variant: ReferenceCreate})
	}
	return refs
}

// edgeFields returns the fields of the edge model of a relation,
// projected like the fields of the holder.
func (g *Graph) edgeFields(t *Type, kind VariantKind, f *load.Field, name string) ([]*Field, error) {
	em, err := g.reg.Get(name)
	if err != nil {
		return nil, &velograph.ConfigurationError{
			Reason:  velograph.ReasonUnresolved,
			Model:   t.Name,
			Field:   f.Name,
			Message: fmt.Sprintf("edge model %s was never declared", name),
			Cause:   err,
		}
	}
	if em.Kind != load.KindEdge {
		return nil, velograph.NewConfigurationError(velograph.ReasonInvalid, t.Name, f.Name,
			fmt.Sprintf("%s is a %s, not an edge model", name, em.Kind))
	}
	em.Freeze()
	var efs []*Field
	for _, ef := range em.Fields {
		if ef.ServerOnly && kind.Input() {
			continue
		}
		vf, err := g.retype(t, kind, ef)
		if err != nil {
			return nil, err
		}
		efs = append(efs, vf)
	}
	return efs, nil
}

// targets resolves the models referenced by f, which must all be of the
// given kind.
func (g *Graph) targets(t *Type, f *load.Field, kind load.Kind) ([]*load.Schema, error) {
	schemas, err := g.reg.Resolve(f.Type)
	if err != nil {
		return nil, fieldError(t, f, err)
	}
	for _, s := range schemas {
		if s.Kind != kind {
			return nil, velograph.NewConfigurationError(velograph.ReasonInvalid, t.Name, f.Name,
				fmt.Sprintf("%s is a %s, expected a %s", s.Name, s.Kind, kind))
		}
	}
	return schemas, nil
}

// reverse appends the reverse relations targeting t. Holders sharing a
// reverse name are merged into one field.
func (g *Graph) reverse(t *Type, fields []*Field) []*Field {
	for _, r := range g.reg.ReverseRelations(t.Name) {
		name := r.Field.Relation.ReverseName
		ref := Ref{Type: r.Holder.Name, Variant: ReferenceView}
		if i := slices.IndexFunc(fields, func(f *Field) bool { return f.Name == name }); i >= 0 {
			if fields[i].Kind != FieldReverse {
				g.Logger.Warn("reverse relation shadowed by a field",
					"type", t.Name,
					"field", name,
					"holder", r.Holder.Name,
				)
				continue
			}
			if !slices.Contains(fields[i].Refs, ref) {
				fields[i].Refs = append(fields[i].Refs, ref)
			}
			continue
		}
		fields = append(fields, &Field{
			Name:     name,
			JSONName: camel(name),
			Kind:     FieldReverse,
			Many:     true,
			ReadOnly: true,
			Refs:     []Ref{ref},
			Relation: r.Field.Relation,
			Holder:   r.Holder.Name,
		})
	}
	return fields
}

func fieldError(t *Type, f *load.Field, err error) error {
	return &velograph.ConfigurationError{
		Reason:  reasonOf(err),
		Model:   t.Name,
		Field:   f.Name,
		Message: fmt.Sprintf("cannot resolve %s", f.Type),
		Cause:   err,
	}
}

func reasonOf(err error) velograph.Reason {
	for _, r := range []velograph.Reason{velograph.ReasonArity, velograph.ReasonInvalid} {
		if velograph.HasReason(err, r) {
			return r
		}
	}
	return velograph.ReasonUnresolved
}

// embeddedFamily maps a holder variant to the variant of its embedded targets.
func embeddedFamily(kind VariantKind) VariantKind {
	switch {
	case kind == Create || kind == EmbeddedCreate:
		return EmbeddedCreate
	case kind == EditSet || kind == EmbeddedSet:
		return EmbeddedSet
	default:
		return EmbeddedView
	}
}

// templateFamily maps a holder variant to the variant of a bound template.
func templateFamily(kind VariantKind) VariantKind {
	switch {
	case kind == Create || kind == EmbeddedCreate:
		return Create
	case kind == EditSet || kind == EmbeddedSet:
		return EditSet
	default:
		return View
	}
}

// Allows reports whether the meta flags of t permit op. Abstract types
// permit nothing.
func (t *Type) Allows(op Operation) bool {
	return allows(t.Meta, op)
}

func allows(m velograph.Meta, op Operation) bool {
	if m.Abstract {
		return false
	}
	switch op {
	case OpCreate:
		return m.Create
	case OpEdit:
		return m.Edit
	case OpDelete:
		return m.Delete
	case OpView:
		return m.View
	case OpSearch:
		return m.Search
	case OpCreateByReference:
		return m.CreateByReference
	}
	return false
}

// Variant returns the variant of the given kind, if the meta flags of t
// expose it.
func (t *Type) Variant(kind VariantKind) (*Variant, error) {
	v, ok := t.variants[kind]
	if !ok {
		return nil, velograph.NewNotFoundError(t.Name + "." + kind.String())
	}
	if op, gated := kind.Operation(); gated && !t.Allows(op) {
		return nil, velograph.NewNotAllowedError(t.Name, string(op))
	}
	return v, nil
}

// Internal returns the variant of the given kind regardless of the meta
// flags of t. It is nil for unknown kinds.
func (t *Type) Internal(kind VariantKind) *Variant {
	return t.variants[kind]
}

// Variants returns the variants exposed by the meta flags of t, in
// derivation order.
func (t *Type) Variants() []*Variant {
	var vs []*Variant
	for _, kind := range VariantKinds {
		if v, err := t.Variant(kind); err == nil {
			vs = append(vs, v)
		}
	}
	return vs
}

// Rendered returns the variants published for t. Bindings are only
// reached through their holders, so all of their shapes are published.
func (t *Type) Rendered() []*Variant {
	if !t.IsBinding() {
		return t.Variants()
	}
	vs := make([]*Variant, 0, len(VariantKinds))
	for _, kind := range VariantKinds {
		vs = append(vs, t.Internal(kind))
	}
	return vs
}

// IsBinding reports whether t is a bound template.
func (t *Type) IsBinding() bool {
	return t.Binding != nil
}
