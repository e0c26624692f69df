// Package registry holds the table of declared models, partitioned into
// base entities, edge types and templates.
//
// A Registry is populated during a declaration phase and read by the
// derivation steps afterwards. Reset clears it for test isolation.
//
//	reg := registry.New()
//	if err := reg.Declare(Person{}, Place{}, Identification{}); err != nil {
//		return err
//	}
//	person, err := reg.Get("Person")
package registry

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/syssam/velograph"
	"github.com/syssam/velograph/compiler/load"
	"github.com/syssam/velograph/schema/field"
)

// Registry maps model names to their definitions.
type Registry struct {
	mu         sync.RWMutex
	models     map[string]*load.Schema
	base       []string
	edges      []string
	templates  []string
	generation uint64
	listeners  []func()
	logger     *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger of the registry and of the declarations it loads.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		models: make(map[string]*load.Schema),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterBase registers a base entity.
func (r *Registry) RegisterBase(s *load.Schema) error {
	return r.register(s, load.KindEntity)
}

// RegisterEdge registers an edge payload type.
func (r *Registry) RegisterEdge(s *load.Schema) error {
	return r.register(s, load.KindEdge)
}

// RegisterTemplate registers a generic template.
func (r *Registry) RegisterTemplate(s *load.Schema) error {
	return r.register(s, load.KindTemplate)
}

// Register registers s in the partition of its kind.
func (r *Registry) Register(s *load.Schema) error {
	if s == nil {
		return velograph.NewConfigurationError(velograph.ReasonInvalid, "", "", "nil model")
	}
	return r.register(s, s.Kind)
}

// Declare extracts and registers the given declarations, in order.
// It stops at the first failing declaration.
func (r *Registry) Declare(decls ...velograph.Interface) error {
	for _, d := range decls {
		s, err := load.NewSchema(d, load.WithLogger(r.logger))
		if err != nil {
			return err
		}
		if err := r.Register(s); err != nil {
			return err
		}
	}
	return nil
}

// Load registers already extracted models, in order. It stops at the
// first failing model.
func (r *Registry) Load(schemas ...*load.Schema) error {
	for _, s := range schemas {
		if err := r.Register(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) register(s *load.Schema, kind load.Kind) error {
	if s == nil {
		return velograph.NewConfigurationError(velograph.ReasonInvalid, "", "", "nil model")
	}
	if s.Name == "" {
		return velograph.NewConfigurationError(velograph.ReasonInvalid, "", "", "model without a name")
	}
	if kind != load.KindEntity && kind != load.KindEdge && kind != load.KindTemplate {
		return velograph.NewConfigurationError(velograph.ReasonInvalid, s.Name, "", "model has no kind")
	}
	if s.Kind != kind {
		return velograph.NewConfigurationError(velograph.ReasonInvalid, s.Name, "",
			fmt.Sprintf("cannot register a %s as a %s", s.Kind, kind))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.models[s.Name]; ok {
		switch {
		case prev.Kind != s.Kind:
			return velograph.NewConfigurationError(velograph.ReasonDuplicate, s.Name, "",
				fmt.Sprintf("already registered as %s, redeclared as %s", prev.Kind, s.Kind))
		case prev == s:
			return nil
		case prev.Frozen():
			return velograph.NewConfigurationError(velograph.ReasonFrozen, s.Name, "",
				"cannot replace a model already read by a derivation step")
		}
		r.models[s.Name] = s
		r.logger.Debug("model redeclared", "model", s.Name, "kind", s.Kind.String())
		return nil
	}
	r.models[s.Name] = s
	switch kind {
	case load.KindEntity:
		r.base = append(r.base, s.Name)
	case load.KindEdge:
		r.edges = append(r.edges, s.Name)
	case load.KindTemplate:
		r.templates = append(r.templates, s.Name)
	}
	return nil
}

// Get returns the model named name, or a NotFoundError.
func (r *Registry) Get(name string) (*load.Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.models[name]
	if !ok {
		return nil, velograph.NewNotFoundError(name)
	}
	return s, nil
}

// Resolve returns the models a type reference points at: the targets of
// an entity reference or a union, or the template of a template
// reference. Primitives resolve to nothing. Unknown names and unbound
// type variables are unresolved forward references.
func (r *Registry) Resolve(ref *field.TypeRef) ([]*load.Schema, error) {
	if ref == nil {
		return nil, nil
	}
	switch ref.Kind {
	case field.RefPrimitive, field.RefUnknown:
		return nil, nil
	case field.RefParam:
		return nil, velograph.NewConfigurationError(velograph.ReasonUnresolved, "", "",
			fmt.Sprintf("unbound type variable %q", ref.Name))
	case field.RefTemplate:
		s, err := r.lookup(ref.Name)
		if err != nil {
			return nil, err
		}
		if s.Kind != load.KindTemplate {
			return nil, velograph.NewConfigurationError(velograph.ReasonInvalid, ref.Name, "",
				fmt.Sprintf("%s is a %s, not a template", ref.Name, s.Kind))
		}
		return []*load.Schema{s}, nil
	}
	targets := ref.Targets()
	schemas := make([]*load.Schema, 0, len(targets))
	for _, name := range targets {
		s, err := r.lookup(name)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}
	return schemas, nil
}

func (r *Registry) lookup(name string) (*load.Schema, error) {
	s, err := r.Get(name)
	if err != nil {
		return nil, &velograph.ConfigurationError{
			Reason:  velograph.ReasonUnresolved,
			Model:   name,
			Message: "referenced model was never declared",
			Cause:   err,
		}
	}
	return s, nil
}

// AllBase returns the base entities in registration order.
func (r *Registry) AllBase() []*load.Schema {
	return r.all(func(r *Registry) []string { return r.base })
}

// AllEdges returns the edge types in registration order.
func (r *Registry) AllEdges() []*load.Schema {
	return r.all(func(r *Registry) []string { return r.edges })
}

// AllTemplates returns the templates in registration order.
func (r *Registry) AllTemplates() []*load.Schema {
	return r.all(func(r *Registry) []string { return r.templates })
}

func (r *Registry) all(partition func(*Registry) []string) []*load.Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := partition(r)
	schemas := make([]*load.Schema, len(names))
	for i, name := range names {
		schemas[i] = r.models[name]
	}
	return schemas
}

// Len returns the number of registered models.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.models)
}

// Reverse is a relation field of another base entity pointing at a model.
type Reverse struct {
	Holder *load.Schema
	Field  *load.Field
}

// ReverseRelations returns the relation fields of base entities that
// target the named model, in registration and declaration order.
func (r *Registry) ReverseRelations(target string) []Reverse {
	var rs []Reverse
	for _, s := range r.AllBase() {
		for _, f := range s.Fields {
			if f.IsRelation() && slices.Contains(f.Type.Targets(), target) {
				rs = append(rs, Reverse{Holder: s, Field: f})
			}
		}
	}
	return rs
}

// OnReset registers a function called synchronously after every Reset.
// Caches derived from the registry use it to invalidate themselves.
func (r *Registry) OnReset(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Generation returns a counter incremented by every Reset.
func (r *Registry) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}

// Reset clears every partition and invalidates the caches registered
// with OnReset. Callers must ensure no derivation is in flight.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.models = make(map[string]*load.Schema)
	r.base, r.edges, r.templates = nil, nil, nil
	r.generation++
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
	r.logger.Debug("registry reset", "generation", r.Generation())
}
