package gen

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/syssam/velograph"
	"github.com/syssam/velograph/compiler/load"
	"github.com/syssam/velograph/compiler/registry"
	"github.com/syssam/velograph/schema/field"
)

// BindingKey identifies a template bound to an ordered tuple of type
// arguments.
type BindingKey struct {
	Template string
	// Args holds the canonical argument expressions, comma separated.
	Args string
}

// String implements the fmt.Stringer interface.
func (k BindingKey) String() string {
	return k.Template + "[" + k.Args + "]"
}

// Binding is a template specialized with concrete type arguments. It is
// immutable once built.
type Binding struct {
	Key BindingKey
	// Name is the canonical name of the bound type.
	Name string
	// Template is the specialized template.
	Template *load.Schema
	// Args are the type arguments, positionally matching Template.Params.
	Args []*field.TypeRef
	// Fields are the template fields with every type variable substituted.
	Fields []*load.Field
}

// Field returns the bound field with the given name.
func (b *Binding) Field(name string) (*load.Field, bool) {
	for _, f := range b.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Specializer binds templates to concrete type arguments and caches the
// results. A binding is computed at most once per key until the
// registry is reset.
type Specializer struct {
	reg    *registry.Registry
	logger *slog.Logger

	mu    sync.Mutex
	cache map[BindingKey]*Binding
	order []*Binding
	hooks []func(*Binding)
}

// NewSpecializer returns a specializer reading templates from reg. Its
// cache is cleared whenever reg is reset.
func NewSpecializer(reg *registry.Registry, logger *slog.Logger) *Specializer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Specializer{
		reg:    reg,
		logger: logger,
		cache:  make(map[BindingKey]*Binding),
	}
	reg.OnReset(s.clear)
	return s
}

// OnBind registers a function called once for every new binding, after
// the binding was stored.
func (s *Specializer) OnBind(fn func(*Binding)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Specialize binds the named template to the named models.
func (s *Specializer) Specialize(template string, args ...string) (*Binding, error) {
	refs := make([]*field.TypeRef, len(args))
	for i, a := range args {
		refs[i] = field.EntityRef(a)
	}
	return s.SpecializeRef(field.TemplateRef(template, refs...))
}

// SpecializeRef binds a concrete template reference. Repeated calls with
// an equal reference return the same *Binding.
func (s *Specializer) SpecializeRef(ref *field.TypeRef) (*Binding, error) {
	if ref == nil || ref.Kind != field.RefTemplate {
		return nil, velograph.NewConfigurationError(velograph.ReasonInvalid, "", "",
			fmt.Sprintf("%s is not a template reference", ref))
	}
	if params := ref.Params(); len(params) > 0 {
		return nil, velograph.NewConfigurationError(velograph.ReasonUnresolved, ref.Name, "",
			fmt.Sprintf("unbound type variables %s in %s", strings.Join(params, ", "), ref))
	}
	key := BindingKey{Template: ref.Name, Args: joinArgs(ref.Args)}

	s.mu.Lock()
	if b, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return b, nil
	}
	b, err := s.bind(key, ref)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.cache[key] = b
	s.order = append(s.order, b)
	hooks := slices.Clone(s.hooks)
	s.mu.Unlock()

	s.logger.Debug("template specialized", "binding", b.Name)
	for _, fn := range hooks {
		fn(b)
	}
	return b, nil
}

// bind builds the binding for key. Callers hold s.mu.
func (s *Specializer) bind(key BindingKey, ref *field.TypeRef) (*Binding, error) {
	tmpls, err := s.reg.Resolve(ref)
	if err != nil {
		return nil, err
	}
	tmpl := tmpls[0]
	if len(ref.Args) != len(tmpl.Params) {
		return nil, velograph.NewConfigurationError(velograph.ReasonArity, tmpl.Name, "",
			fmt.Sprintf("expected %d type argument(s), got %d", len(tmpl.Params), len(ref.Args)))
	}
	bind := make(map[string]*field.TypeRef, len(tmpl.Params))
	for i, p := range tmpl.Params {
		arg := ref.Args[i]
		switch arg.Kind {
		case field.RefEntity, field.RefUnion, field.RefTemplate:
		default:
			return nil, velograph.NewConfigurationError(velograph.ReasonInvalid, tmpl.Name, "",
				fmt.Sprintf("type argument %s for %s is not a model", arg, p))
		}
		if _, err := s.reg.Resolve(arg); err != nil {
			return nil, err
		}
		bind[p] = arg
	}
	tmpl.Freeze()
	fields := make([]*load.Field, len(tmpl.Fields))
	for i, f := range tmpl.Fields {
		bf := *f
		bf.Type = f.Type.Substitute(bind)
		bf.TypeExpr = bf.Type.String()
		fields[i] = &bf
	}
	return &Binding{
		Key:      key,
		Name:     ref.String(),
		Template: tmpl,
		Args:     ref.Args,
		Fields:   fields,
	}, nil
}

// Binding returns the cached binding for key.
func (s *Specializer) Binding(key BindingKey) (*Binding, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.cache[key]
	return b, ok
}

// Bindings returns the cached bindings in creation order.
func (s *Specializer) Bindings() []*Binding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.order)
}

// Len returns the number of cached bindings.
func (s *Specializer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}

func (s *Specializer) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[BindingKey]*Binding)
	s.order = nil
}

func joinArgs(args []*field.TypeRef) string {
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.String()
	}
	return strings.Join(names, ",")
}
