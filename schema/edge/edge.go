package edge

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Validator is one ordered validation constraint applied to the relation
// targets, for example {Name: "max_items", Arg: 1}.
type Validator struct {
	Name string
	Arg  any
}

// String implements the fmt.Stringer interface.
func (v Validator) String() string {
	if v.Arg == nil {
		return v.Name
	}
	return fmt.Sprintf("%s=%v", v.Name, v.Arg)
}

// Config describes a relation: the reverse edge name, the edge payload
// type and how the target is handled when the holder is created, edited or
// detached.
type Config struct {
	// ReverseName is the name of the edge seen from the target.
	ReverseName string
	// Subclasses holds the names of ancestor relations this relation narrows.
	Subclasses Set
	// EdgeModel names the edge type carrying edge payload fields.
	EdgeModel string
	// Validators are applied to the relation in order.
	Validators []Validator
	// CreateInline allows creating the target as part of creating the holder.
	CreateInline bool
	// EditInline allows editing the target as part of editing the holder.
	EditInline bool
	// DeleteRelatedOnDetach deletes the target when the relation is removed.
	DeleteRelatedOnDetach bool
	// DefaultType is used when a polymorphic target carries no type tag.
	DefaultType string
}

// New returns a normalized copy of the given configuration.
func New(c Config) *Config {
	c.ReverseName = NormalizeName(c.ReverseName)
	c.Validators = slices.Clone(c.Validators)
	return &c
}

// Equal reports whether both configurations describe the same relation.
// Subclasses are compared as sets.
func (c *Config) Equal(other *Config) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.ReverseName == other.ReverseName &&
		c.Subclasses.Equal(other.Subclasses) &&
		c.EdgeModel == other.EdgeModel &&
		slices.EqualFunc(c.Validators, other.Validators, func(a, b Validator) bool {
			return a.Name == b.Name && reflect.DeepEqual(a.Arg, b.Arg)
		}) &&
		c.CreateInline == other.CreateInline &&
		c.EditInline == other.EditInline &&
		c.DeleteRelatedOnDetach == other.DeleteRelatedOnDetach &&
		c.DefaultType == other.DefaultType
}

// Key returns a stable key for the configuration, suitable for use as a map
// key. Two configurations differing only in the order of their subclasses
// have the same key. Names are quoted and validator arguments keep their
// Go type, so distinct configurations never share a key.
func (c *Config) Key() string {
	if c == nil {
		return ""
	}
	vs := make([]string, len(c.Validators))
	for i, v := range c.Validators {
		vs[i] = fmt.Sprintf("%q:%#v", v.Name, v.Arg)
	}
	return fmt.Sprintf("%q|%q|%q|[%s]|%t|%t|%t|%q",
		c.ReverseName,
		c.Subclasses.Items(),
		c.EdgeModel,
		strings.Join(vs, " "),
		c.CreateInline,
		c.EditInline,
		c.DeleteRelatedOnDetach,
		c.DefaultType,
	)
}

// NormalizeName lower-cases a relation name and replaces its spaces
// with underscores.
func NormalizeName(name string) string {
	return strings.ReplaceAll(cases.Lower(language.Und).String(name), " ", "_")
}

// Builder for relation configurations.
type Builder struct {
	c Config
}

// Relation returns a new builder for a relation whose reverse edge is
// named reverse.
func Relation(reverse string) *Builder {
	return &Builder{c: Config{ReverseName: reverse}}
}

// Subclasses sets the ancestor relations this relation narrows.
func (b *Builder) Subclasses(names ...string) *Builder {
	b.c.Subclasses = NewSet(append(b.c.Subclasses.Items(), names...)...)
	return b
}

// EdgeModel sets the edge type holding the edge payload.
func (b *Builder) EdgeModel(name string) *Builder {
	b.c.EdgeModel = name
	return b
}

// Validate appends a validation constraint.
func (b *Builder) Validate(name string, arg any) *Builder {
	b.c.Validators = append(b.c.Validators, Validator{Name: name, Arg: arg})
	return b
}

// CreateInline allows the target to be created with the holder.
func (b *Builder) CreateInline() *Builder {
	b.c.CreateInline = true
	return b
}

// EditInline allows the target to be edited with the holder.
func (b *Builder) EditInline() *Builder {
	b.c.EditInline = true
	return b
}

// DeleteRelatedOnDetach deletes the target when it is detached from the holder.
func (b *Builder) DeleteRelatedOnDetach() *Builder {
	b.c.DeleteRelatedOnDetach = true
	return b
}

// DefaultType sets the concrete type used for untagged polymorphic targets.
func (b *Builder) DefaultType(name string) *Builder {
	b.c.DefaultType = name
	return b
}

// Config returns the normalized configuration.
func (b *Builder) Config() *Config {
	return New(b.c)
}
