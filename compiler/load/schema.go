package load

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync/atomic"

	"github.com/syssam/velograph"
	"github.com/syssam/velograph/schema"
	"github.com/syssam/velograph/schema/edge"
	"github.com/syssam/velograph/schema/field"
	"github.com/syssam/velograph/schema/index"
)

// Kind of a loaded model.
type Kind uint8

// Model kinds.
const (
	KindEntity Kind = iota + 1
	KindEdge
	KindTemplate
)

var kindNames = map[Kind]string{
	KindEntity:   "entity",
	KindEdge:     "edge",
	KindTemplate: "template",
}

// String returns the textual form of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// MarshalText implements the encoding.TextMarshaler interface.
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("load: invalid kind %d", k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (k *Kind) UnmarshalText(b []byte) error {
	switch s := string(b); s {
	case "entity", "base", "":
		*k = KindEntity
	case "edge":
		*k = KindEdge
	case "template":
		*k = KindTemplate
	default:
		return fmt.Errorf("load: unknown model kind %q", s)
	}
	return nil
}

// Schema represents a model definition extracted from a declaration.
type Schema struct {
	Name        string         `json:"name"`
	Kind        Kind           `json:"kind"`
	Params      []string       `json:"params,omitempty"`
	Meta        velograph.Meta `json:"meta"`
	Fields      []*Field       `json:"fields,omitempty"`
	Comment     string         `json:"comment,omitempty"`
	Annotations map[string]any `json:"annotations,omitempty"`
	Pos         string         `json:"-"`

	frozen atomic.Bool
}

// Position describes a position in the schema.
type Position struct {
	Index int // Index in the field list.
	Line  int // Line in the declaration file, if any.
}

// Field represents a field descriptor extracted from a declaration.
type Field struct {
	Name             string         `json:"name"`
	Type             *field.TypeRef `json:"-"`
	TypeExpr         string         `json:"type"`
	Many             bool           `json:"many,omitempty"`
	Required         bool           `json:"required,omitempty"`
	Relation         *edge.Config   `json:"relation,omitempty"`
	Embedded         bool           `json:"embedded,omitempty"`
	ServerOnly       bool           `json:"server_only,omitempty"`
	OmitFromFullText bool           `json:"omit_fulltext,omitempty"`
	Unique           bool           `json:"unique,omitempty"`
	Indexed          bool           `json:"indexed,omitempty"`
	TextIndexed      bool           `json:"text_indexed,omitempty"`
	FullText         bool           `json:"fulltext,omitempty"`
	Fallback         bool           `json:"fallback,omitempty"`
	Comment          string         `json:"comment,omitempty"`
	Annotations      map[string]any `json:"annotations,omitempty"`
	Position         *Position      `json:"position,omitempty"`
}

// NewField creates a loaded field from a field descriptor. The names in
// params are type variables of the enclosing template.
func NewField(fd *field.Descriptor, params ...string) (*Field, error) {
	if fd.Err != nil {
		return nil, &velograph.ConfigurationError{
			Reason: velograph.ReasonInvalid,
			Field:  fd.Name,
			Cause:  fd.Err,
		}
	}
	t := fd.Type
	if t == nil {
		t = field.UnknownRef("")
	}
	t = t.BindParams(params)
	sf := &Field{
		Name:             fd.Name,
		Type:             t,
		TypeExpr:         t.String(),
		Many:             fd.Many,
		Required:         !fd.Optional,
		Relation:         fd.Relation,
		Embedded:         fd.Embedded,
		ServerOnly:       fd.ServerOnly,
		OmitFromFullText: index.Has(fd.Annotations, index.KindOmitFullText),
		Unique:           index.Has(fd.Annotations, index.KindUnique),
		Indexed:          index.Has(fd.Annotations, index.KindIndex),
		TextIndexed:      index.Has(fd.Annotations, index.KindText),
		FullText:         index.Has(fd.Annotations, index.KindFullText),
		Fallback:         t.Kind == field.RefUnknown,
		Comment:          fd.Comment,
		Annotations:      make(map[string]any),
	}
	for _, at := range fd.Annotations {
		sf.addAnnotation(at)
	}
	if sf.Fallback {
		// A plain field never carries relation semantics.
		sf.Relation = nil
		return sf, nil
	}
	switch t.Kind {
	case field.RefEntity, field.RefUnion, field.RefParam:
		if !sf.Embedded && sf.Relation == nil {
			return nil, velograph.NewConfigurationError(velograph.ReasonInvalid, "", sf.Name,
				fmt.Sprintf("reference to %s requires a relation configuration", t))
		}
	}
	if sf.Embedded && t.Kind != field.RefEntity {
		return nil, velograph.NewConfigurationError(velograph.ReasonInvalid, "", sf.Name,
			fmt.Sprintf("embedded field must reference a single model, got %s", t))
	}
	return sf, nil
}

// IsString reports whether the field is a string field: a string value
// that is not excluded from full-text indexing.
func (f *Field) IsString() bool {
	return !f.Fallback &&
		f.Type.Kind == field.RefPrimitive &&
		f.Type.Primitive.IsString() &&
		!f.OmitFromFullText
}

// IsRelation reports whether the field is an edge to another model.
func (f *Field) IsRelation() bool {
	return !f.Fallback && !f.Embedded && f.Relation != nil && f.Type.Kind != field.RefTemplate
}

// IsTemplate reports whether the field is typed by a template reference.
func (f *Field) IsTemplate() bool {
	return !f.Fallback && f.Type.Kind == field.RefTemplate
}

// Deferred reports whether the bound shape of the field depends on type
// variables of the enclosing template.
func (f *Field) Deferred() bool {
	return !f.Type.Concrete()
}

// NewSchema extracts a loaded schema from a declaration.
func NewSchema(decl velograph.Interface, opts ...Option) (*Schema, error) {
	cfg := newConfig(opts)
	if decl == nil {
		return nil, velograph.NewConfigurationError(velograph.ReasonInvalid, "", "", "nil declaration")
	}
	s := &Schema{
		Name:        indirect(reflect.TypeOf(decl)).Name(),
		Annotations: make(map[string]any),
	}
	switch d := decl.(type) {
	case velograph.EdgeSchema:
		s.Kind = KindEdge
	case velograph.EntitySchema:
		s.Kind = KindEntity
	case velograph.TemplateSchema:
		s.Kind = KindTemplate
		params, err := safeParams(d)
		if err != nil {
			return nil, velograph.NewConfigurationError(velograph.ReasonInvalid, s.Name, "", err.Error())
		}
		s.Params = params
	default:
		return nil, velograph.NewConfigurationError(velograph.ReasonInvalid, s.Name, "",
			fmt.Sprintf("%T embeds neither Entity, EdgeModel nor Template", decl))
	}
	meta, err := safeMeta(decl)
	if err != nil {
		return nil, velograph.NewConfigurationError(velograph.ReasonInvalid, s.Name, "", err.Error())
	}
	s.Meta = meta
	for _, at := range decl.Annotations() {
		s.addAnnotation(at)
	}
	fields, err := safeFields(decl)
	if err != nil {
		return nil, velograph.NewConfigurationError(velograph.ReasonInvalid, s.Name, "", err.Error())
	}
	if err := s.loadFields(fields, nil, cfg.logger); err != nil {
		return nil, err
	}
	return s, nil
}

// loadFields loads the declared fields in order.
func (s *Schema) loadFields(fields []velograph.Field, lines []int, logger *slog.Logger) error {
	if s.Kind == KindTemplate && len(s.Params) == 0 {
		return velograph.NewConfigurationError(velograph.ReasonInvalid, s.Name, "", "template declares no type variables")
	}
	for i, f := range fields {
		fd := f.Descriptor()
		sf, err := NewField(fd, s.Params...)
		if err != nil {
			return withModel(err, s.Name)
		}
		sf.Position = &Position{Index: i}
		if i < len(lines) {
			sf.Position.Line = lines[i]
		}
		if sf.Fallback {
			logger.Debug("unparseable field type, treating as plain field",
				"model", s.Name,
				"field", sf.Name,
				"type", sf.TypeExpr,
			)
		}
		if err := s.checkParams(sf); err != nil {
			return err
		}
		if err := s.addField(sf); err != nil {
			return err
		}
	}
	return nil
}

// checkParams verifies that a field only uses type variables of the
// enclosing template.
func (s *Schema) checkParams(f *Field) error {
	for _, p := range f.Type.Params() {
		if !slices.Contains(s.Params, p) {
			return velograph.NewConfigurationError(velograph.ReasonUnresolved, s.Name, f.Name,
				fmt.Sprintf("type variable %q is not a parameter of %s", p, s.Name))
		}
	}
	return nil
}

// Field returns the field with the given name.
func (s *Schema) Field(name string) (*Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// AddField appends a field to the schema. It fails once the schema was
// frozen by a derivation step.
func (s *Schema) AddField(f *Field) error {
	if s.Frozen() {
		return velograph.NewConfigurationError(velograph.ReasonFrozen, s.Name, f.Name,
			"model was already read by a derivation step")
	}
	if f.Position == nil {
		f.Position = &Position{Index: len(s.Fields)}
	}
	if err := s.checkParams(f); err != nil {
		return err
	}
	return s.addField(f)
}

func (s *Schema) addField(f *Field) error {
	if _, ok := s.Field(f.Name); ok {
		return velograph.NewConfigurationError(velograph.ReasonDuplicate, s.Name, f.Name, "field declared twice")
	}
	s.Fields = append(s.Fields, f)
	return nil
}

// Freeze marks the schema as read by a derivation step.
func (s *Schema) Freeze() { s.frozen.Store(true) }

// Frozen reports whether the schema was frozen.
func (s *Schema) Frozen() bool { return s.frozen.Load() }

// StringFields returns the names of the string fields of s, in
// declaration order.
func StringFields(s *Schema) []string {
	var names []string
	for _, f := range s.Fields {
		if f.IsString() {
			names = append(names, f.Name)
		}
	}
	return names
}

func (s *Schema) addAnnotation(an schema.Annotation) {
	if c, ok := an.(*schema.CommentAnnotation); ok && c != nil {
		s.Comment = c.Text
	}
	addAnnotation(s.Annotations, an)
}

func (f *Field) addAnnotation(an schema.Annotation) {
	addAnnotation(f.Annotations, an)
}

func addAnnotation(annotations map[string]any, an schema.Annotation) {
	curr, ok := annotations[an.Name()]
	if !ok {
		annotations[an.Name()] = an
		return
	}
	if m, ok := curr.(schema.Merger); ok {
		annotations[an.Name()] = m.Merge(an)
	}
}

func withModel(err error, model string) error {
	if ce, ok := err.(*velograph.ConfigurationError); ok && ce.Model == "" {
		ce.Model = model
		return ce
	}
	return fmt.Errorf("schema %q: %w", model, err)
}

// safeFields wraps the schema.Fields method with recover to ensure no panics in loading.
func safeFields(fd interface{ Fields() []velograph.Field }) (fields []velograph.Field, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%T.Fields panics: %v", fd, v)
			fields = nil
		}
	}()
	return fd.Fields(), nil
}

// safeMeta wraps the schema.Meta method with recover to ensure no panics in loading.
func safeMeta(schema interface{ Meta() velograph.Meta }) (meta velograph.Meta, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%T.Meta panics: %v", schema, v)
		}
	}()
	return schema.Meta(), nil
}

// safeParams wraps the template Params method with recover to ensure no panics in loading.
func safeParams(schema interface{ Params() []string }) (params []string, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%T.Params panics: %v", schema, v)
			params = nil
		}
	}()
	return slices.Clone(schema.Params()), nil
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
