package schema

import (
	"slices"

	"github.com/go-openapi/inflect"

	"github.com/syssam/velograph/compiler/load"
	"github.com/syssam/velograph/compiler/registry"
)

// Labels and properties shared by every plan.
const (
	BaseNodeLabel    = "BaseNode"
	UserLabel        = "PGUser"
	IDProperty       = "id"
	UsernameProperty = "username"
	LabelProperty    = "label"
	HeadUUIDProperty = "head_uuid"
	HeadTypeProperty = "head_type"
)

type planner struct {
	stringFields func(*load.Schema) []string
	headNodes    bool
}

// PlanOption configures Plan.
type PlanOption func(*planner)

// WithStringFields sets the function listing the properties of a model's
// full-text index. By default only the label is indexed; pass
// load.StringFields to index every string field not omitted by a marker.
func WithStringFields(fn func(*load.Schema) []string) PlanOption {
	return func(p *planner) {
		if fn != nil {
			p.stringFields = fn
		}
	}
}

// WithHeadNodeIndexes adds property indexes on the head references of
// embedded nodes.
func WithHeadNodeIndexes() PlanOption {
	return func(p *planner) {
		p.headNodes = true
	}
}

func labelOnly(*load.Schema) []string { return nil }

// Plan returns the constraint and index statements for the base entities
// of reg. The result depends only on the registry contents and is ordered
// by registration.
func Plan(reg *registry.Registry, opts ...PlanOption) []Statement {
	p := &planner{stringFields: labelOnly}
	for _, opt := range opts {
		opt(p)
	}
	stmts := []Statement{
		&Constraint{Name: "BaseNodeIdUnique", Label: BaseNodeLabel, Property: IDProperty},
		&Constraint{Name: "PGUserNameIndex", Label: UserLabel, Property: UsernameProperty},
		&Index{Kind: FullTextIndex, Name: "BaseNodeFullTextIndex", Label: BaseNodeLabel, Properties: []string{LabelProperty}},
	}
	if p.headNodes {
		stmts = append(stmts,
			&Index{Name: "BaseNodeHeadUUIDIndex", Label: BaseNodeLabel, Properties: []string{HeadUUIDProperty}},
			&Index{Name: "BaseNodeHeadTypeIndex", Label: BaseNodeLabel, Properties: []string{HeadTypeProperty}},
		)
	}
	for _, s := range reg.AllBase() {
		if s.Meta.Abstract {
			continue
		}
		stmts = append(stmts, p.model(s)...)
	}
	return stmts
}

// model returns the statements of one base entity: its full-text index
// followed by the statements requested by field markers.
func (p *planner) model(s *load.Schema) []Statement {
	props := []string{LabelProperty}
	add := func(name string) {
		if !slices.Contains(props, name) {
			props = append(props, name)
		}
	}
	for _, name := range p.stringFields(s) {
		add(name)
	}
	for _, f := range s.Fields {
		if f.FullText && !f.OmitFromFullText {
			add(f.Name)
		}
	}
	stmts := []Statement{
		&Index{Kind: FullTextIndex, Name: s.Name + "FullTextIndex", Label: s.Name, Properties: props},
	}
	for _, f := range s.Fields {
		name := s.Name + inflect.Camelize(f.Name)
		if f.Unique {
			stmts = append(stmts, &Constraint{Name: name + "Unique", Label: s.Name, Property: f.Name})
		}
		if f.Indexed {
			stmts = append(stmts, &Index{Name: name + "Index", Label: s.Name, Properties: []string{f.Name}})
		}
		if f.TextIndexed {
			stmts = append(stmts, &Index{Kind: TextIndex, Name: name + "TextIndex", Label: s.Name, Properties: []string{f.Name}})
		}
	}
	return stmts
}
