package schema

import (
	"fmt"
	"strings"
)

// Statement is one idempotent schema statement of a plan.
type Statement interface {
	// StatementName returns the name of the constraint or index.
	StatementName() string
	// DDL returns the statement text.
	DDL() string
	// Describe returns a human-readable line for logs.
	Describe() string
}

// Constraint is a uniqueness constraint on one node property.
type Constraint struct {
	Name     string
	Label    string
	Property string
}

// StatementName implements the Statement interface.
func (c *Constraint) StatementName() string { return c.Name }

// DDL implements the Statement interface.
func (c *Constraint) DDL() string {
	return fmt.Sprintf("CREATE CONSTRAINT %s IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
		c.Name, c.Label, c.Property)
}

// Describe implements the Statement interface.
func (c *Constraint) Describe() string {
	return fmt.Sprintf("Creating Constraint: %s.%s must be unique", c.Label, c.Property)
}

// IndexKind is the kind of an index.
type IndexKind uint8

// Index kinds.
const (
	RangeIndex IndexKind = iota
	TextIndex
	FullTextIndex
)

// String returns the index kind as used in logs.
func (k IndexKind) String() string {
	switch k {
	case TextIndex:
		return "Text Index"
	case FullTextIndex:
		return "Full Text Index"
	}
	return "Index"
}

// Analyzer settings of the full-text indexes.
const (
	Analyzer             = "standard-no-stop-words"
	EventuallyConsistent = true
)

// Index is a property, text or full-text index over node properties.
type Index struct {
	Kind       IndexKind
	Name       string
	Label      string
	Properties []string
}

// StatementName implements the Statement interface.
func (i *Index) StatementName() string { return i.Name }

// DDL implements the Statement interface.
func (i *Index) DDL() string {
	switch i.Kind {
	case FullTextIndex:
		return fmt.Sprintf("CREATE FULLTEXT INDEX %s IF NOT EXISTS FOR (n:%s) ON EACH [%s] "+
			"OPTIONS {indexConfig: {`fulltext.analyzer`: '%s', `fulltext.eventually_consistent`: %t}}",
			i.Name, i.Label, i.props(), Analyzer, EventuallyConsistent)
	case TextIndex:
		return fmt.Sprintf("CREATE TEXT INDEX %s IF NOT EXISTS FOR (n:%s) ON (%s)", i.Name, i.Label, i.props())
	}
	return fmt.Sprintf("CREATE INDEX %s IF NOT EXISTS FOR (n:%s) ON (%s)", i.Name, i.Label, i.props())
}

// Describe implements the Statement interface.
func (i *Index) Describe() string {
	return fmt.Sprintf("Creating %s for %s on fields %s", i.Kind, i.Label, strings.Join(i.Properties, ", "))
}

func (i *Index) props() string {
	ps := make([]string, len(i.Properties))
	for j, p := range i.Properties {
		ps[j] = "n." + p
	}
	return strings.Join(ps, ", ")
}
