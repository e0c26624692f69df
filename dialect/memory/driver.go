// Package memory implements an in-process dialect.Driver that understands
// the schema statements emitted by the cypher planner. It honors
// IF NOT EXISTS the way a graph server does and supports failure
// injection for tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/syssam/velograph/dialect"
)

// ErrClosed is returned by Exec after Close.
var ErrClosed = errors.New("memory: driver is closed")

// Kind is the kind of a schema object.
type Kind string

// Schema object kinds.
const (
	KindConstraint Kind = "constraint"
	KindIndex      Kind = "index"
	KindFullText   Kind = "fulltext"
	KindText       Kind = "text"
)

// Object is a constraint or index held by the store.
type Object struct {
	Kind       Kind
	Name       string
	Labels     []string
	Properties []string
}

func (o Object) equivalent(other Object) bool {
	return o.Kind == other.Kind &&
		slices.Equal(o.Labels, other.Labels) &&
		slices.Equal(o.Properties, other.Properties)
}

var (
	constraintRe = regexp.MustCompile(`^CREATE CONSTRAINT (\w+)( IF NOT EXISTS)? FOR \(n:(\w+)\) REQUIRE n\.(\w+) IS UNIQUE$`)
	fullTextRe   = regexp.MustCompile(`^CREATE FULLTEXT INDEX (\w+)( IF NOT EXISTS)? FOR \(n:([\w|]+)\) ON EACH \[([^\]]*)\](?: OPTIONS \{.*\})?$`)
	textRe       = regexp.MustCompile(`^CREATE TEXT INDEX (\w+)( IF NOT EXISTS)? FOR \(n:(\w+)\) ON \(([^)]*)\)$`)
	indexRe      = regexp.MustCompile(`^CREATE INDEX (\w+)( IF NOT EXISTS)? FOR \(n:(\w+)\) ON \(([^)]*)\)$`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

// Driver is an in-memory graph store schema.
type Driver struct {
	mu       sync.Mutex
	objects  []Object
	executed []string
	failures []failure
	closed   bool
}

type failure struct {
	match func(string) bool
	err   error
}

var _ dialect.Driver = (*Driver)(nil)

// NewDriver returns an empty store.
func NewDriver() *Driver {
	return &Driver{}
}

// FailOn makes every statement containing substr fail with err.
func (d *Driver) FailOn(substr string, err error) {
	d.FailWhen(func(q string) bool { return strings.Contains(q, substr) }, err)
}

// FailWhen makes every statement matched by fn fail with err.
func (d *Driver) FailWhen(fn func(query string) bool, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures = append(d.failures, failure{match: fn, err: err})
}

// Exec implements the dialect.Driver interface.
func (d *Driver) Exec(ctx context.Context, query string, _ map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q := strings.TrimSpace(spaceRe.ReplaceAllString(query, " "))

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.executed = append(d.executed, q)
	for _, f := range d.failures {
		if f.match(q) {
			return f.err
		}
	}
	obj, ifNotExists, err := parse(q)
	if err != nil {
		return err
	}
	for _, o := range d.objects {
		if o.Name != obj.Name && !o.equivalent(obj) {
			continue
		}
		if ifNotExists {
			return nil
		}
		if o.Name == obj.Name {
			return fmt.Errorf("memory: an object named %s already exists", obj.Name)
		}
		return fmt.Errorf("memory: an equivalent %s already exists: %s", o.Kind, o.Name)
	}
	d.objects = append(d.objects, obj)
	return nil
}

func parse(q string) (Object, bool, error) {
	if m := constraintRe.FindStringSubmatch(q); m != nil {
		return Object{
			Kind:       KindConstraint,
			Name:       m[1],
			Labels:     []string{m[3]},
			Properties: []string{m[4]},
		}, m[2] != "", nil
	}
	if m := fullTextRe.FindStringSubmatch(q); m != nil {
		return Object{
			Kind:       KindFullText,
			Name:       m[1],
			Labels:     strings.Split(m[3], "|"),
			Properties: properties(m[4]),
		}, m[2] != "", nil
	}
	if m := textRe.FindStringSubmatch(q); m != nil {
		return Object{
			Kind:       KindText,
			Name:       m[1],
			Labels:     []string{m[3]},
			Properties: properties(m[4]),
		}, m[2] != "", nil
	}
	if m := indexRe.FindStringSubmatch(q); m != nil {
		return Object{
			Kind:       KindIndex,
			Name:       m[1],
			Labels:     []string{m[3]},
			Properties: properties(m[4]),
		}, m[2] != "", nil
	}
	return Object{}, false, fmt.Errorf("memory: unsupported statement: %s", q)
}

// properties parses "n.a, n.b" into [a b].
func properties(s string) []string {
	var props []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimPrefix(strings.TrimSpace(p), "n.")
		if p != "" {
			props = append(props, p)
		}
	}
	return props
}

// Objects returns the schema objects in creation order.
func (d *Driver) Objects() []Object {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.objects)
}

// Object returns the schema object with the given name.
func (d *Driver) Object(name string) (Object, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, o := range d.objects {
		if o.Name == name {
			return o, true
		}
	}
	return Object{}, false
}

// Executed returns every statement received, in arrival order, including
// the failed ones.
func (d *Driver) Executed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.executed)
}

// Close implements the dialect.Driver interface.
func (d *Driver) Close(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Dialect implements the dialect.Driver interface.
func (*Driver) Dialect() string { return dialect.Memory }
