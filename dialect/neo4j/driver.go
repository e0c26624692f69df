// Package neo4j implements dialect.Driver on top of the Neo4j Go driver.
package neo4j

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/syssam/velograph/dialect"
)

// Driver executes statements in auto-commit write sessions. Schema
// statements cannot share an explicit transaction with other writes, so
// every Exec opens its own session.
type Driver struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

var _ dialect.Driver = (*Driver)(nil)

// Option configures the Driver.
type Option func(*Driver)

// WithDatabase selects the database statements run against. The server
// default database is used otherwise.
func WithDatabase(name string) Option {
	return func(d *Driver) {
		d.database = name
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// Open connects to the server at uri with basic authentication. The
// connection is established lazily; use VerifyConnectivity to check it.
func Open(uri, user, password string, opts ...Option) (*Driver, error) {
	drv, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j: open %s: %w", uri, err)
	}
	return NewDriver(drv, opts...), nil
}

// NewDriver wraps an existing Neo4j driver.
func NewDriver(drv neo4j.DriverWithContext, opts ...Option) *Driver {
	d := &Driver{driver: drv, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Exec implements the dialect.Driver interface.
func (d *Driver) Exec(ctx context.Context, query string, params map[string]any) error {
	session := d.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: d.database,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return err
	}
	summary, err := result.Consume(ctx)
	if err != nil {
		return err
	}
	if c := summary.Counters(); c != nil {
		d.logger.DebugContext(ctx, "statement applied",
			"constraints_added", c.ConstraintsAdded(),
			"indexes_added", c.IndexesAdded(),
		)
	}
	return nil
}

// VerifyConnectivity checks that the server is reachable.
func (d *Driver) VerifyConnectivity(ctx context.Context) error {
	return d.driver.VerifyConnectivity(ctx)
}

// Close implements the dialect.Driver interface.
func (d *Driver) Close(ctx context.Context) error {
	return d.driver.Close(ctx)
}

// Dialect implements the dialect.Driver interface.
func (*Driver) Dialect() string { return dialect.Neo4j }
