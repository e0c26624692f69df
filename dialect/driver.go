package dialect

import "context"

// Store names.
const (
	Neo4j  = "neo4j"
	Memory = "memory"
)

// Driver executes write statements against a graph store.
type Driver interface {
	// Exec runs a single statement with its parameters. It returns nil
	// once the store has applied the statement.
	Exec(ctx context.Context, query string, params map[string]any) error
	// Close releases the resources held by the driver.
	Close(ctx context.Context) error
	// Dialect returns the store name.
	Dialect() string
}
