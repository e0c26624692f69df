// Package dialect abstracts the graph store that velograph installs its
// schema into.
//
// # Supported Stores
//
//   - Neo4j: a Neo4j server, through the official Go driver
//   - Memory: an in-process store honoring IF NOT EXISTS, used for dry
//     runs and tests
//
// # Driver Interface
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, params map[string]any) error
//	    Close(ctx context.Context) error
//	    Dialect() string
//	}
//
// Statements are executed independently; a Driver must be safe for
// concurrent use.
//
// # Usage
//
//	drv, err := neo4j.Open("neo4j://localhost:7687", "neo4j", "secret")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close(ctx)
//
//	stats := dialect.NewStatsDriver(drv, dialect.WithSlowStatementLog())
//	report := schema.NewInstaller(stats).Install(ctx, schema.Plan(reg))
//
// # Sub-packages
//
//   - dialect/neo4j: Neo4j driver
//   - dialect/memory: in-process driver
//   - dialect/cypher/schema: constraint and index planning and installation
package dialect
