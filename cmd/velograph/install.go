package main

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/syssam/velograph/dialect"
	"github.com/syssam/velograph/dialect/cypher/schema"
	"github.com/syssam/velograph/dialect/memory"
	"github.com/syssam/velograph/dialect/neo4j"
)

type installFlags struct {
	planFlags
	uri        string
	user       string
	password   string
	database   string
	workers    int
	sequential bool
	dryRun     bool
	slow       time.Duration
}

func newInstallCmd(opts *options) *cobra.Command {
	flags := installFlags{
		uri:  cmp.Or(os.Getenv("NEO4J_URI"), "neo4j://localhost:7687"),
		user: cmp.Or(os.Getenv("NEO4J_USER"), "neo4j"),
	}
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the constraints and indexes of the declared models",
		Long: `install applies every planned statement exactly once. Failing
statements are reported and never stop the others; the command succeeds
once all statements were attempted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			reg, err := opts.registry()
			if err != nil {
				return err
			}
			drv, err := flags.driver(opts)
			if err != nil {
				return err
			}
			stats := dialect.NewStatsDriver(drv,
				dialect.WithSlowThreshold(flags.slow),
				dialect.WithSlowStatementLog(opts.logger),
			)
			defer func() { _ = stats.Close(ctx) }()

			iopts := []schema.InstallOption{schema.WithLogger(opts.logger), schema.WithWorkers(flags.workers)}
			if flags.sequential {
				iopts = append(iopts, schema.Sequential())
			}
			report := schema.NewInstaller(stats, iopts...).Install(ctx, schema.Plan(reg, flags.options()...))

			out := cmd.OutOrStdout()
			for _, res := range report.Failed() {
				fmt.Fprintf(out, "failed %s: %v\n", res.Statement.StatementName(), res.Err)
			}
			fmt.Fprintf(out, "%d applied, %d failed\n", report.Applied(), len(report.Failed()))
			opts.logger.Debug("driver stats", "dialect", stats.Dialect(), "stats", stats.ExecStats().Stats())
			return nil
		},
	}
	f := cmd.Flags()
	flags.planFlags.register(cmd)
	f.StringVar(&flags.uri, "uri", flags.uri, "graph store URI (env NEO4J_URI)")
	f.StringVar(&flags.user, "user", flags.user, "graph store user (env NEO4J_USER)")
	f.StringVar(&flags.password, "password", os.Getenv("NEO4J_PASSWORD"), "graph store password (env NEO4J_PASSWORD)")
	f.StringVar(&flags.database, "database", "", "database name, the server default when empty")
	f.IntVar(&flags.workers, "workers", 0, "statements in flight, GOMAXPROCS when 0")
	f.BoolVar(&flags.sequential, "sequential", false, "apply the statements one at a time, in plan order")
	f.BoolVar(&flags.dryRun, "dry-run", false, "apply the statements to an in-memory store")
	f.DurationVar(&flags.slow, "slow-threshold", time.Second, "log statements slower than this")
	return cmd
}

func (f *installFlags) driver(opts *options) (dialect.Driver, error) {
	if f.dryRun {
		return memory.NewDriver(), nil
	}
	return neo4j.Open(f.uri, f.user, f.password,
		neo4j.WithDatabase(f.database),
		neo4j.WithLogger(opts.logger),
	)
}
