package schema

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/velograph"
	"github.com/syssam/velograph/dialect"
)

// Installer applies schema statements to a graph store.
type Installer struct {
	drv     dialect.Driver
	workers int
	logger  *slog.Logger
}

// InstallOption configures the Installer.
type InstallOption func(*Installer)

// WithWorkers bounds the number of statements in flight.
func WithWorkers(n int) InstallOption {
	return func(i *Installer) {
		if n > 0 {
			i.workers = n
		}
	}
}

// Sequential applies the statements one at a time, in plan order.
func Sequential() InstallOption {
	return WithWorkers(1)
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) InstallOption {
	return func(i *Installer) {
		if l != nil {
			i.logger = l
		}
	}
}

// NewInstaller returns an installer executing statements on drv.
func NewInstaller(drv dialect.Driver, opts ...InstallOption) *Installer {
	i := &Installer{
		drv:     drv,
		workers: runtime.GOMAXPROCS(0),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Result is the outcome of one statement.
type Result struct {
	Statement Statement
	// Err is a *velograph.StoreApplyError, or nil when the statement was applied.
	Err      error
	Duration time.Duration
}

// Report holds the results of an installation, in plan order.
type Report struct {
	Results []Result
}

// Failed returns the results of the statements that were not applied.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Applied returns the number of statements applied.
func (r *Report) Applied() int {
	return len(r.Results) - len(r.Failed())
}

// Err returns the failures as one error, or nil.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, res.Err)
	}
	return velograph.NewAggregateError(errs...)
}

// Install attempts every statement exactly once. A failing statement is
// logged and recorded in the report; it never stops the others, and
// Install itself never fails.
func (i *Installer) Install(ctx context.Context, stmts []Statement) *Report {
	report := &Report{Results: make([]Result, len(stmts))}
	var g errgroup.Group
	g.SetLimit(i.workers)
	for idx, stmt := range stmts {
		g.Go(func() error {
			report.Results[idx] = i.apply(ctx, stmt)
			return nil
		})
	}
	_ = g.Wait()
	i.logger.InfoContext(ctx, "schema installed",
		"dialect", i.drv.Dialect(),
		"statements", len(stmts),
		"failed", len(report.Failed()),
	)
	return report
}

func (i *Installer) apply(ctx context.Context, stmt Statement) Result {
	i.logger.InfoContext(ctx, stmt.Describe(), "statement", stmt.StatementName())
	start := time.Now()
	res := Result{Statement: stmt}
	if err := i.safeExec(ctx, stmt.DDL()); err != nil {
		res.Err = velograph.NewStoreApplyError(stmt.StatementName(), err)
		i.logger.ErrorContext(ctx, "statement failed",
			"statement", stmt.StatementName(),
			"error", err,
		)
	}
	res.Duration = time.Since(start)
	return res
}

// safeExec turns a driver panic into an error of that statement.
func (i *Installer) safeExec(ctx context.Context, query string) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("driver panics: %v", v)
		}
	}()
	return i.drv.Exec(ctx, query, nil)
}
