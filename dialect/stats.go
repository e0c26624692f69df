package dialect

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ExecStats holds statement execution statistics.
type ExecStats struct {
	// TotalExecs is the total number of statements executed.
	TotalExecs atomic.Int64
	// TotalDuration is the total time spent executing statements.
	TotalDuration atomic.Int64 // nanoseconds
	// SlowExecs is the count of statements exceeding the slow threshold.
	SlowExecs atomic.Int64
	// Errors is the count of failed statements.
	Errors atomic.Int64
}

// Stats returns a snapshot of the current statistics.
func (s *ExecStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalExecs:    s.TotalExecs.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowExecs:     s.SlowExecs.Load(),
		Errors:        s.Errors.Load(),
	}
}

// Reset resets all statistics to zero.
func (s *ExecStats) Reset() {
	s.TotalExecs.Store(0)
	s.TotalDuration.Store(0)
	s.SlowExecs.Store(0)
	s.Errors.Store(0)
}

// StatsSnapshot is a point-in-time snapshot of execution statistics.
type StatsSnapshot struct {
	TotalExecs    int64
	TotalDuration time.Duration
	SlowExecs     int64
	Errors        int64
}

// AvgDuration returns the average statement duration.
func (s StatsSnapshot) AvgDuration() time.Duration {
	if s.TotalExecs == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.TotalExecs)
}

// String returns a human-readable summary of the statistics.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"execs=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalExecs, s.TotalDuration, s.AvgDuration(), s.SlowExecs, s.Errors,
	)
}

// SlowStatementHook is a function called when a slow statement is detected.
type SlowStatementHook func(ctx context.Context, query string, duration time.Duration)

// StatsDriver wraps a Driver with execution statistics collection.
type StatsDriver struct {
	Driver
	stats         *ExecStats
	slowThreshold time.Duration
	slowHook      SlowStatementHook
	mu            sync.RWMutex
}

// StatsOption configures the StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the threshold for slow statement detection.
// Default is 1s; index creation is routinely slower than a query.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		s.slowThreshold = d
	}
}

// WithSlowStatementHook sets a callback function for slow statements.
func WithSlowStatementHook(hook SlowStatementHook) StatsOption {
	return func(s *StatsDriver) {
		s.slowHook = hook
	}
}

// WithSlowStatementLog logs slow statements to the given logger, or to
// the default logger when none is given.
func WithSlowStatementLog(logger ...*slog.Logger) StatsOption {
	l := slog.Default()
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return WithSlowStatementHook(func(ctx context.Context, query string, duration time.Duration) {
		l.WarnContext(ctx, "slow statement detected", "duration", duration, "statement", query)
	})
}

// NewStatsDriver wraps a Driver with statistics collection.
//
//	drv, _ := neo4j.Open(uri, user, password)
//	stats := dialect.NewStatsDriver(drv,
//	    dialect.WithSlowThreshold(2*time.Second),
//	    dialect.WithSlowStatementLog(),
//	)
//
//	// Later, check statistics:
//	fmt.Println(stats.ExecStats().Stats())
func NewStatsDriver(drv Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{
		Driver:        drv,
		stats:         &ExecStats{},
		slowThreshold: time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExecStats returns the underlying ExecStats for reading statistics.
func (d *StatsDriver) ExecStats() *ExecStats {
	return d.stats
}

// SlowThreshold returns the current slow statement threshold.
func (d *StatsDriver) SlowThreshold() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.slowThreshold
}

// SetSlowThreshold updates the slow statement threshold.
func (d *StatsDriver) SetSlowThreshold(threshold time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slowThreshold = threshold
}

// Exec executes a statement and records statistics.
func (d *StatsDriver) Exec(ctx context.Context, query string, params map[string]any) error {
	start := time.Now()
	err := d.Driver.Exec(ctx, query, params)
	d.record(ctx, query, start, err)
	return err
}

func (d *StatsDriver) record(ctx context.Context, query string, start time.Time, err error) {
	duration := time.Since(start)
	d.stats.TotalExecs.Add(1)
	d.stats.TotalDuration.Add(int64(duration))
	if err != nil {
		d.stats.Errors.Add(1)
	}

	d.mu.RLock()
	threshold := d.slowThreshold
	hook := d.slowHook
	d.mu.RUnlock()

	if duration > threshold {
		d.stats.SlowExecs.Add(1)
		if hook != nil {
			hook(ctx, query, duration)
		}
	}
}
