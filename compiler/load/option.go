package load

import "log/slog"

// Option configures loading.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to report extraction fallbacks.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts []Option) *config {
	c := &config{logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
