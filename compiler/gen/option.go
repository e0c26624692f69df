package gen

import (
	"errors"
	"go/token"
	"log/slog"
	"runtime"
)

// Config holds the configuration of derivation and code generation.
type Config struct {
	// Logger receives derivation and generation records.
	Logger *slog.Logger
	// Target is the output directory of the generated code.
	Target string
	// Package is the name of the generated Go package.
	// Defaults to the base name of Target.
	Package string
	// Header is the comment written at the top of each generated file.
	Header string
	// Workers bounds the number of files rendered in parallel.
	Workers int
	// HeadReverseRelations adds reverse relations to HeadView variants.
	HeadReverseRelations bool
}

// Option configures derivation and code generation.
type Option func(*Config) error

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// WithTarget sets the output directory.
// The directory where generated code will be written.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithPackage sets the generated package name.
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if !token.IsIdentifier(pkg) {
			return NewConfigError("Package", pkg, "package must be a valid Go identifier")
		}
		c.Package = pkg
		return nil
	}
}

// WithHeader sets the file header comment.
// The header is added at the top of each generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithWorkers sets the number of parallel workers.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return NewConfigError("Workers", n, "workers must be positive")
		}
		c.Workers = n
		return nil
	}
}

// WithoutReverseRelations disables reverse relation fields on HeadView variants.
func WithoutReverseRelations() Option {
	return func(c *Config) error {
		c.HeadReverseRelations = false
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with defaults and the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Logger:               slog.Default(),
		Header:               "Code generated by velograph. DO NOT EDIT.",
		Workers:              runtime.GOMAXPROCS(0),
		HeadReverseRelations: true,
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}
