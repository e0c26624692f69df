package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/syssam/velograph/compiler/load"
	"github.com/syssam/velograph/compiler/registry"
)

type options struct {
	file      string
	logFormat string
	verbose   bool
	logger    *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "velograph",
		Short: "Graph model compiler",
		Long: `velograph reads model declarations, plans the constraints and
indexes of the graph store, installs them and derives the API variants
of every model.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), opts.logFormat, opts.verbose)
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&opts.file, "file", "f", "", "model declaration file")
	flags.StringVar(&opts.logFormat, "log-format", "text", "log format (text|json)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newPlanCmd(opts),
		newInstallCmd(opts),
		newDeriveCmd(opts),
		newGenCmd(opts),
	)
	return root
}

func newLogger(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	hopts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		hopts.Level = slog.LevelDebug
	}
	switch format {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, hopts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, hopts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// registry loads the declaration file into a new registry.
func (o *options) registry() (*registry.Registry, error) {
	if o.file == "" {
		return nil, errors.New("missing declaration file (--file)")
	}
	schemas, err := load.ParseFile(o.file, load.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	reg := registry.New(registry.WithLogger(o.logger))
	if err := reg.Load(schemas...); err != nil {
		return nil, err
	}
	o.logger.Debug("declarations loaded", "file", o.file, "models", reg.Len())
	return reg, nil
}
