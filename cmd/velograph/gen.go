package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/velograph/compiler/gen"
)

func newGenCmd(opts *options) *cobra.Command {
	var (
		target  string
		pkg     string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate Go structs for the API variants of the declared models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := opts.registry()
			if err != nil {
				return err
			}
			gopts := []gen.Option{gen.WithLogger(opts.logger), gen.WithTarget(target)}
			if pkg != "" {
				gopts = append(gopts, gen.WithPackage(pkg))
			}
			if workers > 0 {
				gopts = append(gopts, gen.WithWorkers(workers))
			}
			g, err := gen.NewGraph(reg, gopts...)
			if err != nil {
				return err
			}
			if err := gen.Generate(cmd.Context(), g); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "generated %d types into %s\n", len(g.Types()), target)
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "output directory")
	cmd.Flags().StringVar(&pkg, "package", "", "package name, the base name of the target by default")
	cmd.Flags().IntVar(&workers, "workers", 0, "files written concurrently")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}
