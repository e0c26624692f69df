package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/velograph/compiler/load"
	"github.com/syssam/velograph/dialect/cypher/schema"
)

type planFlags struct {
	stringFields bool
	headNodes    bool
}

func (f *planFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.stringFields, "string-fields", false, "add every string field to the full-text indexes")
	cmd.Flags().BoolVar(&f.headNodes, "head-node-indexes", false, "index the head references of embedded nodes")
}

func (f *planFlags) options() []schema.PlanOption {
	var opts []schema.PlanOption
	if f.stringFields {
		opts = append(opts, schema.WithStringFields(load.StringFields))
	}
	if f.headNodes {
		opts = append(opts, schema.WithHeadNodeIndexes())
	}
	return opts
}

func newPlanCmd(opts *options) *cobra.Command {
	var flags planFlags
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the constraint and index statements of the declared models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := opts.registry()
			if err != nil {
				return err
			}
			for _, stmt := range schema.Plan(reg, flags.options()...) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s;\n", stmt.DDL())
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
