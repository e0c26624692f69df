// Package schema plans and installs the constraints and indexes a graph
// store needs to serve the registered models.
//
// Plan is a pure function of the registry. Every statement it returns
// uses IF NOT EXISTS, so a plan can be installed any number of times:
//
//	stmts := schema.Plan(reg, schema.WithHeadNodeIndexes())
//	report := schema.NewInstaller(drv, schema.WithWorkers(4)).Install(ctx, stmts)
//	for _, res := range report.Failed() {
//	    log.Println(res.Err)
//	}
//
// The installer attempts each statement exactly once and never aborts on
// a failure.
package schema
