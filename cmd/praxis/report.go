package main

import (
	"fmt"
	"time"

	"praxis"
)

// Run executes the report command.
func (c *ReportCmd) Run(deps *Dependencies) error {
	reports, err := deps.Runs.RecentRuns(deps.Ctx, c.Limit)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", praxis.ErrorMessage(err))
		return err
	}

	if len(reports) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs recorded. Use 'praxis run' to start one.")
		return nil
	}

	for _, r := range reports {
		written := 0
		for _, s := range r.Services {
			written += s.RecordsWritten
		}
		fmt.Fprintf(deps.Stdout, "%s  collected %-5d services %-3d wrote %-5d %s\n",
			r.StartedAt.Format("2006-01-02 15:04"),
			r.UnitsCollected,
			len(r.Services),
			written,
			r.FinishedAt.Sub(r.StartedAt).Round(time.Second))
	}

	return nil
}
