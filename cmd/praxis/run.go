package main

import (
	"fmt"
	"slices"

	"praxis"
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	descriptors := deps.Config.Sources
	if len(c.Source) > 0 {
		descriptors = slices.DeleteFunc(slices.Clone(descriptors), func(d praxis.SourceDescriptor) bool {
			return !slices.Contains(c.Source, d.Name)
		})
		if len(descriptors) == 0 {
			return fmt.Errorf("no configured source matches %v", c.Source)
		}
	}
	if len(descriptors) == 0 {
		fmt.Fprintln(deps.Stdout, "No sources configured. Add sources to the configuration file first.")
		return nil
	}

	if c.DryRun {
		report, batches := deps.Runner.Preview(deps.Ctx, descriptors)
		printPreview(deps, report, batches)
		return nil
	}

	report, err := deps.Runner.Run(deps.Ctx, descriptors)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", praxis.ErrorMessage(err))
		return err
	}

	printReport(deps, report)
	return nil
}

func printPreview(deps *Dependencies, report *praxis.RunReport, batches []praxis.Batch) {
	fmt.Fprintln(deps.Stdout, "Dry run: batch preview, nothing sent or written.")

	for _, s := range report.Sources {
		status := fmt.Sprintf("%d units", s.Units)
		if s.Failed {
			status = "failed: " + s.Err
		}
		fmt.Fprintf(deps.Stdout, "%-24s %s\n", s.Source, status)
	}

	fmt.Fprintf(deps.Stdout, "\nCollected %d units into %d batches:\n", report.UnitsCollected, len(batches))
	for i := range batches {
		b := &batches[i]
		fmt.Fprintf(deps.Stdout, "  batch %-3d %d units, %d chars (budget %d)\n",
			i+1, len(b.Units), b.Size(), b.CharBudget)
	}
}

func printReport(deps *Dependencies, report *praxis.RunReport) {
	for _, s := range report.Sources {
		status := fmt.Sprintf("%d units", s.Units)
		if s.Failed {
			status = "failed: " + s.Err
		}
		fmt.Fprintf(deps.Stdout, "%-24s %s (%.1fs)\n", s.Source, status, s.Duration.Seconds())
	}

	fmt.Fprintf(deps.Stdout, "\nCollected %d, rejected %d at classification, dropped %d at the provider.\n",
		report.UnitsCollected, report.RejectedAtClassification, report.DroppedAtLLM)

	if len(report.Services) == 0 {
		fmt.Fprintln(deps.Stdout, "No practices survived the quality gate.")
		return
	}

	for _, s := range report.Services {
		fmt.Fprintf(deps.Stdout, "%-24s accepted %d of %d, merged %d, wrote %d\n",
			s.Service, s.Accepted, s.Accepted+s.RejectedAtQuality, s.MergedDuplicates, s.RecordsWritten)
		if s.WriteErr != "" {
			fmt.Fprintf(deps.Stdout, "%-24s write failed: %s\n", "", s.WriteErr)
		}
	}
}
