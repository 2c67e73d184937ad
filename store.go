package praxis

import "context"

// DocumentStore persists service document sets with atomic snapshot
// semantics. Save stages a set in a temporary location scoped to the run;
// Commit atomically promotes every staged set, fully replacing the previous
// documents for those services; Abort discards the staging area.
//
// A crash between Save and Commit must leave previously persisted sets
// untouched. Downstream readers may therefore assume a service directory
// always reflects exactly one successful run.
type DocumentStore interface {
	Save(ctx context.Context, set *ServiceDocumentSet) error
	Commit() error
	Abort() error
}

// UnitArchive records collected raw units across runs, so repeated
// collection of the same post is visible in run history.
type UnitArchive interface {
	// ArchiveUnits stores units, skipping ones already archived.
	// Returns how many were new and how many were already known.
	ArchiveUnits(ctx context.Context, units []RawUnit) (added, known int, err error)
}

// RunService persists run outcomes for the report command.
type RunService interface {
	// RecordRun stores a finished run report.
	RecordRun(ctx context.Context, report *RunReport) error

	// RecentRuns returns the most recent stored reports, newest first.
	RecentRuns(ctx context.Context, limit int) ([]*RunReport, error)
}
