package sqlite_test

import (
	"context"
	"testing"
	"time"

	"praxis"
	"praxis/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func unit(id string) praxis.RawUnit {
	return praxis.RawUnit{
		ID:         id,
		Source:     "community",
		Title:      "thread",
		Text:       "set temperature=0.2 for extraction",
		CapturedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Engagement: 12,
	}
}

func TestArchiveService_ArchiveUnits(t *testing.T) {
	t.Parallel()

	db := openDB(t)
	svc := sqlite.NewArchiveService(db)

	added, known, err := svc.ArchiveUnits(context.Background(), []praxis.RawUnit{
		unit("p1"), unit("p2"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 0, known)

	// Re-archiving the same units counts them as known.
	added, known, err = svc.ArchiveUnits(context.Background(), []praxis.RawUnit{
		unit("p1"), unit("p2"), unit("p3"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 2, known)
}

func TestArchiveService_EmptyInput(t *testing.T) {
	t.Parallel()

	db := openDB(t)
	svc := sqlite.NewArchiveService(db)

	added, known, err := svc.ArchiveUnits(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Zero(t, known)
}

func TestRunHistory_RecordAndList(t *testing.T) {
	t.Parallel()

	db := openDB(t)
	svc := sqlite.NewRunHistory(db)

	first := &praxis.RunReport{
		StartedAt:      time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		FinishedAt:     time.Date(2026, 8, 1, 10, 5, 0, 0, time.UTC),
		UnitsCollected: 40,
		Sources: []praxis.SourceReport{
			{Source: "community", Units: 40},
		},
	}
	second := &praxis.RunReport{
		StartedAt:      time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC),
		FinishedAt:     time.Date(2026, 8, 2, 10, 7, 0, 0, time.UTC),
		UnitsCollected: 55,
	}

	require.NoError(t, svc.RecordRun(context.Background(), first))
	require.NoError(t, svc.RecordRun(context.Background(), second))

	reports, err := svc.RecentRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	// Newest first.
	assert.Equal(t, 55, reports[0].UnitsCollected)
	assert.Equal(t, 40, reports[1].UnitsCollected)
	require.Len(t, reports[1].Sources, 1)
	assert.Equal(t, "community", reports[1].Sources[0].Source)
}

func TestRunHistory_LimitApplies(t *testing.T) {
	t.Parallel()

	db := openDB(t)
	svc := sqlite.NewRunHistory(db)

	for i := range 5 {
		report := &praxis.RunReport{
			StartedAt:  time.Date(2026, 8, 1+i, 10, 0, 0, 0, time.UTC),
			FinishedAt: time.Date(2026, 8, 1+i, 10, 5, 0, 0, time.UTC),
		}
		require.NoError(t, svc.RecordRun(context.Background(), report))
	}

	reports, err := svc.RecentRuns(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}
