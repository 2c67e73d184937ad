package sqlite

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"praxis"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var (
	_ praxis.UnitArchive = (*ArchiveService)(nil)
	_ praxis.RunService  = (*RunHistory)(nil)
)

// ArchiveService implements praxis.UnitArchive using SQLite. Only unit
// metadata and a content hash are stored; the full text lives and dies
// with the run.
type ArchiveService struct {
	db *DB
}

// NewArchiveService creates a new ArchiveService.
func NewArchiveService(db *DB) *ArchiveService {
	return &ArchiveService{db: db}
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content string) string {
	h := xxhash.Sum64String(content)
	b := make([]byte, 8)
	b[0] = byte(h >> 56)
	b[1] = byte(h >> 48)
	b[2] = byte(h >> 40)
	b[3] = byte(h >> 32)
	b[4] = byte(h >> 24)
	b[5] = byte(h >> 16)
	b[6] = byte(h >> 8)
	b[7] = byte(h)
	return hex.EncodeToString(b)
}

// ArchiveUnits stores units, skipping ones already archived under the
// same ID. Returns how many were new and how many were already known.
func (s *ArchiveService) ArchiveUnits(ctx context.Context, units []praxis.RawUnit) (int, int, error) {
	added, known := 0, 0
	now := time.Now().UTC().Format(time.RFC3339)

	for _, u := range units {
		res, err := s.db.ExecContext(ctx, `
			INSERT OR IGNORE INTO units (id, source, title, content_hash, captured_at, engagement, archived_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, u.ID, u.Source, u.Title, hashContent(u.Text),
			u.CapturedAt.UTC().Format(time.RFC3339), u.Engagement, now)
		if err != nil {
			return added, known, err
		}

		n, err := res.RowsAffected()
		if err != nil {
			return added, known, err
		}
		if n > 0 {
			added++
		} else {
			known++
		}
	}
	return added, known, nil
}

// RunHistory implements praxis.RunService using SQLite. The full report
// is stored as JSON next to a few queryable columns.
type RunHistory struct {
	db *DB
}

// NewRunHistory creates a new RunHistory.
func NewRunHistory(db *DB) *RunHistory {
	return &RunHistory{db: db}
}

// RecordRun stores a finished run report.
func (s *RunHistory) RecordRun(ctx context.Context, report *praxis.RunReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal run report: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, units_collected, report)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.New().String(),
		report.StartedAt.UTC().Format(time.RFC3339),
		report.FinishedAt.UTC().Format(time.RFC3339),
		report.UnitsCollected,
		string(data))

	return err
}

// RecentRuns returns the most recent stored reports, newest first.
func (s *RunHistory) RecentRuns(ctx context.Context, limit int) ([]*praxis.RunReport, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT report
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*praxis.RunReport
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var report praxis.RunReport
		if err := json.Unmarshal([]byte(data), &report); err != nil {
			return nil, fmt.Errorf("unmarshal run report: %w", err)
		}
		reports = append(reports, &report)
	}
	return reports, rows.Err()
}
