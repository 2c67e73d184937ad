// Package fs persists service document sets as per-service directories
// of markdown and JSON files, with atomic promotion on commit.
package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"praxis"
)

// Ensure Store implements praxis.DocumentStore at compile time.
var _ praxis.DocumentStore = (*Store)(nil)

// Store implements praxis.DocumentStore with atomic update semantics.
// Sets are saved under baseDir/.staging, then each service directory is
// moved into place on Commit. A crash before Commit leaves previously
// persisted sets untouched.
type Store struct {
	baseDir string
	staged  []string // relative category/slug paths saved this run
}

// NewStore creates a Store rooted at baseDir, e.g. "practices".
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) stagingDir() string {
	return filepath.Join(s.baseDir, ".staging")
}

// metadata is the persisted shape of metadata.json.
type metadata struct {
	Service   string              `json:"service"`
	Category  string              `json:"category"`
	UpdatedAt string              `json:"updatedAt"`
	Counts    map[string]int      `json:"counts"`
	Sources   map[string][]string `json:"sources"`
}

// Save stages one service's documents. Records are sorted before
// rendering so repeated runs over the same input produce byte-identical
// files.
func (s *Store) Save(ctx context.Context, set *praxis.ServiceDocumentSet) error {
	if set.Service == "" {
		return praxis.Errorf(praxis.EINVALID, "document set service required")
	}
	if set.Category == "" {
		return praxis.Errorf(praxis.EINVALID, "document set category required")
	}

	rel := filepath.Join(set.Category, ServiceSlug(set.Service))
	dir := filepath.Join(s.stagingDir(), rel)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	counts := make(map[string]int)
	sources := make(map[string][]string)

	for _, typ := range praxis.PracticeTypes() {
		records := append([]praxis.PracticeRecord(nil), set.Records[typ]...)
		if len(records) == 0 {
			continue
		}
		sort.Slice(records, func(i, j int) bool {
			if records[i].Confidence != records[j].Confidence {
				return records[i].Confidence > records[j].Confidence
			}
			return records[i].Content < records[j].Content
		})

		counts[string(typ)] = len(records)
		for _, r := range records {
			sources[string(typ)] = append(sources[string(typ)], r.SourceRefs...)
		}
		sort.Strings(sources[string(typ)])
		sources[string(typ)] = dedupeStrings(sources[string(typ)])

		doc := FormatPracticeDoc(set, typ, records)
		if err := os.WriteFile(filepath.Join(dir, docFiles[typ]), []byte(doc), 0644); err != nil {
			return err
		}

		if typ == praxis.PracticeParameter {
			if err := writeJSON(filepath.Join(dir, "settings.json"), ExtractSettings(records)); err != nil {
				return err
			}
		}
	}

	meta := metadata{
		Service:   set.Service,
		Category:  set.Category,
		UpdatedAt: set.UpdatedAt.UTC().Format(time.RFC3339),
		Counts:    counts,
		Sources:   sources,
	}
	if err := writeJSON(filepath.Join(dir, "metadata.json"), meta); err != nil {
		return err
	}

	s.staged = append(s.staged, rel)
	return nil
}

// Commit promotes every staged service directory, replacing the
// previous contents for those services, then removes the staging area.
func (s *Store) Commit() error {
	for _, rel := range s.staged {
		final := filepath.Join(s.baseDir, rel)
		if err := os.MkdirAll(filepath.Dir(final), 0755); err != nil {
			return err
		}
		if err := os.RemoveAll(final); err != nil {
			return err
		}
		if err := os.Rename(filepath.Join(s.stagingDir(), rel), final); err != nil {
			return err
		}
	}
	s.staged = nil
	return os.RemoveAll(s.stagingDir())
}

// Abort discards the staging area, leaving persisted sets untouched.
func (s *Store) Abort() error {
	s.staged = nil
	return os.RemoveAll(s.stagingDir())
}

// writeJSON writes v as indented JSON. Map keys marshal in sorted
// order, so output is deterministic.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func dedupeStrings(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}
