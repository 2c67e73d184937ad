package main_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"praxis"
	main "praxis/cmd/praxis"
	"praxis/config"
	"praxis/fs"
	"praxis/mock"
	"praxis/pipeline"
)

func testDeps(t *testing.T) *main.Dependencies {
	t.Helper()

	source := &mock.Source{
		FetchPageFn: func(ctx context.Context, _ praxis.SourceDescriptor, page int) ([]praxis.RawUnit, bool, error) {
			return []praxis.RawUnit{{
				ID:         "post-1",
				Source:     "community",
				Title:      "thread",
				Text:       "Use gpt-4 with temperature=0.2 for extraction",
				CapturedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			}}, false, nil
		},
	}
	classifier := &mock.Classifier{
		ClassifyFn: func(ctx context.Context, batch praxis.Batch) ([]praxis.ClassificationResult, error) {
			var out []praxis.ClassificationResult
			for _, u := range batch.Units {
				out = append(out, praxis.ClassificationResult{
					UnitID: u.ID, Relevant: true, Subjects: []string{"gpt-4"}, Relevance: 0.9,
				})
			}
			return out, nil
		},
	}
	extractor := &mock.Extractor{
		ExtractFn: func(ctx context.Context, u praxis.RawUnit, subjects []string) ([]praxis.CandidatePractice, error) {
			return []praxis.CandidatePractice{{
				Type:         praxis.PracticeParameter,
				Content:      "Set temperature=0.2 for extraction tasks",
				Subjects:     subjects,
				Confidence:   0.8,
				SourceUnitID: u.ID,
			}}, nil
		},
	}
	scorer := &mock.Scorer{
		ScoreFn: func(ctx context.Context, c praxis.CandidatePractice, subject string) (praxis.QualityScore, error) {
			s := praxis.QualityScore{Relevance: 0.9, Specificity: 0.9, Actionability: 0.9}
			s.Compose(praxis.DefaultScoreWeights())
			return s, nil
		},
	}

	cfg := config.Default()
	cfg.Sources = []praxis.SourceDescriptor{
		{Platform: "forum", Name: "community", URL: "https://example.com/forum"},
	}

	return &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: cfg,
		Runner: &pipeline.Runner{
			Sources:          map[string]praxis.Source{"forum": source},
			Limiter:          &mock.Limiter{WaitFn: func(ctx context.Context) error { return nil }},
			Classifier:       classifier,
			Extractor:        extractor,
			Scorer:           scorer,
			Store:            fs.NewStore(t.TempDir()),
			Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
			Limits:           praxis.BatchLimits{}.Normalize(),
			QualityThreshold: 0.6,
			RelevanceFloor:   0.3,
			Concurrency:      1,
		},
	}
}

func TestCmdRun(t *testing.T) {
	t.Parallel()

	t.Run("prints the funnel summary", func(t *testing.T) {
		t.Parallel()

		deps := testDeps(t)
		cmd := &main.RunCmd{}

		err := cmd.Run(deps)

		require.NoError(t, err)
		out := deps.Stdout.(*bytes.Buffer).String()
		assert.Contains(t, out, "community")
		assert.Contains(t, out, "Collected 1")
		assert.Contains(t, out, "gpt-4")
	})

	t.Run("dry run previews batches without calling the model", func(t *testing.T) {
		t.Parallel()

		deps := testDeps(t)
		deps.Runner.Classifier = &mock.Classifier{
			ClassifyFn: func(ctx context.Context, batch praxis.Batch) ([]praxis.ClassificationResult, error) {
				t.Fatal("dry run must not reach the model")
				return nil, nil
			},
		}
		cmd := &main.RunCmd{DryRun: true}

		err := cmd.Run(deps)

		require.NoError(t, err)
		out := deps.Stdout.(*bytes.Buffer).String()
		assert.Contains(t, out, "Dry run")
		assert.Contains(t, out, "1 batches")
	})

	t.Run("source filter narrows the run", func(t *testing.T) {
		t.Parallel()

		deps := testDeps(t)
		cmd := &main.RunCmd{Source: []string{"community"}}

		err := cmd.Run(deps)

		require.NoError(t, err)
		out := deps.Stdout.(*bytes.Buffer).String()
		assert.Contains(t, out, "Collected 1")
	})

	t.Run("unknown source filter is an error", func(t *testing.T) {
		t.Parallel()

		deps := testDeps(t)
		cmd := &main.RunCmd{Source: []string{"nope"}}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no configured source")
	})

	t.Run("no configured sources is not an error", func(t *testing.T) {
		t.Parallel()

		deps := testDeps(t)
		deps.Config.Sources = nil
		cmd := &main.RunCmd{}

		err := cmd.Run(deps)

		require.NoError(t, err)
		out := deps.Stdout.(*bytes.Buffer).String()
		assert.Contains(t, out, "No sources configured")
	})
}

func TestCmdReport(t *testing.T) {
	t.Parallel()

	t.Run("lists recent runs newest first", func(t *testing.T) {
		t.Parallel()

		started := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
		runs := &mock.RunService{
			RecentRunsFn: func(ctx context.Context, limit int) ([]*praxis.RunReport, error) {
				assert.Equal(t, 10, limit)
				return []*praxis.RunReport{{
					StartedAt:      started,
					FinishedAt:     started.Add(90 * time.Second),
					UnitsCollected: 42,
					Services: []praxis.ServiceReport{
						{Service: "gpt-4", RecordsWritten: 7},
					},
				}}, nil
			},
		}

		deps := testDeps(t)
		deps.Runs = runs
		cmd := &main.ReportCmd{Limit: 10}

		err := cmd.Run(deps)

		require.NoError(t, err)
		out := deps.Stdout.(*bytes.Buffer).String()
		assert.Contains(t, out, "2026-08-20 12:00")
		assert.Contains(t, out, "collected 42")
		assert.Contains(t, out, "wrote 7")
	})

	t.Run("empty history prints a hint", func(t *testing.T) {
		t.Parallel()

		runs := &mock.RunService{
			RecentRunsFn: func(ctx context.Context, limit int) ([]*praxis.RunReport, error) {
				return nil, nil
			},
		}

		deps := testDeps(t)
		deps.Runs = runs
		cmd := &main.ReportCmd{Limit: 10}

		err := cmd.Run(deps)

		require.NoError(t, err)
		out := deps.Stdout.(*bytes.Buffer).String()
		assert.Contains(t, out, "No runs recorded")
	})
}
