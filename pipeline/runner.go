// Package pipeline orchestrates the full run: collection, batching, the
// three LLM stages, deduplication, and atomic persistence.
package pipeline

import (
	"context"
	"encoding/hex"
	"log/slog"
	"sort"
	"sync"
	"time"

	"praxis"
	"praxis/collect"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"
)

// Runner wires the pipeline stages together. All dependencies are
// injected; the runner owns only the orchestration and the funnel
// arithmetic.
type Runner struct {
	Sources    map[string]praxis.Source // keyed by descriptor platform
	Limiter    praxis.Limiter
	Classifier praxis.Classifier
	Extractor  praxis.Extractor
	Scorer     praxis.Scorer
	Store      praxis.DocumentStore
	Archive    praxis.UnitArchive // optional
	Runs       praxis.RunService  // optional
	Logger     *slog.Logger

	Limits           praxis.BatchLimits
	QualityThreshold float64
	RelevanceFloor   float64
	MergeThreshold   float64
	MaxUnits         int
	Concurrency      int

	// Now stamps records and reports; tests inject a fixed clock.
	Now func() time.Time
}

// collected pairs a unit with its classification once Stage 1 ran.
type collected struct {
	unit praxis.RawUnit
	cls  praxis.ClassificationResult
}

// Run executes the pipeline over the given sources and returns the run
// report. A nil error does not mean every source or service succeeded;
// per-source and per-service failures live inside the report.
func (r *Runner) Run(ctx context.Context, descriptors []praxis.SourceDescriptor) (*praxis.RunReport, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := r.Now
	if now == nil {
		now = time.Now
	}
	concurrency := r.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	report := &praxis.RunReport{StartedAt: now().UTC()}

	// Stage 0: collection. Sources run sequentially; the shared limiter
	// makes parallel collection pointless and sequential order keeps the
	// report deterministic.
	units := r.collectAll(ctx, descriptors, logger, report)
	report.UnitsCollected = len(units)

	if r.Archive != nil && len(units) > 0 {
		if _, _, err := r.Archive.ArchiveUnits(ctx, units); err != nil {
			logger.Warn("unit archive failed", "error", err)
		}
	}

	// Stage 1: classification over batches.
	survivors := r.classifyAll(ctx, units, logger, report, concurrency)

	// Stages 2 and 3: extraction and scoring per relevant unit.
	records := r.extractAndScore(ctx, survivors, logger, report, concurrency, now())

	// Deduplication within each (service, type) group.
	records = r.dedupe(records, report)

	// Persistence, atomically per run.
	r.persist(ctx, records, report, now())

	report.FinishedAt = now().UTC()

	if r.Runs != nil {
		if err := r.Runs.RecordRun(ctx, report); err != nil {
			logger.Warn("run history write failed", "error", err)
		}
	}

	return report, ctx.Err()
}

// Preview collects and batches without touching the model or the store.
// Batching is deterministic, so the boundaries shown here are exactly
// the boundaries a real run over the same input would use.
func (r *Runner) Preview(ctx context.Context, descriptors []praxis.SourceDescriptor) (*praxis.RunReport, []praxis.Batch) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := r.Now
	if now == nil {
		now = time.Now
	}

	report := &praxis.RunReport{StartedAt: now().UTC()}
	units := r.collectAll(ctx, descriptors, logger, report)
	report.UnitsCollected = len(units)
	report.FinishedAt = now().UTC()

	return report, praxis.MakeBatches(units, r.Limits)
}

// collectAll drains every source. A source's terminal failure is
// recorded and its siblings continue.
func (r *Runner) collectAll(ctx context.Context, descriptors []praxis.SourceDescriptor, logger *slog.Logger, report *praxis.RunReport) []praxis.RawUnit {
	var units []praxis.RawUnit

	for _, desc := range descriptors {
		begin := time.Now()
		sr := praxis.SourceReport{Source: desc.Name}

		src, ok := r.Sources[desc.Platform]
		if !ok {
			sr.Failed = true
			sr.Err = "no source registered for platform " + desc.Platform
			sr.Duration = time.Since(begin)
			report.Sources = append(report.Sources, sr)
			continue
		}

		maxUnits := r.MaxUnits
		if desc.Limit > 0 {
			maxUnits = desc.Limit
		}
		collector := collect.NewCollector(src, r.Limiter, logger, maxUnits)
		for u, err := range collector.Collect(ctx, desc) {
			if err != nil {
				sr.Failed = true
				sr.Err = praxis.ErrorMessage(err)
				logger.Warn("source collection failed",
					"source", desc.Name,
					"error", praxis.ErrorMessage(err))
				break
			}
			units = append(units, u)
			sr.Units++
		}
		sr.Skipped = collector.Skipped()

		sr.Duration = time.Since(begin)
		report.Sources = append(report.Sources, sr)

		if ctx.Err() != nil {
			break
		}
	}
	return units
}

// classifyAll batches the units and runs Stage 1 concurrently. Units
// the model judged irrelevant, or never covered, are rejected; units
// lost to exhausted provider retries count as dropped.
func (r *Runner) classifyAll(ctx context.Context, units []praxis.RawUnit, logger *slog.Logger, report *praxis.RunReport, concurrency int) []collected {
	if len(units) == 0 {
		return nil
	}

	batches := praxis.MakeBatches(units, r.Limits)

	var mu sync.Mutex
	results := make(map[string]praxis.ClassificationResult)
	failed := make(map[string]struct{}) // unit IDs from batches the model never answered

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, batch := range batches {
		g.Go(func() error {
			classified, err := r.Classifier.Classify(gctx, batch)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				for _, u := range batch.Units {
					failed[u.ID] = struct{}{}
				}
				logger.Warn("batch classification failed",
					"units", len(batch.Units),
					"error", praxis.ErrorMessage(err))
				return nil
			}
			for _, c := range classified {
				results[c.UnitID] = c
			}
			return nil
		})
	}
	_ = g.Wait()

	report.DroppedAtLLM += len(failed)

	var survivors []collected
	for _, u := range units {
		cls, ok := results[u.ID]
		if !ok {
			// Units from failed batches already counted as dropped; units
			// the model silently skipped in a successful batch are
			// rejections.
			if _, inFailed := failed[u.ID]; !inFailed {
				report.RejectedAtClassification++
			}
			continue
		}
		if cls.Discard(r.RelevanceFloor) {
			report.RejectedAtClassification++
			continue
		}
		survivors = append(survivors, collected{unit: u, cls: cls})
	}
	return survivors
}

// extractAndScore runs Stages 2 and 3 for each relevant unit. A unit's
// LLM failure drops that unit only; the run continues.
func (r *Runner) extractAndScore(ctx context.Context, survivors []collected, logger *slog.Logger, report *praxis.RunReport, concurrency int, now time.Time) []praxis.PracticeRecord {
	var mu sync.Mutex
	var records []praxis.PracticeRecord
	rejected := make(map[string]int) // service -> rejected at quality
	accepted := make(map[string]int)
	contributors := make(map[string]map[string]struct{}) // service -> unit IDs

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, item := range survivors {
		g.Go(func() error {
			candidates, err := r.Extractor.Extract(gctx, item.unit, item.cls.Subjects)
			if err != nil {
				mu.Lock()
				report.DroppedAtLLM++
				mu.Unlock()
				logger.Warn("extraction failed",
					"unit", item.unit.ID,
					"error", praxis.ErrorMessage(err))
				return nil
			}

			for _, candidate := range candidates {
				for _, subject := range candidate.Subjects {
					score, err := r.Scorer.Score(gctx, candidate, subject)
					if err != nil {
						mu.Lock()
						report.DroppedAtLLM++
						mu.Unlock()
						logger.Warn("scoring failed",
							"unit", item.unit.ID,
							"subject", subject,
							"error", praxis.ErrorMessage(err))
						continue
					}

					mu.Lock()
					if !score.Accepted(r.QualityThreshold) {
						rejected[subject]++
						mu.Unlock()
						continue
					}
					accepted[subject]++
					if contributors[subject] == nil {
						contributors[subject] = make(map[string]struct{})
					}
					contributors[subject][candidate.SourceUnitID] = struct{}{}
					records = append(records, praxis.PracticeRecord{
						ID:          recordID(subject, candidate.Type, candidate.Content),
						Service:     subject,
						Category:    praxis.CategoryForService(subject),
						Type:        candidate.Type,
						Content:     candidate.Content,
						Confidence:  candidate.Confidence,
						SourceRefs:  []string{candidate.SourceUnitID},
						LastUpdated: now.UTC(),
					})
					mu.Unlock()
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	for service, n := range rejected {
		report.Service(service).RejectedAtQuality = n
	}
	for service, n := range accepted {
		sr := report.Service(service)
		sr.Accepted = n
		sr.UnitsContributing = len(contributors[service])
	}

	// Concurrent appends land in arbitrary order; sort so everything
	// downstream is deterministic.
	sort.Slice(records, func(i, j int) bool {
		if records[i].Service != records[j].Service {
			return records[i].Service < records[j].Service
		}
		if records[i].Type != records[j].Type {
			return records[i].Type < records[j].Type
		}
		return records[i].Content < records[j].Content
	})

	// Stable service order in the report as well.
	sort.Slice(report.Services, func(i, j int) bool {
		return report.Services[i].Service < report.Services[j].Service
	})

	return records
}

// dedupe merges near-duplicates and records the per-service merge counts.
func (r *Runner) dedupe(records []praxis.PracticeRecord, report *praxis.RunReport) []praxis.PracticeRecord {
	before := make(map[string]int)
	for _, rec := range records {
		before[rec.Service]++
	}

	merged := praxis.Dedupe(records, r.MergeThreshold)

	after := make(map[string]int)
	for _, rec := range merged {
		after[rec.Service]++
	}
	for service, n := range before {
		if diff := n - after[service]; diff > 0 {
			report.Service(service).MergedDuplicates = diff
		}
	}
	return merged
}

// persist groups records by service and writes each set, committing
// all staged sets atomically at the end. A service whose Save fails is
// excluded from the commit; its previous set stays live.
func (r *Runner) persist(ctx context.Context, records []praxis.PracticeRecord, report *praxis.RunReport, now time.Time) {
	sets := make(map[string]*praxis.ServiceDocumentSet)
	var serviceOrder []string
	for _, rec := range records {
		set, ok := sets[rec.Service]
		if !ok {
			set = &praxis.ServiceDocumentSet{
				Service:   rec.Service,
				Category:  rec.Category,
				Records:   make(map[praxis.PracticeType][]praxis.PracticeRecord),
				UpdatedAt: now.UTC(),
			}
			sets[rec.Service] = set
			serviceOrder = append(serviceOrder, rec.Service)
		}
		set.Records[rec.Type] = append(set.Records[rec.Type], rec)
	}
	sort.Strings(serviceOrder)

	committed := false
	defer func() {
		if !committed {
			_ = r.Store.Abort()
		}
	}()

	saved := 0
	for _, service := range serviceOrder {
		set := sets[service]
		sr := report.Service(service)
		if err := r.Store.Save(ctx, set); err != nil {
			sr.WriteErr = praxis.ErrorMessage(err)
			continue
		}
		sr.RecordsWritten = set.Total()
		saved++
	}

	if saved == 0 {
		return
	}
	if err := r.Store.Commit(); err != nil {
		for _, service := range serviceOrder {
			sr := report.Service(service)
			if sr.WriteErr == "" {
				sr.WriteErr = praxis.ErrorMessage(err)
			}
			sr.RecordsWritten = 0
		}
		return
	}
	committed = true
}

// recordID derives a stable identifier from the record's identity, so
// repeated runs over the same content produce the same IDs.
func recordID(service string, typ praxis.PracticeType, content string) string {
	h := xxhash.Sum64String(service + "\x00" + string(typ) + "\x00" + praxis.NormalizeContent(content))
	b := make([]byte, 8)
	for i := range b {
		b[i] = byte(h >> (56 - 8*i))
	}
	return hex.EncodeToString(b)
}
