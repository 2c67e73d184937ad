// Package collect provides rate-limited collection of raw units from
// discussion sources. It coordinates paging, politeness delays,
// validation, and within-run deduplication.
package collect

import (
	"context"
	"iter"
	"log/slog"

	"praxis"
	"praxis/bloom"
)

var _ praxis.Collector = (*Collector)(nil)

// Bloom filter sizing for within-run unit deduplication.
const (
	expectedUnits     = 100000
	falsePositiveRate = 0.001
)

// Collector streams raw units from a source, one page at a time.
// Each page fetch waits on the limiter first, so the politeness delay
// holds across the whole run. Units that fail validation are skipped
// and logged, never surfaced as errors. Units whose ID was already
// seen in this run are dropped.
type Collector struct {
	Source   praxis.Source
	Limiter  praxis.Limiter
	Logger   *slog.Logger
	MaxUnits int

	seen    *bloom.Filter
	skipped int
}

// NewCollector creates a collector over src with the given limiter.
// maxUnits caps the number of units yielded per source; zero or
// negative means no cap.
func NewCollector(src praxis.Source, limiter praxis.Limiter, logger *slog.Logger, maxUnits int) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		Source:   src,
		Limiter:  limiter,
		Logger:   logger,
		MaxUnits: maxUnits,
		seen:     bloom.NewFilter(expectedUnits, falsePositiveRate),
	}
}

// Skipped reports how many units were dropped for failing validation or
// for duplicating an already-seen ID. Meaningful once the sequence from
// Collect has been drained.
func (c *Collector) Skipped() int {
	return c.skipped
}

// Collect returns a lazy, finite sequence of units from the source.
// The sequence is not restartable; iterate it once. A fetch error ends
// the sequence with that error as its final element.
func (c *Collector) Collect(ctx context.Context, src praxis.SourceDescriptor) iter.Seq2[praxis.RawUnit, error] {
	return func(yield func(praxis.RawUnit, error) bool) {
		yielded := 0
		for page := 0; ; page++ {
			if err := ctx.Err(); err != nil {
				yield(praxis.RawUnit{}, err)
				return
			}
			if err := c.Limiter.Wait(ctx); err != nil {
				yield(praxis.RawUnit{}, err)
				return
			}

			units, more, err := c.Source.FetchPage(ctx, src, page)
			if err != nil {
				yield(praxis.RawUnit{}, err)
				return
			}

			for _, u := range units {
				if err := u.Validate(); err != nil {
					c.skipped++
					c.Logger.Warn("skipping invalid unit",
						slog.String("source", src.Name),
						slog.String("id", u.ID),
						slog.String("reason", praxis.ErrorMessage(err)))
					continue
				}
				if c.seen.TestAndAdd(u.ID) {
					c.skipped++
					continue
				}
				if !yield(u, nil) {
					return
				}
				yielded++
				if c.MaxUnits > 0 && yielded >= c.MaxUnits {
					return
				}
			}

			if !more {
				return
			}
		}
	}
}
