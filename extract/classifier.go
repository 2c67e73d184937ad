// Package extract implements the LLM stages of the pipeline:
// classification, practice extraction, and quality scoring. Each stage
// is a thin adapter between domain types and a praxis.Completer; the
// prompts are pure functions so they can be inspected in tests.
package extract

import (
	"context"
	"log/slog"

	"praxis"
)

var _ praxis.Classifier = (*Classifier)(nil)

// Classifier decides AI-relatedness for every unit in a batch.
type Classifier struct {
	Completer praxis.Completer
	Logger    *slog.Logger
}

// NewClassifier creates a classifier over the given completer.
func NewClassifier(completer praxis.Completer, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{Completer: completer, Logger: logger}
}

// Classify sends the batch to the model and returns one result per unit
// the model covered. Results referencing unknown unit IDs are dropped.
func (c *Classifier) Classify(ctx context.Context, batch praxis.Batch) ([]praxis.ClassificationResult, error) {
	if len(batch.Units) == 0 {
		return nil, nil
	}

	var results []praxis.ClassificationResult
	if err := c.Completer.Complete(ctx, classifyInstructions, BuildClassifyPayload(batch), &results); err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(batch.Units))
	for _, u := range batch.Units {
		known[u.ID] = true
	}

	kept := results[:0]
	for _, r := range results {
		if !known[r.UnitID] {
			c.Logger.Warn("classifier invented a unit ID, dropping result",
				slog.String("id", r.UnitID))
			continue
		}
		if r.Relevance < 0 {
			r.Relevance = 0
		}
		if r.Relevance > 1 {
			r.Relevance = 1
		}
		kept = append(kept, r)
	}
	return kept, nil
}
