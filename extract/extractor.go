package extract

import (
	"context"
	"log/slog"
	"strings"

	"praxis"
)

var _ praxis.Extractor = (*Extractor)(nil)

// Extractor turns one relevant unit into candidate practices.
type Extractor struct {
	Completer praxis.Completer
	Logger    *slog.Logger
}

// NewExtractor creates an extractor over the given completer.
func NewExtractor(completer praxis.Completer, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{Completer: completer, Logger: logger}
}

// extractedPractice is the model-facing candidate shape, before the
// source unit reference is attached.
type extractedPractice struct {
	Type       praxis.PracticeType `json:"type"`
	Content    string              `json:"content"`
	Subjects   []string            `json:"subjects"`
	Confidence float64             `json:"confidence"`
}

// Extract asks the model for practices in the unit. Candidates with an
// unknown type or subjects outside the allowed set are dropped and
// logged; the unit's remaining candidates still count.
func (e *Extractor) Extract(ctx context.Context, unit praxis.RawUnit, subjects []string) ([]praxis.CandidatePractice, error) {
	if len(subjects) == 0 {
		return nil, praxis.Errorf(praxis.EINVALID, "extraction requires classified subjects")
	}

	var raw []extractedPractice
	if err := e.Completer.Complete(ctx, extractInstructions, BuildExtractPayload(unit, subjects), &raw); err != nil {
		return nil, err
	}

	allowed := make(map[string]bool, len(subjects))
	for _, s := range subjects {
		allowed[strings.ToLower(s)] = true
	}

	var candidates []praxis.CandidatePractice
	for _, p := range raw {
		candidate := praxis.CandidatePractice{
			Type:         p.Type,
			Content:      strings.TrimSpace(p.Content),
			Subjects:     filterSubjects(p.Subjects, allowed),
			Confidence:   p.Confidence,
			SourceUnitID: unit.ID,
		}
		if err := candidate.Validate(); err != nil {
			e.Logger.Warn("dropping invalid candidate",
				slog.String("unit", unit.ID),
				slog.String("type", string(p.Type)),
				slog.String("reason", praxis.ErrorMessage(err)))
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

// filterSubjects keeps only subjects from the allowed set, preserving
// the model's casing of the first allowed occurrence.
func filterSubjects(subjects []string, allowed map[string]bool) []string {
	var kept []string
	seen := make(map[string]bool)
	for _, s := range subjects {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || !allowed[key] || seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, strings.TrimSpace(s))
	}
	return kept
}
