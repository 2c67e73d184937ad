package praxis

import (
	"context"
	"strings"
	"time"
)

// PracticeType is the closed enumeration of practice categories. Free-form
// categories from the model are rejected at validation.
type PracticeType string

// PracticeType constants.
const (
	PracticePrompting PracticeType = "prompting"
	PracticeParameter PracticeType = "parameter"
	PracticePitfall   PracticeType = "pitfall"
	PracticeCost      PracticeType = "cost_optimization"
)

// PracticeTypes lists all valid practice types in persistence order.
func PracticeTypes() []PracticeType {
	return []PracticeType{PracticePrompting, PracticeParameter, PracticePitfall, PracticeCost}
}

// Valid reports whether t is a member of the closed enumeration.
func (t PracticeType) Valid() bool {
	switch t {
	case PracticePrompting, PracticeParameter, PracticePitfall, PracticeCost:
		return true
	}
	return false
}

// CandidatePractice is a Stage 2 extraction result that has not yet passed
// quality scoring.
type CandidatePractice struct {
	Type PracticeType `json:"type"`

	// Content is the practice text itself.
	Content string `json:"content"`

	// Subjects are the services this practice applies to. Must be drawn
	// from the subjects Stage 1 detected for the originating unit.
	Subjects []string `json:"subjects"`

	// Confidence is the extractor's confidence in [0,1].
	Confidence float64 `json:"confidence"`

	// SourceUnitID references the raw unit this was extracted from.
	// A practice with no traceable source is invalid.
	SourceUnitID string `json:"sourceUnitId"`
}

// Validate returns an error if the candidate cannot be scored.
func (c *CandidatePractice) Validate() error {
	if !c.Type.Valid() {
		return Errorf(EINVALID, "unknown practice type %q", c.Type)
	}
	if strings.TrimSpace(c.Content) == "" {
		return Errorf(EINVALID, "practice content required")
	}
	if len(c.Subjects) == 0 {
		return Errorf(EINVALID, "practice must name at least one subject")
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return Errorf(EINVALID, "practice confidence must be in [0,1]")
	}
	if c.SourceUnitID == "" {
		return Errorf(EINVALID, "practice must reference its source unit")
	}
	return nil
}

// ScoreWeights combines the three quality dimensions into a composite.
// Different LLM backends calibrate differently, so the weights are
// configuration, not a hard-coded formula.
type ScoreWeights struct {
	Relevance     float64 `json:"relevance" yaml:"relevance"`
	Specificity   float64 `json:"specificity" yaml:"specificity"`
	Actionability float64 `json:"actionability" yaml:"actionability"`
}

// DefaultScoreWeights weighs specificity highest: the scorer exists to
// reject platform-agnostic platitudes.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Relevance: 0.3, Specificity: 0.4, Actionability: 0.3}
}

// Validate returns an error if the weights cannot form a composite.
func (w ScoreWeights) Validate() error {
	if w.Relevance < 0 || w.Specificity < 0 || w.Actionability < 0 {
		return Errorf(EINVALID, "score weights must be non-negative")
	}
	if w.Relevance+w.Specificity+w.Actionability <= 0 {
		return Errorf(EINVALID, "score weights must not all be zero")
	}
	return nil
}

// QualityScore is the Stage 3 verdict for one candidate against one target
// subject. The individual dimensions come from the LLM; the composite and
// the threshold comparison are pure arithmetic.
type QualityScore struct {
	Relevance     float64 `json:"relevance"`
	Specificity   float64 `json:"specificity"`
	Actionability float64 `json:"actionability"`
	Composite     float64 `json:"composite"`
}

// Compose fills Composite as the weighted mean of the three dimensions.
func (s *QualityScore) Compose(w ScoreWeights) {
	total := w.Relevance + w.Specificity + w.Actionability
	if total <= 0 {
		s.Composite = 0
		return
	}
	s.Composite = (s.Relevance*w.Relevance + s.Specificity*w.Specificity + s.Actionability*w.Actionability) / total
}

// Accepted reports whether the composite clears the threshold. This is a
// deterministic numeric comparison; rejection is an expected filtering
// outcome, never an error.
func (s *QualityScore) Accepted(threshold float64) bool {
	return s.Composite >= threshold
}

// PracticeRecord is a final accepted, deduplicated practice for one service.
type PracticeRecord struct {
	ID          string       `json:"id"`
	Service     string       `json:"service"`
	Category    string       `json:"category"`
	Type        PracticeType `json:"type"`
	Content     string       `json:"content"`
	Confidence  float64      `json:"confidence"`
	SourceRefs  []string     `json:"sourceRefs"`
	LastUpdated time.Time    `json:"lastUpdated"`
}

// Validate returns an error if the record cannot be persisted.
func (r *PracticeRecord) Validate() error {
	if r.Service == "" {
		return Errorf(EINVALID, "record service required")
	}
	if !r.Type.Valid() {
		return Errorf(EINVALID, "unknown practice type %q", r.Type)
	}
	if strings.TrimSpace(r.Content) == "" {
		return Errorf(EINVALID, "record content required")
	}
	if len(r.SourceRefs) == 0 {
		return Errorf(EINVALID, "record must carry at least one source reference")
	}
	return nil
}

// ServiceDocumentSet is the full collection of records for one service,
// grouped by practice type. It is rebuilt from scratch on every successful
// run and atomically swapped in; it is never incrementally appended.
type ServiceDocumentSet struct {
	Service   string                            `json:"service"`
	Category  string                            `json:"category"`
	Records   map[PracticeType][]PracticeRecord `json:"records"`
	UpdatedAt time.Time                         `json:"updatedAt"`
}

// Total returns the number of records across all practice types.
func (s *ServiceDocumentSet) Total() int {
	n := 0
	for _, recs := range s.Records {
		n += len(recs)
	}
	return n
}

// Extractor converts one classified, relevant unit into zero or more
// candidate practices (Stage 2). Zero candidates is the common case.
type Extractor interface {
	Extract(ctx context.Context, unit RawUnit, subjects []string) ([]CandidatePractice, error)
}

// Scorer judges one candidate against the subject it claims to describe
// (Stage 3). Scoring is LLM-backed, so exact run-to-run determinism is not
// guaranteed; the acceptance decision on a produced score is.
type Scorer interface {
	Score(ctx context.Context, candidate CandidatePractice, subject string) (QualityScore, error)
}

// categoryPatterns maps well-known service name fragments to categories,
// mirroring how services are binned in the persisted directory layout.
// Ordered so matching is deterministic when a name straddles categories.
var categoryPatterns = []struct {
	category string
	patterns []string
}{
	{"image", []string{"midjourney", "dall-e", "dalle", "stable diffusion", "sdxl", "flux", "ideogram"}},
	{"video", []string{"runway", "pika", "sora", "heygen", "kling", "luma"}},
	{"audio", []string{"elevenlabs", "suno", "whisper", "udio"}},
}

// CategoryForService returns the persistence category for a service name.
// Unrecognized services default to "text", the most common bin.
func CategoryForService(service string) string {
	s := strings.ToLower(service)
	for _, group := range categoryPatterns {
		for _, p := range group.patterns {
			if strings.Contains(s, p) {
				return group.category
			}
		}
	}
	return "text"
}
