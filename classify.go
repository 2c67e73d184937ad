package praxis

import "context"

// ClassificationResult is the Stage 1 verdict for one raw unit: whether the
// content concerns an AI/ML service at all, and which subjects it names.
// Units that fail classification never reach the more expensive extraction
// stage; this is the pipeline's primary cost control.
type ClassificationResult struct {
	// UnitID ties the result back to its raw unit.
	UnitID string `json:"id"`

	// Relevant reports whether the content has any AI/ML-service relevance.
	Relevant bool `json:"relevant"`

	// Subjects are the service or model names actually detected in the
	// content. Extraction stays anchored to these, never to a caller guess.
	Subjects []string `json:"subjects"`

	// Theme is a coarse topic label, e.g. "cost", "prompting", "quality".
	Theme string `json:"theme,omitempty"`

	// Relevance is the classifier's confidence in [0,1].
	Relevance float64 `json:"relevance"`
}

// Discard reports whether the unit should be dropped before extraction,
// given the configured relevance floor.
func (c *ClassificationResult) Discard(floor float64) bool {
	return !c.Relevant || c.Relevance < floor || len(c.Subjects) == 0
}

// Classifier decides AI-relatedness and names subjects for every unit in a
// batch. Results are keyed by unit ID; units the model failed to cover are
// treated as not relevant.
type Classifier interface {
	Classify(ctx context.Context, batch Batch) ([]ClassificationResult, error)
}
