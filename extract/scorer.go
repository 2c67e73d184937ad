package extract

import (
	"context"

	"praxis"
)

var _ praxis.Scorer = (*Scorer)(nil)

// Scorer judges candidate quality against one target subject.
type Scorer struct {
	Completer praxis.Completer
	Weights   praxis.ScoreWeights
}

// NewScorer creates a scorer with the given composite weights.
func NewScorer(completer praxis.Completer, weights praxis.ScoreWeights) *Scorer {
	return &Scorer{Completer: completer, Weights: weights}
}

// Score asks the model for the three quality dimensions and composes
// them into the weighted composite. Dimensions are clamped to [0,1]
// before composition.
func (s *Scorer) Score(ctx context.Context, candidate praxis.CandidatePractice, subject string) (praxis.QualityScore, error) {
	var score praxis.QualityScore
	if err := s.Completer.Complete(ctx, scoreInstructions, BuildScorePayload(candidate, subject), &score); err != nil {
		return praxis.QualityScore{}, err
	}

	score.Relevance = clamp01(score.Relevance)
	score.Specificity = clamp01(score.Specificity)
	score.Actionability = clamp01(score.Actionability)
	score.Compose(s.Weights)

	return score, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
