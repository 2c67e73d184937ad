package praxis_test

import (
	"testing"

	"praxis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidatePracticeValidate(t *testing.T) {
	t.Parallel()

	valid := praxis.CandidatePractice{
		Type:         praxis.PracticeCost,
		Content:      "720p instead of 1080p saves 40% credits",
		Subjects:     []string{"HeyGen"},
		Confidence:   0.8,
		SourceUnitID: "post-2",
	}

	t.Run("valid candidate passes", func(t *testing.T) {
		t.Parallel()
		c := valid
		require.NoError(t, c.Validate())
	})

	t.Run("free-form practice type is rejected", func(t *testing.T) {
		t.Parallel()
		c := valid
		c.Type = "vibes"
		err := c.Validate()
		require.Error(t, err)
		assert.Equal(t, praxis.EINVALID, praxis.ErrorCode(err))
	})

	t.Run("missing source unit is rejected", func(t *testing.T) {
		t.Parallel()
		c := valid
		c.SourceUnitID = ""
		assert.Error(t, c.Validate())
	})

	t.Run("no subjects is rejected", func(t *testing.T) {
		t.Parallel()
		c := valid
		c.Subjects = nil
		assert.Error(t, c.Validate())
	})

	t.Run("confidence outside [0,1] is rejected", func(t *testing.T) {
		t.Parallel()
		c := valid
		c.Confidence = 1.2
		assert.Error(t, c.Validate())
	})
}

func TestQualityScore(t *testing.T) {
	t.Parallel()

	t.Run("threshold boundary is exact", func(t *testing.T) {
		t.Parallel()

		below := praxis.QualityScore{Composite: 0.599}
		at := praxis.QualityScore{Composite: 0.600}

		assert.False(t, below.Accepted(0.6))
		assert.True(t, at.Accepted(0.6))
	})

	t.Run("compose is the weighted mean", func(t *testing.T) {
		t.Parallel()

		s := praxis.QualityScore{Relevance: 1, Specificity: 0, Actionability: 0}
		s.Compose(praxis.ScoreWeights{Relevance: 1, Specificity: 1, Actionability: 2})
		assert.InDelta(t, 0.25, s.Composite, 1e-9)
	})

	t.Run("equal weights average the dimensions", func(t *testing.T) {
		t.Parallel()

		s := praxis.QualityScore{Relevance: 0.9, Specificity: 0.6, Actionability: 0.3}
		s.Compose(praxis.ScoreWeights{Relevance: 1, Specificity: 1, Actionability: 1})
		assert.InDelta(t, 0.6, s.Composite, 1e-9)
	})

	t.Run("all-zero weights are invalid", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, praxis.ScoreWeights{}.Validate())
	})
}

func TestCategoryForService(t *testing.T) {
	t.Parallel()

	tests := []struct {
		service string
		want    string
	}{
		{"Midjourney", "image"},
		{"HeyGen", "video"},
		{"ElevenLabs", "audio"},
		{"Claude", "text"},
		{"some-unknown-tool", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.service, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, praxis.CategoryForService(tt.service))
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	t.Run("code and message round-trip", func(t *testing.T) {
		t.Parallel()
		err := praxis.Errorf(praxis.EUNAVAILABLE, "host %s unreachable", "example.com")
		assert.Equal(t, praxis.EUNAVAILABLE, praxis.ErrorCode(err))
		assert.Equal(t, "host example.com unreachable", praxis.ErrorMessage(err))
	})

	t.Run("non-application errors are internal", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, praxis.EINTERNAL, praxis.ErrorCode(assert.AnError))
	})

	t.Run("malformed errors carry the raw output", func(t *testing.T) {
		t.Parallel()
		err := praxis.MalformedErrorf("```json oops", "undecodable response")
		assert.Equal(t, praxis.EMALFORMED, praxis.ErrorCode(err))
		assert.Equal(t, "```json oops", praxis.MalformedRaw(err))
	})

	t.Run("nil error has empty code", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", praxis.ErrorCode(nil))
	})
}
