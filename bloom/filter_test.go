package bloom_test

import (
	"fmt"
	"testing"

	"praxis/bloom"

	"github.com/stretchr/testify/assert"
)

func TestFilter_AddAndTest(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	// ID not yet added should return false
	assert.False(t, f.Test("forum-post-1"))

	// Add ID
	f.Add("forum-post-1")

	// Now it should return true
	assert.True(t, f.Test("forum-post-1"))

	// Different ID should still return false
	assert.False(t, f.Test("forum-post-2"))
}

func TestFilter_TestAndAdd(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	assert.False(t, f.TestAndAdd("forum-post-1"))
	assert.True(t, f.TestAndAdd("forum-post-1"))
}

func TestFilter_EstimatedCount(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	// Empty filter should have count near 0
	assert.Equal(t, uint(0), f.EstimatedCount())

	f.Add("forum-post-1")
	f.Add("forum-post-2")
	f.Add("forum-post-3")

	// Estimated count should be approximately 3
	count := f.EstimatedCount()
	assert.True(t, count >= 2 && count <= 4, "expected count near 3, got %d", count)
}

func TestFilter_AddIsIdempotent(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	id := "forum-post-1"

	f.Add(id)
	countAfterFirst := f.EstimatedCount()

	// Adding the same ID multiple times should not change the filter
	f.Add(id)
	f.Add(id)
	f.Add(id)

	assert.Equal(t, countAfterFirst, f.EstimatedCount())
	assert.True(t, f.Test(id))
}

func TestFilter_FalsePositiveRate(t *testing.T) {
	t.Parallel()

	const (
		numItems   = 10000
		fpRate     = 0.01
		testProbes = 10000
	)

	f := bloom.NewFilter(numItems, fpRate)

	for i := range numItems {
		f.Add(fmt.Sprintf("added-%d", i))
	}

	// Probe with 10k IDs that were NOT added
	falsePositives := 0
	for i := range testProbes {
		if f.Test(fmt.Sprintf("notadded-%d", i)) {
			falsePositives++
		}
	}

	// False positive rate should be approximately 1%
	// Allow up to 2% to account for statistical variance
	actualRate := float64(falsePositives) / float64(testProbes)
	assert.Less(t, actualRate, 0.02, "false positive rate %f exceeds 2%%", actualRate)
}
