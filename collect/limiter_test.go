package collect_test

import (
	"context"
	"testing"
	"time"

	"praxis"
	"praxis/collect"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalLimiter(t *testing.T) {
	t.Parallel()

	t.Run("implements praxis.Limiter interface", func(t *testing.T) {
		t.Parallel()
		var _ praxis.Limiter = collect.NewIntervalLimiter(time.Second)
	})

	t.Run("allows immediate first request", func(t *testing.T) {
		t.Parallel()

		limiter := collect.NewIntervalLimiter(2 * time.Second)

		start := time.Now()
		err := limiter.Wait(context.Background())
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.Less(t, elapsed, 50*time.Millisecond, "first request should be immediate")
	})

	t.Run("enforces interval between requests", func(t *testing.T) {
		t.Parallel()

		limiter := collect.NewIntervalLimiter(time.Second)

		err := limiter.Wait(context.Background())
		require.NoError(t, err)

		// Second request should wait close to the full interval.
		start := time.Now()
		err = limiter.Wait(context.Background())
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, elapsed, 900*time.Millisecond, "should wait for the interval")
	})

	t.Run("clamps sub-second intervals to the floor", func(t *testing.T) {
		t.Parallel()

		limiter := collect.NewIntervalLimiter(10 * time.Millisecond)

		err := limiter.Wait(context.Background())
		require.NoError(t, err)

		start := time.Now()
		err = limiter.Wait(context.Background())
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, elapsed, 900*time.Millisecond, "floor must hold regardless of configuration")
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		limiter := collect.NewIntervalLimiter(time.Second)

		err := limiter.Wait(context.Background())
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err = limiter.Wait(ctx)
		assert.Error(t, err, "should fail when context times out")
	})
}
