package rate_test

import (
	"context"
	"testing"
	"time"

	"github.com/fortifiedfantasy/fein-server/internal/rate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	limiter := rate.NewMemoryLimiter(3, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, "key-a")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "hit %d should be allowed", i+1)
		assert.Equal(t, int64(3-(i+1)), res.Remaining)
	}

	res, err := limiter.Allow(ctx, "key-a")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, int64(0), res.Remaining)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	limiter := rate.NewMemoryLimiter(1, time.Hour)
	ctx := context.Background()

	res, err := limiter.Allow(ctx, "key-a")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "key-a")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	res, err = limiter.Allow(ctx, "key-b")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}
