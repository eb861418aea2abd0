package sheets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotaWaitsForWindow(t *testing.T) {
	q := newQuota(2, 60*time.Millisecond)
	ctx := context.Background()

	started := time.Now()
	require.NoError(t, q.wait(ctx))
	require.NoError(t, q.wait(ctx))
	assert.Equal(t, 0, q.remaining())

	require.NoError(t, q.wait(ctx))
	assert.GreaterOrEqual(t, time.Since(started), 50*time.Millisecond)
}

func TestQuotaRespectsContext(t *testing.T) {
	q := newQuota(1, time.Hour)
	require.NoError(t, q.wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, q.wait(ctx), context.DeadlineExceeded)
}

func TestNilQuotaNeverWaits(t *testing.T) {
	q := newQuota(0, time.Minute)
	assert.Nil(t, q)
	assert.NoError(t, q.wait(context.Background()))
	assert.Equal(t, -1, q.remaining())
}
