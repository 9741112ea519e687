package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
)

func TestMutateBackOff_StaysBoundedAndNeverStops(t *testing.T) {
	b := newMutateBackOff()

	var total time.Duration
	for i := 0; i < maxMutateAttempts; i++ {
		d := b.NextBackOff()
		assert.NotEqual(t, backoff.Stop, d)
		assert.Positive(t, d)
		assert.LessOrEqual(t, d, time.Duration(float64(mutateMaxBackoff)*1.5))
		total += d
	}
	assert.Less(t, total, 3*time.Second)
}

func TestSleepCtx_ReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	started := time.Now()
	err := sleepCtx(ctx, time.Minute)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(started), time.Second)
	assert.NoError(t, sleepCtx(context.Background(), 0))
}
