package app

import (
	"context"
	"errors"
	"testing"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestApp_AbortClosesWhatWasOpened(t *testing.T) {
	redisClient := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	a := &App{
		log:         logger.NewNop(),
		tracer:      sdktrace.NewTracerProvider(),
		redisClient: redisClient,
	}
	cause := errors.New("failed to create NATS publisher")

	err := a.abort(cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, redisClient.Ping(context.Background()).Err(), redis.ErrClosed)
}

func TestApp_AbortWithNothingOpened(t *testing.T) {
	a := &App{log: logger.NewNop()}

	assert.NotPanics(t, func() {
		assert.Error(t, a.abort(errors.New("mongo down")))
	})
}
