package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewZapLogger(t *testing.T) {
	for _, cfg := range []ZapLoggerConfig{
		{Level: "debug", Encoding: "json"},
		{Level: "WARN", Encoding: "console", TimeFormat: "15:04:05"},
		{Level: "not-a-level"},
	} {
		log, err := NewZapLogger(cfg)
		require.NoError(t, err)
		require.NotNil(t, log)

		scoped := log.With("component", "test")
		assert.NotNil(t, scoped)
		scoped.Infow("message", "key", "value")
	}
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	log.Errorf("dropped %d", 1)
	assert.NotNil(t, log.With("k", "v"))
}
