package tracer

import (
	"context"
	"testing"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracer_DisabledWithoutEndpoint(t *testing.T) {
	tp := InitTracer("cart-service", "", logger.NewNop())
	require.NotNil(t, tp)

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	span.End()

	assert.NoError(t, tp.Shutdown(context.Background()))
}
