package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "echohole-test"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSpan_NoopIsSafe(t *testing.T) {
	span, ctx := NewSpan(context.Background(), "test.op", attribute.String("k", "v"))
	require.NotNil(t, ctx)
	span.AddAttributes(attribute.Int("n", 1))
	span.SetError(errors.New("boom"))
	span.SetError(nil)
	span.End()
}
