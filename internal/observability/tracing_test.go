package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracing_Disabled(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitTracing(context.Background(), false, "ev-station-map", &buf, zerolog.Nop())
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "noop")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Empty(t, buf.String())
}

func TestInitTracing_EnabledExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitTracing(context.Background(), true, "ev-station-map", &buf, zerolog.Nop())
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "tomtom.batch")
	span.End()

	ShutdownWithTimeout(shutdown, zerolog.Nop())
	assert.Contains(t, buf.String(), "tomtom.batch")
	assert.Contains(t, buf.String(), "ev-station-map")
}
