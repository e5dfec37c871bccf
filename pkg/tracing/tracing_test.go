package tracing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/jhoicas/almoxarifado-api/pkg/tracing"
)

func TestInit_SinEndpoint(t *testing.T) {
	ctx := context.Background()
	shutdown, err := tracing.Init(ctx, tracing.Config{ServiceName: "test"})
	require.NoError(t, err)
	defer func() { _ = shutdown(ctx) }()

	_, span := otel.Tracer("test").Start(ctx, "op")
	defer span.End()
	assert.True(t, span.SpanContext().IsValid(), "el proveedor global genera spans reales")
}
