package observability

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogContext_AccumulatesValues(t *testing.T) {
	ctx := t.Context()
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithUser(ctx, "alice")

	require.Equal(t, "req-1", RequestIDFrom(ctx))
	require.Equal(t, "alice", UserFrom(ctx))

	// Later values override without dropping earlier ones.
	ctx = WithRequestID(ctx, "req-2")
	require.Equal(t, "req-2", RequestIDFrom(ctx))
	require.Equal(t, "alice", UserFrom(ctx))
}

func TestLogContext_EmptyContext(t *testing.T) {
	require.Empty(t, RequestIDFrom(t.Context()))
	require.Empty(t, UserFrom(t.Context()))
}

func TestGetLogAttrs_OnlyPresentFields(t *testing.T) {
	ctx := WithJob(t.Context(), "reindex")
	attrs := getLogAttrs(ctx)
	require.Len(t, attrs, 1)
	require.Equal(t, "job", attrs[0].Key)
}
