package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundCtxAppliesTimeout(t *testing.T) {
	ctx, cancel := boundCtx(context.Background(), 250*time.Millisecond)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok, "transaction context must carry a deadline")
	assert.WithinDuration(t, time.Now().Add(250*time.Millisecond), deadline, 100*time.Millisecond)
}

func TestBoundCtxZeroDisablesTimeout(t *testing.T) {
	parent := context.Background()
	ctx, cancel := boundCtx(parent, 0)
	defer cancel()

	_, ok := ctx.Deadline()
	assert.False(t, ok)
	assert.Equal(t, parent, ctx)
}
