package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunLockDefaults(t *testing.T) {
	l := NewRunLock(nil, "", 0)

	assert.Equal(t, DefaultRunLockKey, l.key)
	assert.Equal(t, DefaultRunLockTTL, l.ttl)
	assert.False(t, l.Distributed())
}

func TestLocalRunLockExcludesSecondRun(t *testing.T) {
	ctx := context.Background()
	l := NewRunLock(nil, "", time.Minute)

	ok, err := l.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	held, err := l.Held(ctx)
	require.NoError(t, err)
	assert.True(t, held)

	ok, err = l.TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "second run must not get the lock")

	require.NoError(t, l.Unlock(ctx))

	held, err = l.Held(ctx)
	require.NoError(t, err)
	assert.False(t, held)

	ok, err = l.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok, "lock must be free again after unlock")
	require.NoError(t, l.Unlock(ctx))
}
