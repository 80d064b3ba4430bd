package conn

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockMutexAcquireRelease(t *testing.T) {
	m := newLockMutex()
	release, err := m.acquire(context.Background(), "sqlite-sync", time.Second)
	require.NoError(t, err)
	release()

	release, err = m.acquire(context.Background(), "sqlite-sync", time.Second)
	require.NoError(t, err)
	release()
}

func TestLockMutexTimesOutWhenHeld(t *testing.T) {
	m := newLockMutex()
	release, err := m.acquire(context.Background(), "sqlite-sync", time.Second)
	require.NoError(t, err)
	defer release()

	_, err = m.acquire(context.Background(), "sqlite-sync", 10*time.Millisecond)
	assert.True(t, IsConnectionAcquireError(err))
}

func TestLockMutexRespectsContextCancellation(t *testing.T) {
	m := newLockMutex()
	release, err := m.acquire(context.Background(), "sqlite-sync", time.Second)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.acquire(ctx, "sqlite-sync", time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLockMutexPoisoned(t *testing.T) {
	m := newLockMutex()
	m.poison()
	_, err := m.acquire(context.Background(), "sqlite-sync", time.Second)
	assert.True(t, IsMutexPoisonError(err))
}
