package locks

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutexTryLock(t *testing.T) {
	m := NewKeyedMutex()
	ctx := context.Background()

	release, ok, err := m.TryLock(ctx, "reservation:txn-1")
	require.NoError(t, err)
	require.True(t, ok)

	// Same key is held, a different key is free.
	_, ok2, err := m.TryLock(ctx, "reservation:txn-1")
	require.NoError(t, err)
	assert.False(t, ok2)

	release2, ok3, err := m.TryLock(ctx, "reservation:txn-2")
	require.NoError(t, err)
	assert.True(t, ok3)
	release2()

	release()

	release3, ok4, err := m.TryLock(ctx, "reservation:txn-1")
	require.NoError(t, err)
	assert.True(t, ok4)
	release3()
}

func TestKeyedMutexSingleWinnerUnderContention(t *testing.T) {
	m := NewKeyedMutex()
	ctx := context.Background()

	const workers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := m.TryLock(ctx, "reservation:txn-1")
			require.NoError(t, err)
			if ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}
