package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vansales/backend/internal/domain/shared"
)

func TestKeyedAgentLock_Acquire(t *testing.T) {
	t.Run("acquire and release", func(t *testing.T) {
		lock := NewKeyedAgentLock(time.Second)
		agentID := uuid.New()

		release, err := lock.Acquire(context.Background(), agentID)
		require.NoError(t, err)
		assert.Equal(t, 1, lock.ActiveKeys())

		release()
		assert.Equal(t, 0, lock.ActiveKeys())
	})

	t.Run("held key times out with dispatch busy", func(t *testing.T) {
		lock := NewKeyedAgentLock(30 * time.Millisecond)
		agentID := uuid.New()

		release, err := lock.Acquire(context.Background(), agentID)
		require.NoError(t, err)
		defer release()

		_, err = lock.Acquire(context.Background(), agentID)
		assert.ErrorIs(t, err, shared.ErrDispatchBusy)
	})

	t.Run("waiter proceeds once the holder releases", func(t *testing.T) {
		lock := NewKeyedAgentLock(time.Second)
		agentID := uuid.New()

		release, err := lock.Acquire(context.Background(), agentID)
		require.NoError(t, err)

		acquired := make(chan struct{})
		go func() {
			second, err := lock.Acquire(context.Background(), agentID)
			if err == nil {
				close(acquired)
				second()
			}
		}()

		select {
		case <-acquired:
			t.Fatal("second acquire should wait for the holder")
		case <-time.After(20 * time.Millisecond):
		}

		release()

		select {
		case <-acquired:
		case <-time.After(time.Second):
			t.Fatal("second acquire should proceed after release")
		}
	})

	t.Run("cancelled context yields dispatch busy", func(t *testing.T) {
		lock := NewKeyedAgentLock(time.Second)
		agentID := uuid.New()

		release, err := lock.Acquire(context.Background(), agentID)
		require.NoError(t, err)
		defer release()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = lock.Acquire(ctx, agentID)
		assert.ErrorIs(t, err, shared.ErrDispatchBusy)
	})

	t.Run("different agents do not block each other", func(t *testing.T) {
		lock := NewKeyedAgentLock(50 * time.Millisecond)

		releaseA, err := lock.Acquire(context.Background(), uuid.New())
		require.NoError(t, err)
		defer releaseA()

		releaseB, err := lock.Acquire(context.Background(), uuid.New())
		require.NoError(t, err)
		defer releaseB()

		assert.Equal(t, 2, lock.ActiveKeys())
	})

	t.Run("release is idempotent", func(t *testing.T) {
		lock := NewKeyedAgentLock(time.Second)
		agentID := uuid.New()

		release, err := lock.Acquire(context.Background(), agentID)
		require.NoError(t, err)
		release()
		release()

		again, err := lock.Acquire(context.Background(), agentID)
		require.NoError(t, err)
		again()
		assert.Equal(t, 0, lock.ActiveKeys())
	})
}

func TestKeyedAgentLock_MutualExclusion(t *testing.T) {
	lock := NewKeyedAgentLock(2 * time.Second)
	agentID := uuid.New()

	var holders int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := lock.Acquire(context.Background(), agentID)
			if err != nil {
				return
			}
			defer release()
			if atomic.AddInt32(&holders, 1) != 1 {
				t.Error("two goroutines held the same agent scope")
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&holders, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, lock.ActiveKeys())
}
