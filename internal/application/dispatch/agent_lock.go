package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vansales/backend/internal/domain/shared"
)

// AgentLockManager serializes dispatch commits per agent. Two concurrent
// confirms for the same agent never hold the scope at once; confirms for
// different agents proceed in parallel.
type AgentLockManager interface {
	// Acquire obtains the exclusive scope for the agent, waiting up to the
	// manager's configured timeout. It returns a release function on
	// success and DISPATCH_BUSY when the wait times out or the context is
	// cancelled.
	Acquire(ctx context.Context, agentID uuid.UUID) (func(), error)
}

// KeyedAgentLock is an in-process AgentLockManager backed by one semaphore
// slot per agent id. Idle keys are reference-counted away, so the map only
// holds agents with an active or waiting dispatch.
type KeyedAgentLock struct {
	mu          sync.Mutex
	locks       map[uuid.UUID]*agentLock
	waitTimeout time.Duration
}

type agentLock struct {
	sem  chan struct{}
	refs int
}

// DefaultLockWait bounds how long a dispatch waits for a busy agent
const DefaultLockWait = 3 * time.Second

// NewKeyedAgentLock creates a KeyedAgentLock with the given wait timeout.
// A non-positive timeout falls back to DefaultLockWait.
func NewKeyedAgentLock(waitTimeout time.Duration) *KeyedAgentLock {
	if waitTimeout <= 0 {
		waitTimeout = DefaultLockWait
	}
	return &KeyedAgentLock{
		locks:       make(map[uuid.UUID]*agentLock),
		waitTimeout: waitTimeout,
	}
}

// Acquire obtains the agent's semaphore slot, bounded by the wait timeout
func (l *KeyedAgentLock) Acquire(ctx context.Context, agentID uuid.UUID) (func(), error) {
	entry := l.retain(agentID)

	timer := time.NewTimer(l.waitTimeout)
	defer timer.Stop()

	select {
	case entry.sem <- struct{}{}:
		var once sync.Once
		release := func() {
			once.Do(func() {
				<-entry.sem
				l.releaseRef(agentID)
			})
		}
		return release, nil
	case <-ctx.Done():
		l.releaseRef(agentID)
		return nil, shared.ErrDispatchBusy
	case <-timer.C:
		l.releaseRef(agentID)
		return nil, shared.ErrDispatchBusy
	}
}

// retain returns the agent's lock entry, creating it on first use
func (l *KeyedAgentLock) retain(agentID uuid.UUID) *agentLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.locks[agentID]
	if !ok {
		entry = &agentLock{sem: make(chan struct{}, 1)}
		l.locks[agentID] = entry
	}
	entry.refs++
	return entry
}

// releaseRef drops one reference and removes the key when nobody holds
// or waits on it anymore
func (l *KeyedAgentLock) releaseRef(agentID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.locks[agentID]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(l.locks, agentID)
	}
}

// ActiveKeys reports how many agent keys currently exist. Only used by tests
// to verify idle keys are cleaned up.
func (l *KeyedAgentLock) ActiveKeys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// Ensure KeyedAgentLock implements AgentLockManager
var _ AgentLockManager = (*KeyedAgentLock)(nil)
