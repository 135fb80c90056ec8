package gate

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	state     string
	recordID  string
	expiresAt time.Time
}

// MemoryGate is a single-process Gate: a mutex-protected map with lazy
// expiry. It does not survive restarts and does not coordinate across
// instances; use DynamoGate for multi-instance deployments.
type MemoryGate struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	window  time.Duration
	nowFunc func() time.Time
}

// NewMemoryGate returns a gate with the given window (Window if zero).
func NewMemoryGate(window time.Duration) *MemoryGate {
	if window <= 0 {
		window = Window
	}
	return &MemoryGate{
		entries: map[string]memoryEntry{},
		window:  window,
		nowFunc: time.Now,
	}
}

// TryBegin implements Gate. The whole check-and-set runs under one lock, so
// two requests racing on the same key cannot both be admitted.
func (g *MemoryGate) TryBegin(ctx context.Context, key string) (Decision, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.nowFunc()
	if e, ok := g.entries[key]; ok && now.Before(e.expiresAt) {
		if e.state == StateCompleted {
			return Decision{Outcome: RejectedCompleted, RecordID: e.recordID}, nil
		}
		return Decision{Outcome: RejectedProcessing}, nil
	}

	g.entries[key] = memoryEntry{
		state:     StateProcessing,
		expiresAt: now.Add(g.window),
	}
	return Decision{Outcome: Admitted}, nil
}

// MarkCompleted implements Gate.
func (g *MemoryGate) MarkCompleted(ctx context.Context, key, recordID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.entries[key] = memoryEntry{
		state:     StateCompleted,
		recordID:  recordID,
		expiresAt: g.nowFunc().Add(g.window),
	}
	return nil
}

// Clear implements Gate.
func (g *MemoryGate) Clear(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.entries, key)
	return nil
}
