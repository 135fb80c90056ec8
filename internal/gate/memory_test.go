package gate

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryGate_AdmitThenRejectProcessing(t *testing.T) {
	g := NewMemoryGate(30 * time.Second)
	ctx := context.Background()

	dec, err := g.TryBegin(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("TryBegin error: %v", err)
	}
	if dec.Outcome != Admitted {
		t.Fatalf("expected Admitted, got %v", dec.Outcome)
	}

	dec2, err := g.TryBegin(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("second TryBegin error: %v", err)
	}
	if dec2.Outcome != RejectedProcessing {
		t.Fatalf("expected RejectedProcessing, got %v", dec2.Outcome)
	}

	// a different key is unaffected
	dec3, _ := g.TryBegin(ctx, "10.0.0.2")
	if dec3.Outcome != Admitted {
		t.Fatalf("expected Admitted for other key, got %v", dec3.Outcome)
	}
}

func TestMemoryGate_MarkCompletedThenRejectWithRecordID(t *testing.T) {
	g := NewMemoryGate(30 * time.Second)
	ctx := context.Background()

	if _, err := g.TryBegin(ctx, "10.0.0.1"); err != nil {
		t.Fatalf("TryBegin error: %v", err)
	}
	if err := g.MarkCompleted(ctx, "10.0.0.1", "recABC123"); err != nil {
		t.Fatalf("MarkCompleted error: %v", err)
	}

	dec, err := g.TryBegin(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("TryBegin error: %v", err)
	}
	if dec.Outcome != RejectedCompleted {
		t.Fatalf("expected RejectedCompleted, got %v", dec.Outcome)
	}
	if dec.RecordID != "recABC123" {
		t.Fatalf("expected prior record id, got %q", dec.RecordID)
	}
}

func TestMemoryGate_EntryExpires(t *testing.T) {
	g := NewMemoryGate(30 * time.Second)
	now := time.Now()
	g.nowFunc = func() time.Time { return now }
	ctx := context.Background()

	if _, err := g.TryBegin(ctx, "10.0.0.1"); err != nil {
		t.Fatalf("TryBegin error: %v", err)
	}
	if err := g.MarkCompleted(ctx, "10.0.0.1", "recABC123"); err != nil {
		t.Fatalf("MarkCompleted error: %v", err)
	}

	// still inside the window
	now = now.Add(29 * time.Second)
	if dec, _ := g.TryBegin(ctx, "10.0.0.1"); dec.Outcome != RejectedCompleted {
		t.Fatalf("expected RejectedCompleted inside window, got %v", dec.Outcome)
	}

	// MarkCompleted restarted the window, so jump past it
	now = now.Add(31 * time.Second)
	dec, err := g.TryBegin(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("TryBegin error: %v", err)
	}
	if dec.Outcome != Admitted {
		t.Fatalf("expected Admitted after expiry, got %v", dec.Outcome)
	}
}

func TestMemoryGate_ClearRemovesEntry(t *testing.T) {
	g := NewMemoryGate(30 * time.Second)
	ctx := context.Background()

	if _, err := g.TryBegin(ctx, "10.0.0.1"); err != nil {
		t.Fatalf("TryBegin error: %v", err)
	}
	if err := g.Clear(ctx, "10.0.0.1"); err != nil {
		t.Fatalf("Clear error: %v", err)
	}

	dec, _ := g.TryBegin(ctx, "10.0.0.1")
	if dec.Outcome != Admitted {
		t.Fatalf("expected Admitted after Clear, got %v", dec.Outcome)
	}
}

func TestMemoryGate_ConcurrentTryBeginAdmitsOne(t *testing.T) {
	g := NewMemoryGate(30 * time.Second)
	ctx := context.Background()

	const n = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dec, err := g.TryBegin(ctx, "race-key")
			if err != nil {
				t.Errorf("TryBegin error: %v", err)
				return
			}
			if dec.Outcome == Admitted {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != 1 {
		t.Fatalf("expected exactly 1 admitted, got %d", admitted)
	}
}
