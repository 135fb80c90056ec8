package gate

import (
	"context"
	"time"
)

// SentinelKey marks a request whose client could not be identified.
// The gate is bypassed for it: no admission control, no entry written.
const SentinelKey = "unknown-ip"

// Window is the rolling duplicate-prevention window.
const Window = 30 * time.Second

// State values for gate entries.
const (
	StateProcessing = "PROCESSING"
	StateCompleted  = "COMPLETED"
)

// Outcome of a TryBegin call.
type Outcome int

const (
	// Admitted: no live entry existed; a PROCESSING entry was created.
	Admitted Outcome = iota
	// RejectedProcessing: a submission from this key is already in flight.
	RejectedProcessing
	// RejectedCompleted: a submission from this key recently completed.
	RejectedCompleted
)

// Decision is the result of TryBegin. RecordID is set only for
// RejectedCompleted, carrying the previously created record's ID.
type Decision struct {
	Outcome  Outcome
	RecordID string
}

// Gate enforces at most one in-flight or recently-completed submission per
// client key within the rolling window. Implementations must make the
// check-and-set in TryBegin atomic per key.
type Gate interface {
	// TryBegin admits the key or rejects it based on the live entry.
	// Callers must eventually call MarkCompleted or Clear for every
	// Admitted key.
	TryBegin(ctx context.Context, key string) (Decision, error)
	// MarkCompleted overwrites the entry with COMPLETED{recordID} and
	// restarts the window.
	MarkCompleted(ctx context.Context, key, recordID string) error
	// Clear removes the entry unconditionally, so a failed request never
	// leaves a dangling PROCESSING marker.
	Clear(ctx context.Context, key string) error
}
