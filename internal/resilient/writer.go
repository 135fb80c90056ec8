// Package resilient wraps external record-store writes in a bounded retry
// loop with exponential backoff, classifying failures into retryable and
// terminal before deciding to try again.
package resilient

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/kavidoi/reservas-laberinto/internal/airtable"
)

// Operation selects create vs update.
type Operation int

const (
	Create Operation = iota
	Update
)

func (op Operation) String() string {
	if op == Update {
		return "update"
	}
	return "create"
}

// RecordStore is the external store contract the writer retries against.
// *airtable.Client satisfies it.
type RecordStore interface {
	CreateRecord(ctx context.Context, tableID string, fields airtable.Fields) (string, error)
	UpdateRecord(ctx context.Context, tableID, recordID string, fields airtable.Fields) (string, error)
}

// ErrMissingRecordID: an update was requested without a target record ID.
// That is an input error, not a transient one; the store is never called.
var ErrMissingRecordID = errors.New("missing record id for update operation")

// TerminalError wraps a failure that retries cannot fix (a client error
// other than rate-limited/locked).
type TerminalError struct {
	Cause error
}

func (e *TerminalError) Error() string { return fmt.Sprintf("terminal write error: %v", e.Cause) }
func (e *TerminalError) Unwrap() error { return e.Cause }

// ExhaustedError wraps the last retryable failure after the retry budget
// ran out.
type ExhaustedError struct {
	Attempts int
	Cause    error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("write failed after %d attempts: %v", e.Attempts, e.Cause)
}
func (e *ExhaustedError) Unwrap() error { return e.Cause }

// IsRetryable reports whether another attempt could succeed. Client errors
// are terminal except 429 (rate limited) and 423 (locked); everything else,
// including server errors and network failures, is retryable.
func IsRetryable(err error) bool {
	var apiErr *airtable.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusLocked:
			return true
		}
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return false
		}
	}
	return true
}

// Writer performs one logical create-or-update with up to maxAttempts
// attempts and exponential backoff between them.
type Writer struct {
	store       RecordStore
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewWriter returns a writer with the reference policy: 4 attempts total
// (1 initial + 3 retries), 1s base delay doubling per retry.
func NewWriter(store RecordStore) *Writer {
	return &Writer{
		store:       store,
		maxAttempts: 4,
		baseDelay:   time.Second,
		sleep:       sleepCtx,
	}
}

// WithPolicy overrides the retry budget and base delay (tests mostly).
func (w *Writer) WithPolicy(maxAttempts int, baseDelay time.Duration) *Writer {
	w.maxAttempts = maxAttempts
	w.baseDelay = baseDelay
	return w
}

// Do runs the operation, returning the store-assigned record ID on success.
// Failures come back as *TerminalError, *ExhaustedError, or
// ErrMissingRecordID; callers classify with errors.As/Is.
func (w *Writer) Do(ctx context.Context, op Operation, tableID, recordID string, fields airtable.Fields) (string, error) {
	if op == Update && recordID == "" {
		return "", ErrMissingRecordID
	}

	delay := w.baseDelay
	var lastErr error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		id, err := w.attempt(ctx, op, tableID, recordID, fields)
		if err == nil {
			return id, nil
		}
		log.Printf("[writer] %s attempt %d failed: %v", op, attempt, err)

		if !IsRetryable(err) {
			return "", &TerminalError{Cause: err}
		}
		lastErr = err
		if attempt == w.maxAttempts {
			break
		}
		if err := w.sleep(ctx, delay); err != nil {
			return "", err
		}
		delay *= 2
	}
	return "", &ExhaustedError{Attempts: w.maxAttempts, Cause: lastErr}
}

func (w *Writer) attempt(ctx context.Context, op Operation, tableID, recordID string, fields airtable.Fields) (string, error) {
	if op == Update {
		return w.store.UpdateRecord(ctx, tableID, recordID, fields)
	}
	return w.store.CreateRecord(ctx, tableID, fields)
}

// sleepCtx blocks for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
