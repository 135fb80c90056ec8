package resilient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kavidoi/reservas-laberinto/internal/airtable"
)

// scriptedStore returns one queued error per attempt, then succeeds.
type scriptedStore struct {
	errs        []error
	createCalls int
	updateCalls int
}

func (s *scriptedStore) next() error {
	if len(s.errs) == 0 {
		return nil
	}
	err := s.errs[0]
	s.errs = s.errs[1:]
	return err
}

func (s *scriptedStore) CreateRecord(ctx context.Context, tableID string, fields airtable.Fields) (string, error) {
	s.createCalls++
	if err := s.next(); err != nil {
		return "", err
	}
	return "recCreated1", nil
}

func (s *scriptedStore) UpdateRecord(ctx context.Context, tableID, recordID string, fields airtable.Fields) (string, error) {
	s.updateCalls++
	if err := s.next(); err != nil {
		return "", err
	}
	return recordID, nil
}

// newTestWriter records requested sleep durations instead of sleeping.
func newTestWriter(store RecordStore) (*Writer, *[]time.Duration) {
	w := NewWriter(store)
	var slept []time.Duration
	w.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return w, &slept
}

func TestDo_UpdateWithoutRecordID(t *testing.T) {
	store := &scriptedStore{}
	w, _ := newTestWriter(store)

	_, err := w.Do(context.Background(), Update, "tbl1", "", airtable.Fields{})
	if !errors.Is(err, ErrMissingRecordID) {
		t.Fatalf("expected ErrMissingRecordID, got %v", err)
	}
	if store.createCalls+store.updateCalls != 0 {
		t.Fatalf("store must not be called, got %d calls", store.createCalls+store.updateCalls)
	}
}

func TestDo_SucceedsAfterRetryableFailures(t *testing.T) {
	store := &scriptedStore{errs: []error{
		&airtable.APIError{StatusCode: 429, Message: "rate limited"},
		&airtable.APIError{StatusCode: 503, Message: "unavailable"},
	}}
	w, slept := newTestWriter(store)

	id, err := w.Do(context.Background(), Create, "tbl1", "", airtable.Fields{"A": 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected a record id")
	}
	if store.createCalls != 3 {
		t.Fatalf("expected 3 attempts, got %d", store.createCalls)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(*slept) != len(want) {
		t.Fatalf("expected %d backoff sleeps, got %d", len(want), len(*slept))
	}
	for i, d := range want {
		if (*slept)[i] != d {
			t.Fatalf("sleep %d: expected %v, got %v", i, d, (*slept)[i])
		}
	}
}

func TestDo_TerminalOnNonRetryableClientError(t *testing.T) {
	store := &scriptedStore{errs: []error{
		&airtable.APIError{StatusCode: 422, Type: "INVALID_VALUE_FOR_COLUMN", Message: "bad field"},
	}}
	w, slept := newTestWriter(store)

	_, err := w.Do(context.Background(), Create, "tbl1", "", airtable.Fields{})
	var terminal *TerminalError
	if !errors.As(err, &terminal) {
		t.Fatalf("expected TerminalError, got %v", err)
	}
	if store.createCalls != 1 {
		t.Fatalf("expected exactly 1 attempt, got %d", store.createCalls)
	}
	if len(*slept) != 0 {
		t.Fatalf("expected no backoff, got %v", *slept)
	}
}

func TestDo_ExhaustsRetryBudget(t *testing.T) {
	store := &scriptedStore{errs: []error{
		&airtable.APIError{StatusCode: 500, Message: "boom"},
		&airtable.APIError{StatusCode: 500, Message: "boom"},
		&airtable.APIError{StatusCode: 500, Message: "boom"},
		&airtable.APIError{StatusCode: 500, Message: "boom"},
	}}
	w, slept := newTestWriter(store)

	_, err := w.Do(context.Background(), Create, "tbl1", "", airtable.Fields{})
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
	if exhausted.Attempts != 4 {
		t.Fatalf("expected 4 attempts recorded, got %d", exhausted.Attempts)
	}
	if store.createCalls != 4 {
		t.Fatalf("expected 4 attempts (1 initial + 3 retries), got %d", store.createCalls)
	}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	if len(*slept) != len(want) {
		t.Fatalf("expected %d sleeps, got %d", len(want), len(*slept))
	}
	for i, d := range want {
		if (*slept)[i] != d {
			t.Fatalf("sleep %d: expected %v, got %v", i, d, (*slept)[i])
		}
	}
}

func TestDo_LockedStatusIsRetryable(t *testing.T) {
	store := &scriptedStore{errs: []error{
		&airtable.APIError{StatusCode: 423, Message: "locked"},
	}}
	w, _ := newTestWriter(store)

	id, err := w.Do(context.Background(), Update, "tbl1", "rec42", airtable.Fields{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "rec42" {
		t.Fatalf("expected rec42, got %q", id)
	}
	if store.updateCalls != 2 {
		t.Fatalf("expected 2 attempts, got %d", store.updateCalls)
	}
}

func TestIsRetryable_NetworkError(t *testing.T) {
	if !IsRetryable(errors.New("dial tcp: connection refused")) {
		t.Fatal("network errors must be retryable")
	}
}
