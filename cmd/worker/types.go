package main

// ConfirmationMessage is the payload sent from API -> SQS -> worker after a
// successful submission.
type ConfirmationMessage struct {
	RecordID      string `json:"record_id"`
	ClientKey     string `json:"client_key,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}
