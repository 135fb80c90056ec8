package airtable

import "fmt"

// APIError is a status-coded failure returned by the Airtable API.
// The status code is what callers classify on, so it stays a first-class
// field instead of being folded into the message.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("airtable: %s (status %d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("airtable: status %d: %s", e.StatusCode, e.Message)
}
