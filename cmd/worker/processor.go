package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/events"

	"github.com/kavidoi/reservas-laberinto/internal/reservations"
	"github.com/kavidoi/reservas-laberinto/internal/resilient"
)

// Processor consumes confirmation messages and stamps the reservation
// record. The stamp is a checkbox update, so redelivered messages are
// harmless.
type Processor struct {
	writer            *resilient.Writer
	reservationsTable string
}

// NewProcessor returns a processor writing through the given writer.
func NewProcessor(writer *resilient.Writer, reservationsTable string) *Processor {
	return &Processor{
		writer:            writer,
		reservationsTable: reservationsTable,
	}
}

// Handle receives an SQS batch event and processes each message.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			// Return error: Lambda will retry; repeated failures land the
			// message in the DLQ.
			log.Printf("[worker] error: %v", err)
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg ConfirmationMessage
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}
	if msg.RecordID == "" {
		return fmt.Errorf("confirmation message without record_id")
	}

	log.Printf("[worker] confirming record=%s corr=%s", msg.RecordID, msg.CorrelationID)

	_, err := p.writer.Do(ctx, resilient.Update, p.reservationsTable, msg.RecordID, reservations.ConfirmationFields())
	if err != nil {
		var terminal *resilient.TerminalError
		if errors.As(err, &terminal) {
			// The record is gone or rejects the stamp; retrying the
			// message cannot fix that, so swallow it instead of cycling
			// through the DLQ.
			log.Printf("[worker] terminal failure confirming record=%s: %v", msg.RecordID, err)
			return nil
		}
		return fmt.Errorf("confirm record %s: %w", msg.RecordID, err)
	}

	log.Printf("[worker] confirmed record=%s", msg.RecordID)
	return nil
}
