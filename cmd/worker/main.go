package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/kavidoi/reservas-laberinto/internal/airtable"
	"github.com/kavidoi/reservas-laberinto/internal/resilient"
)

func main() {
	apiKey := os.Getenv("AIRTABLE_API_KEY")
	baseID := os.Getenv("AIRTABLE_BASE_ID")
	reservationsTable := os.Getenv("AIRTABLE_TABLE_ID")
	if apiKey == "" || baseID == "" || reservationsTable == "" {
		log.Fatal("missing Airtable configuration (AIRTABLE_API_KEY, AIRTABLE_BASE_ID, AIRTABLE_TABLE_ID)")
	}

	store := airtable.NewClient(apiKey, baseID)
	p := NewProcessor(resilient.NewWriter(store), reservationsTable)

	// If RUN_LOCAL=true, simulate a single SQS event for local testing.
	if os.Getenv("RUN_LOCAL") == "true" {
		testBody := os.Getenv("LOCAL_SQS_BODY")
		if testBody == "" {
			testBody = `{"record_id":"recLocalTest1","correlation_id":"local-corr-1"}`
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{
				{Body: testBody},
			},
		}
		if err := p.Handle(context.Background(), event); err != nil {
			log.Fatalf("local handler error: %v", err)
		}
		return
	}

	lambda.Start(p.Handle)
}
