package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"github.com/kavidoi/reservas-laberinto/internal/airtable"
	"github.com/kavidoi/reservas-laberinto/internal/aws"
	"github.com/kavidoi/reservas-laberinto/internal/gate"
	"github.com/kavidoi/reservas-laberinto/internal/handlers"
	"github.com/kavidoi/reservas-laberinto/internal/reservations"
	"github.com/kavidoi/reservas-laberinto/internal/resilient"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterRoutes(r, cfg)

	return r
}

func main() {
	apiKey := os.Getenv("AIRTABLE_API_KEY")
	baseID := os.Getenv("AIRTABLE_BASE_ID")
	reservationsTable := os.Getenv("AIRTABLE_TABLE_ID")
	eventsTable := os.Getenv("AIRTABLE_EVENTS_TABLE_ID")
	if apiKey == "" || baseID == "" || reservationsTable == "" || eventsTable == "" {
		log.Fatal("missing Airtable configuration (AIRTABLE_API_KEY, AIRTABLE_BASE_ID, AIRTABLE_TABLE_ID, AIRTABLE_EVENTS_TABLE_ID)")
	}

	if err := reservations.ValidateSchemas(); err != nil {
		log.Fatalf("invalid field schema: %v", err)
	}

	clients, err := aws.NewClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	store := airtable.NewClient(apiKey, baseID)

	// Single-process memory gate by default; GATE_TABLE switches to the
	// DynamoDB gate so multiple instances share dedup state.
	var g gate.Gate = gate.NewMemoryGate(gate.Window)
	if table := os.Getenv("GATE_TABLE"); table != "" {
		g = gate.NewDynamoGate(clients.DynamoDB, table, gate.Window)
	}

	var publisher *aws.Publisher
	if queueURL := os.Getenv("CONFIRMATIONS_QUEUE_URL"); queueURL != "" {
		publisher = aws.NewPublisher(clients.SQS, queueURL)
	}

	cfg := handlers.HandlerConfig{
		Gate:              g,
		Writer:            resilient.NewWriter(store),
		Lister:            store,
		ReservationsTable: reservationsTable,
		EventsTable:       eventsTable,
		Publisher:         publisher,
		Metrics:           aws.NewMetricsEmitter(clients.CloudWatch),
		NonProduction:     os.Getenv("APP_ENV") != "production",
	}

	r := setupRouter(cfg)

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		log.Printf("running local server on %s", addr)
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
