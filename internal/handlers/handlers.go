package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kavidoi/reservas-laberinto/internal/airtable"
	"github.com/kavidoi/reservas-laberinto/internal/aws"
	"github.com/kavidoi/reservas-laberinto/internal/gate"
	"github.com/kavidoi/reservas-laberinto/internal/resilient"
	"github.com/kavidoi/reservas-laberinto/internal/validation"
)

// RecordLister is the read side of the record store, used by the options
// (dropdown) feed.
type RecordLister interface {
	ListRecords(ctx context.Context, tableID string, opts airtable.ListOptions) ([]airtable.Record, error)
}

// HandlerConfig groups dependencies for the reservation handlers.
type HandlerConfig struct {
	Gate              gate.Gate
	Writer            *resilient.Writer
	Lister            RecordLister
	ReservationsTable string
	EventsTable       string
	Publisher         *aws.Publisher      // nil disables confirmation enqueue
	Metrics           *aws.MetricsEmitter // nil disables metrics
	NonProduction     bool                // include raw error detail in responses
}

// RegisterRoutes wires the reservation API routes.
func RegisterRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()

	r.POST("/api/submit-reserva", submitReservaHandler(cfg, v))
	r.POST("/api/create-event", createEventHandler(cfg, v))
	r.GET("/api/options", optionsHandler(cfg))
}

// clientKey picks the first available transport address hint, falling back
// to the sentinel that bypasses the gate.
func clientKey(c *gin.Context) string {
	for _, h := range []string{"x-nf-client-connection-ip", "x-vercel-forwarded-for"} {
		if v := c.GetHeader(h); v != "" {
			return v
		}
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return gate.SentinelKey
}

// errorDetail hides raw causes in production responses.
func errorDetail(cfg HandlerConfig, err error) string {
	if cfg.NonProduction {
		return err.Error()
	}
	return "Ocurrió un error interno."
}
