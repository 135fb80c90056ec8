package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/kavidoi/reservas-laberinto/internal/reservations"
	"github.com/kavidoi/reservas-laberinto/internal/resilient"
	"github.com/kavidoi/reservas-laberinto/internal/validation"
)

// createEventHandler handles date requests for group experiences: a new
// record in the eventos table. Not gated; the writer still masks transient
// store failures.
func createEventHandler(cfg HandlerConfig, v *validatorv10.Validate) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.EventRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			cfg.Metrics.EmitSubmissionOutcome(ctx, "create-event", "validation_error")
			return
		}

		fields := reservations.BuildEventFields(&req)

		recordID, err := cfg.Writer.Do(ctx, resilient.Create, cfg.EventsTable, "", fields)
		if err != nil {
			var terminal *resilient.TerminalError
			if errors.As(err, &terminal) {
				cfg.Metrics.EmitSubmissionOutcome(ctx, "create-event", "terminal")
				c.JSON(http.StatusBadRequest, gin.H{
					"message": "Error al enviar la solicitud de fecha.",
					"error":   errorDetail(cfg, err),
				})
				return
			}
			cfg.Metrics.EmitSubmissionOutcome(ctx, "create-event", "exhausted")
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Error al enviar la solicitud de fecha.",
				"error":   errorDetail(cfg, err),
			})
			return
		}

		cfg.Metrics.EmitSubmissionOutcome(ctx, "create-event", "success")
		c.JSON(http.StatusOK, gin.H{
			"message":  "Solicitud de fecha enviada con éxito!",
			"recordId": recordID,
		})
	}
}
