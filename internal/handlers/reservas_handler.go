package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/kavidoi/reservas-laberinto/internal/gate"
	"github.com/kavidoi/reservas-laberinto/internal/reservations"
	"github.com/kavidoi/reservas-laberinto/internal/resilient"
	"github.com/kavidoi/reservas-laberinto/internal/validation"
)

// submitReservaHandler implements the gated create-or-update submission
// flow: gate check, bind/validate, field mapping, resilient write, gate
// update, response.
func submitReservaHandler(cfg HandlerConfig, v *validatorv10.Validate) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		key := clientKey(c)
		gated := key != gate.SentinelKey
		if !gated {
			log.Printf("[submit] could not determine client key, gate bypassed")
		}

		if gated {
			dec, err := cfg.Gate.TryBegin(ctx, key)
			if err != nil {
				log.Printf("[submit] gate check failed for %s: %v", key, err)
				cfg.Metrics.EmitSubmissionOutcome(ctx, "submit-reserva", "gate_error")
				c.JSON(http.StatusInternalServerError, gin.H{
					"message": "Error al procesar la solicitud.",
					"error":   errorDetail(cfg, err),
				})
				return
			}
			switch dec.Outcome {
			case gate.RejectedProcessing:
				log.Printf("[submit] duplicate submission (processing) for %s", key)
				cfg.Metrics.EmitSubmissionOutcome(ctx, "submit-reserva", "gate_conflict")
				c.JSON(http.StatusTooManyRequests, gin.H{
					"message": "Una solicitud ya está en proceso, por favor espera.",
				})
				return
			case gate.RejectedCompleted:
				log.Printf("[submit] duplicate submission (completed) for %s, record %s", key, dec.RecordID)
				cfg.Metrics.EmitSubmissionOutcome(ctx, "submit-reserva", "gate_conflict")
				c.JSON(http.StatusTooManyRequests, gin.H{
					"message":  fmt.Sprintf("Ya se registró una reserva recientemente desde esta conexión. ID: %s", dec.RecordID),
					"recordId": dec.RecordID,
				})
				return
			}
		}

		var req validation.ReservaRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400; drop the gate marker so
			// the key is not locked out for a request that never ran.
			if gated {
				_ = cfg.Gate.Clear(ctx, key)
			}
			cfg.Metrics.EmitSubmissionOutcome(ctx, "submit-reserva", "validation_error")
			return
		}

		fields := reservations.BuildReservationFields(&req)

		op := resilient.Create
		if req.RecordIDToUpdate != "" {
			op = resilient.Update
		}

		recordID, err := cfg.Writer.Do(ctx, op, cfg.ReservationsTable, req.RecordIDToUpdate, fields)
		if err != nil {
			if gated {
				_ = cfg.Gate.Clear(ctx, key)
			}
			var terminal *resilient.TerminalError
			if errors.Is(err, resilient.ErrMissingRecordID) || errors.As(err, &terminal) {
				cfg.Metrics.EmitSubmissionOutcome(ctx, "submit-reserva", "terminal")
				c.JSON(http.StatusBadRequest, gin.H{
					"message": "Error de validación con Airtable.",
					"error":   errorDetail(cfg, err),
				})
				return
			}
			cfg.Metrics.EmitSubmissionOutcome(ctx, "submit-reserva", "exhausted")
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Error al procesar la solicitud.",
				"error":   errorDetail(cfg, err),
			})
			return
		}

		if gated {
			if err := cfg.Gate.MarkCompleted(ctx, key, recordID); err != nil {
				// The write already happened; a gate failure here only
				// weakens dedup for this key, so log and move on.
				log.Printf("[submit] mark completed failed for %s: %v", key, err)
			}
		}

		enqueueConfirmation(cfg, c, recordID, key)
		cfg.Metrics.EmitSubmissionOutcome(ctx, "submit-reserva", "success")

		verb := "creada"
		if op == resilient.Update {
			verb = "actualizada"
		}
		c.JSON(http.StatusOK, gin.H{
			"message":  fmt.Sprintf("Reserva %s con éxito!", verb),
			"recordId": recordID,
		})
	}
}

// enqueueConfirmation fires the post-success confirmation message. Failures
// are logged, never surfaced: the reservation itself already succeeded.
func enqueueConfirmation(cfg HandlerConfig, c *gin.Context, recordID, key string) {
	if cfg.Publisher == nil {
		return
	}
	payload, _ := json.Marshal(map[string]string{
		"record_id":      recordID,
		"client_key":     key,
		"correlation_id": uuid.NewString(),
	})
	attrs := map[string]string{
		"record_id":  recordID,
		"request_id": c.GetHeader("X-Request-Id"),
	}
	if err := cfg.Publisher.SendConfirmationMessage(c.Request.Context(), string(payload), attrs); err != nil {
		log.Printf("[submit] confirmation enqueue failed for %s: %v", recordID, err)
	}
}
