// Package reservations maps inbound wizard payloads onto the Airtable
// column layout. Column names live in one static table per record type so a
// schema mismatch is a startup configuration error, not a runtime surprise.
package reservations

import "fmt"

// Schema maps logical field names to Airtable column names.
type Schema map[string]string

// ReservationSchema covers the reservations table.
var ReservationSchema = Schema{
	"discountCode":      "Codigo Descuento",
	"experienceType":    "Tipo Experiencia",
	"scheduledDate":     "Fecha Agendada", // YYYY-MM-DD
	"scheduledTime":     "Hora Agendada",  // HH:MM
	"groupSize":         "Tamaño Grupo",
	"comments":          "Comentarios Alergias",
	"abonoAmount":       "Abono Pagado",
	"organizerName":     "Nombre Organizador",
	"organizerEmail":    "Email Organizador",
	"allAdultsDrink":    "Todos Mayores Edad/Beben",
	"allOver16":         "Todos Mayores 16",
	"adultsNoDrink":     "Adultos No Beben",
	"kidsUnder12":       "Niños Menores 12",
	"groupExperienceId": "Experiencia Grupal Seleccionada",
	"foodChoiceId":      "Comida Adicional Seleccionada",
	"confirmationSent":  "Confirmación Enviada",
}

// EventSchema covers the eventos (date request) table.
var EventSchema = Schema{
	"startDateTime":  "Fecha y hora de inicio",
	"experienceType": "Experiencia",
}

// numericFields are coerced to numbers during cleaning; values that do not
// coerce are dropped.
var numericFields = map[string]bool{
	"groupSize":     true,
	"abonoAmount":   true,
	"adultsNoDrink": true,
	"kidsUnder12":   true,
}

// Validate checks a schema for empty names and duplicate column mappings.
func (s Schema) Validate() error {
	seen := map[string]string{}
	for logical, column := range s {
		if logical == "" || column == "" {
			return fmt.Errorf("schema: empty mapping (logical %q, column %q)", logical, column)
		}
		if prev, ok := seen[column]; ok {
			return fmt.Errorf("schema: column %q mapped by both %q and %q", column, prev, logical)
		}
		seen[column] = logical
	}
	return nil
}

// ValidateSchemas is called at startup; a broken mapping refuses to boot.
func ValidateSchemas() error {
	if err := ReservationSchema.Validate(); err != nil {
		return fmt.Errorf("reservation schema: %w", err)
	}
	if err := EventSchema.Validate(); err != nil {
		return fmt.Errorf("event schema: %w", err)
	}
	return nil
}
