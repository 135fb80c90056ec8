package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation
// registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// Scheduling info only makes sense as a pair: a date without a time
	// (or the reverse) cannot be written to the scheduled slot.
	v.RegisterStructValidation(reservaStructValidation, ReservaRequest{})

	return v
}

func reservaStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(ReservaRequest)

	if (req.ScheduledDate == "") != (req.ScheduledTime == "") {
		sl.ReportError(req.ScheduledTime, "scheduledTime", "ScheduledTime", "scheduled_pair", "")
	}
}
