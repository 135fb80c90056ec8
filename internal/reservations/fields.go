package reservations

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/kavidoi/reservas-laberinto/internal/airtable"
	"github.com/kavidoi/reservas-laberinto/internal/validation"
)

// BuildReservationFields turns a bound request into the cleaned field set
// sent to Airtable. Blank strings are elided (except comments), numeric
// attributes are coerced or dropped, and linked selections become singleton
// record-ID lists.
func BuildReservationFields(req *validation.ReservaRequest) airtable.Fields {
	f := airtable.Fields{}

	putString(f, "discountCode", req.DiscountCode)
	putString(f, "experienceType", req.ExperienceType)
	putString(f, "scheduledDate", req.ScheduledDate)
	putString(f, "scheduledTime", req.ScheduledTime)
	putString(f, "organizerName", req.OrganizerName)
	putString(f, "organizerEmail", req.OrganizerEmail)

	// Comments survive even when blank: "no allergies" is an answer.
	if req.Comments != nil {
		f[ReservationSchema["comments"]] = *req.Comments
	}

	putNumber(f, "groupSize", req.GroupSize)
	putNumber(f, "abonoAmount", req.AbonoAmount)
	putNumber(f, "adultsNoDrink", req.AdultsNoDrink)
	putNumber(f, "kidsUnder12", req.KidsUnder12)

	if req.AllAdultsDrink != nil {
		f[ReservationSchema["allAdultsDrink"]] = *req.AllAdultsDrink
	}
	if req.AllOver16 != nil {
		f[ReservationSchema["allOver16"]] = *req.AllOver16
	}

	putLink(f, "groupExperienceId", req.GroupExperienceID)
	putLink(f, "foodChoiceId", req.FoodChoiceID)

	return f
}

// BuildEventFields maps a date request onto the eventos table: the date and
// time collapse into one ISO 8601 start instant, and the experience type is
// a singleton link.
func BuildEventFields(req *validation.EventRequest) airtable.Fields {
	return airtable.Fields{
		EventSchema["startDateTime"]:  fmt.Sprintf("%sT%s:00.000Z", req.RequestedDate, req.RequestedTime),
		EventSchema["experienceType"]: []string{req.ExperienceTypeID},
	}
}

// ConfirmationFields is the update stamped on a reservation once its
// confirmation message has been handled.
func ConfirmationFields() airtable.Fields {
	return airtable.Fields{
		ReservationSchema["confirmationSent"]: true,
	}
}

func putString(f airtable.Fields, logical, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	f[ReservationSchema[logical]] = value
}

func putLink(f airtable.Fields, logical, recordID string) {
	if recordID == "" {
		return
	}
	f[ReservationSchema[logical]] = []string{recordID}
}

func putNumber(f airtable.Fields, logical string, value interface{}) {
	n, ok := toNumber(value)
	if !ok {
		if value != nil {
			log.Printf("[fields] dropping non-numeric value for %s: %v", logical, value)
		}
		return
	}
	f[ReservationSchema[logical]] = n
}

// toNumber coerces the loosely typed wizard values. encoding/json decodes
// numbers as float64; strings come from free-form inputs.
func toNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		n, err := v.Float64()
		return n, err == nil
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	default:
		return 0, false
	}
}
