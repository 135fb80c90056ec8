package validation

// ReservaRequest is the payload for POST /api/submit-reserva.
// Numeric attributes arrive as numbers or strings depending on the wizard
// step that produced them, so they stay untyped here and are coerced during
// field mapping (invalid values are dropped, not rejected).
type ReservaRequest struct {
	RecordIDToUpdate string `json:"recordIdToUpdate,omitempty"` // present only for updates

	DiscountCode   string `json:"discountCode,omitempty"`
	ExperienceType string `json:"experienceType,omitempty"`
	ScheduledDate  string `json:"scheduledDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ScheduledTime  string `json:"scheduledTime,omitempty" validate:"omitempty,datetime=15:04"`

	GroupSize   interface{} `json:"groupSize,omitempty"`
	AbonoAmount interface{} `json:"abonoAmount,omitempty"` // informational only, no payment processing

	// Comments is a pointer so an explicitly sent empty string survives
	// field cleaning (allergy notes may legitimately be blank).
	Comments *string `json:"comments,omitempty"`

	OrganizerName  string `json:"organizerName,omitempty"`
	OrganizerEmail string `json:"organizerEmail,omitempty" validate:"omitempty,email"`

	AllAdultsDrink *bool       `json:"allAdultsDrink,omitempty"`
	AllOver16      *bool       `json:"allOver16,omitempty"`
	AdultsNoDrink  interface{} `json:"adultsNoDrink,omitempty"`
	KidsUnder12    interface{} `json:"kidsUnder12,omitempty"`

	// Linked record selections; sent as Airtable record IDs.
	GroupExperienceID string `json:"groupExperienceId,omitempty"`
	FoodChoiceID      string `json:"foodChoiceId,omitempty"`
}

// EventRequest is the payload for POST /api/create-event (date request for
// a group experience).
type EventRequest struct {
	ExperienceTypeID string `json:"experienceTypeId" validate:"required"`
	RequestedDate    string `json:"requestedDate" validate:"required,datetime=2006-01-02"`
	RequestedTime    string `json:"requestedTime" validate:"required,datetime=15:04"`
	RequesterName    string `json:"requesterName,omitempty"`
	RequesterEmail   string `json:"requesterEmail,omitempty" validate:"omitempty,email"`
}
