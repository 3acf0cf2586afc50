package forms

import (
	"github.com/msto63/formplan/foundation/core/validation"
)

// Reference entries read by the booking form
const (
	RefRooms          = "rooms"
	RefMaxBookingDays = "max_booking_days"
)

// BookingPlan validates a room booking. The date pair reports under the
// composite "dates" key; the room list and the maximum stay come from refs
// when present.
func BookingPlan(_ map[string]any, refs map[string]any) ([]validation.RawStep, error) {
	steps := []validation.RawStep{
		{
			"field":    "uid",
			"method":   "validateNumberInRange",
			"args":     []any{1, 20000},
			"required": true,
		},
		{
			"field":    "dates",
			"fields":   []string{"dates_start", "dates_end"},
			"method":   "validateDateRange",
			"args":     []any{maxDays(refs)},
			"required": true,
		},
	}

	if rooms, ok := validation.Lookup(refs, RefRooms); ok {
		steps = append(steps, validation.RawStep{
			"field":    "room",
			"method":   "validateInSet",
			"args":     []any{rooms},
			"required": true,
		})
	}

	return append(steps, validation.RawStep{
		"field":  "notes",
		"method": "validateOptional",
	}), nil
}

func maxDays(refs map[string]any) any {
	if v, ok := validation.Lookup(refs, RefMaxBookingDays); ok {
		return v
	}
	return 0
}
