package scheduling

import (
	"fmt"
	"time"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

// Bookable hours of the trial calendar, in UTC
const (
	FirstSlotHour = 9
	LastSlotHour  = 17
)

// GraceWindow is how far in the past a newly scheduled slot may be
const GraceWindow = 5 * time.Minute

// ValidateAlternateSlots checks an admin reschedule offer: either no slots (the attorney
// picks freely) or exactly three, each a parseable date and time. Times are normalized in place.
func ValidateAlternateSlots(slots []models.TimeSlot) ([]models.TimeSlot, error) {
	if len(slots) != 0 && len(slots) != 3 {
		return nil, fmt.Errorf("alternate slots must contain 0 or 3 entries, got %d", len(slots))
	}
	out := make([]models.TimeSlot, 0, len(slots))
	for i, s := range slots {
		norm, err := NormalizeSlot(s)
		if err != nil {
			return nil, fmt.Errorf("alternate slot %d: %v", i+1, err)
		}
		out = append(out, norm)
	}
	return out, nil
}

// NormalizeSlot validates a slot and normalizes its time to HH:MM:SS
func NormalizeSlot(s models.TimeSlot) (models.TimeSlot, error) {
	ts, err := ParseSlot(s.Date, s.Time)
	if err != nil {
		return models.TimeSlot{}, err
	}
	return models.TimeSlot{Date: ts.Format(DateLayout), Time: ts.Format(TimeLayout)}, nil
}

// DaySlots lists the hourly bookable times of a day
func DaySlots() []string {
	out := make([]string, 0, LastSlotHour-FirstSlotHour+1)
	for h := FirstSlotHour; h <= LastSlotHour; h++ {
		out = append(out, fmt.Sprintf("%02d:00:00", h))
	}
	return out
}

// IsFuture reports whether the UTC slot is later than now minus the grace window
func IsFuture(date, clock string, now time.Time) bool {
	ts, err := ParseSlot(date, clock)
	if err != nil {
		return false
	}
	return ts.After(now.Add(-GraceWindow))
}
