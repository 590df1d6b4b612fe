package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

func TestValidateAlternateSlots(t *testing.T) {
	out, err := ValidateAlternateSlots(nil)
	assert.NoError(t, err)
	assert.Empty(t, out)

	out, err = ValidateAlternateSlots([]models.TimeSlot{
		{Date: "2025-02-01", Time: "9:00"},
		{Date: "2025-02-02", Time: "10:00"},
		{Date: "2025-02-03", Time: "11:30:00"},
	})
	assert.NoError(t, err)
	assert.Equal(t, models.TimeSlot{Date: "2025-02-01", Time: "09:00:00"}, out[0])
	assert.Equal(t, "11:30:00", out[2].Time)

	_, err = ValidateAlternateSlots([]models.TimeSlot{{Date: "2025-02-01", Time: "09:00"}})
	assert.EqualError(t, err, "alternate slots must contain 0 or 3 entries, got 1")

	_, err = ValidateAlternateSlots([]models.TimeSlot{
		{Date: "2025-02-01", Time: "09:00"},
		{Date: "2025-02-31", Time: "10:00"},
		{Date: "2025-02-03", Time: "11:00"},
	})
	assert.Error(t, err)
}

func TestDaySlots(t *testing.T) {
	slots := DaySlots()
	assert.Len(t, slots, 9)
	assert.Equal(t, "09:00:00", slots[0])
	assert.Equal(t, "17:00:00", slots[len(slots)-1])
}

func TestIsFuture(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.True(t, IsFuture("2025-01-01", "12:30:00", now))
	assert.True(t, IsFuture("2025-01-01", "11:57:00", now))
	assert.False(t, IsFuture("2025-01-01", "11:50:00", now))
}
