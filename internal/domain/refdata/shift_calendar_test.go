package refdata_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planfab/aps-engine/internal/domain/refdata"
)

func threeShifts() []refdata.Shift {
	return []refdata.Shift{
		{Name: "早班", StartTime: "08:00", EndTime: "16:00"},
		{Name: "中班", StartTime: "16:00", EndTime: "24:00"},
		{Name: "夜班", StartTime: "00:00", EndTime: "08:00"},
	}
}

func clockAt(day, hour, min int) time.Time {
	return time.Date(2026, 8, day, hour, min, 0, 0, time.Local)
}

func TestShiftCalendar_Containing(t *testing.T) {
	calendar := refdata.NewShiftCalendar(threeShifts())

	tests := []struct {
		name      string
		t         time.Time
		wantShift string
	}{
		{"morning", clockAt(21, 10, 0), "早班"},
		{"start of morning shift", clockAt(21, 8, 0), "早班"},
		{"evening", clockAt(21, 20, 0), "中班"},
		{"just before midnight", clockAt(21, 23, 59), "中班"},
		{"night", clockAt(21, 3, 0), "夜班"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shift, window, inside := calendar.Containing(tt.t)

			require.True(t, inside)
			assert.Equal(t, tt.wantShift, shift.Name)
			assert.True(t, window.Contains(tt.t))
		})
	}
}

func TestShiftCalendar_Containing_EndOf24Shift(t *testing.T) {
	// "24:00" means 00:00 of the next day; the half-open window excludes it
	calendar := refdata.NewShiftCalendar([]refdata.Shift{
		{Name: "中班", StartTime: "16:00", EndTime: "24:00"},
	})

	_, window, inside := calendar.Containing(clockAt(21, 20, 0))
	require.True(t, inside)
	assert.Equal(t, clockAt(22, 0, 0), window.End)

	_, _, inside = calendar.Containing(clockAt(22, 0, 0))
	assert.False(t, inside)
}

func TestShiftCalendar_Containing_NightShiftWrap(t *testing.T) {
	// 22:00-06:00 wraps past midnight; 03:00 belongs to the shift that
	// started the previous evening
	calendar := refdata.NewShiftCalendar([]refdata.Shift{
		{Name: "夜班", StartTime: "22:00", EndTime: "06:00"},
	})

	shift, window, inside := calendar.Containing(clockAt(22, 3, 0))

	require.True(t, inside)
	assert.Equal(t, "夜班", shift.Name)
	assert.Equal(t, clockAt(21, 22, 0), window.Start)
	assert.Equal(t, clockAt(22, 6, 0), window.End)
}

func TestShiftCalendar_NextStart(t *testing.T) {
	calendar := refdata.NewShiftCalendar(threeShifts())

	// Between shifts is impossible with full coverage, but a gap appears
	// with a partial calendar
	partial := refdata.NewShiftCalendar([]refdata.Shift{
		{Name: "早班", StartTime: "08:00", EndTime: "16:00"},
	})

	next, found := partial.NextStart(clockAt(21, 17, 0))
	require.True(t, found)
	assert.Equal(t, clockAt(22, 8, 0), next, "next morning shift")

	next, found = calendar.NextStart(clockAt(21, 7, 30))
	require.True(t, found)
	assert.Equal(t, clockAt(21, 8, 0), next)
}

func TestShiftCalendar_Empty(t *testing.T) {
	assert.True(t, refdata.NewShiftCalendar(nil).Empty())
	assert.False(t, refdata.NewShiftCalendar(threeShifts()).Empty())

	_, _, inside := refdata.NewShiftCalendar(nil).Containing(clockAt(21, 10, 0))
	assert.False(t, inside)
}
