package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationDaysIsInclusive(t *testing.T) {
	start := NewDate(2030, time.July, 1)

	assert.Equal(t, 1, DurationDays(start, start))
	assert.Equal(t, 3, DurationDays(start, NewDate(2030, time.July, 3)))
	assert.Equal(t, 32, DurationDays(start, NewDate(2030, time.August, 1)))
}

func TestTotalAmount(t *testing.T) {
	price, err := ParseCents("150.00")
	require.NoError(t, err)

	total := TotalAmount(price, NewDate(2030, time.July, 1), NewDate(2030, time.July, 3))
	assert.Equal(t, "450.00", total.String())

	b := Booking{EventDate: NewDate(2030, time.July, 1), EndDate: NewDate(2030, time.July, 1)}
	b.Reprice(price)
	assert.Equal(t, Cents(15000), b.TotalAmount)
	assert.Equal(t, 1, b.DurationDays())
}

func TestBookingStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to BookingStatus
		ok       bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCompleted, StatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestParseBookingStatus(t *testing.T) {
	st, ok := ParseBookingStatus(" Confirmed ")
	require.True(t, ok)
	assert.Equal(t, StatusConfirmed, st)
	assert.Equal(t, "Confirmed", st.Label())

	_, ok = ParseBookingStatus("archived")
	assert.False(t, ok)
}

func TestStampConfirmationOnlyOnce(t *testing.T) {
	var b Booking
	first := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)

	require.True(t, b.StampConfirmation(7, first))
	require.False(t, b.StampConfirmation(8, first.Add(time.Hour)))

	require.NotNil(t, b.ConfirmedBy)
	assert.Equal(t, uint64(7), *b.ConfirmedBy)
	assert.True(t, b.ConfirmedAt.Equal(first))
}

func TestDurationDaysAcrossCenturies(t *testing.T) {
	start := NewDate(2030, time.July, 1)
	end := NewDate(2400, time.July, 1)

	assert.Equal(t, 135140, start.DaysUntil(end))
	assert.Equal(t, -135140, end.DaysUntil(start))
	assert.Equal(t, 135141, DurationDays(start, end))
	assert.Equal(t, 2910801, DurationDays(start, NewDate(9999, time.December, 31)))

	price, err := ParseCents("150.00")
	require.NoError(t, err)
	assert.Equal(t, "20271150.00", TotalAmount(price, start, end).String())
}
