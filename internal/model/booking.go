package model

import (
	"strings"
	"time"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

var statusLabels = map[BookingStatus]string{
	StatusPending:   "Pending",
	StatusConfirmed: "Confirmed",
	StatusCancelled: "Cancelled",
	StatusCompleted: "Completed",
}

// bookingTransitions is the intended lifecycle.  Cancelled and completed
// are terminal.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// ParseBookingStatus returns the status named by s.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	st := BookingStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}

func (s BookingStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the display name rendered as status_display.
func (s BookingStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// CanTransitionTo reports whether moving from s to next follows the
// lifecycle.  Staying in the same status is not a transition.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Booking is a customer's rental of one tent type over an inclusive range
// of calendar days.
//
// Fields:
//
//	ID                  – primary key identifier.
//	CustomerID          – user who owns the booking.  Never changes.
//	TentTypeID          – rented tent type.
//	Location            – where the tent is set up.
//	EventDate           – first rental day.
//	EndDate             – last rental day, never before EventDate.
//	NumberOfGuests      – party size, at least 1.
//	SpecialRequirements – optional free text.
//	Status              – lifecycle state.
//	TotalAmount         – PricePerDay × DurationDays at the last repricing.
//	ConfirmedBy         – admin who first confirmed the booking.
//	ConfirmedAt         – when the booking was first confirmed.
//	CreatedAt           – creation timestamp.
//	UpdatedAt           – last update timestamp.
type Booking struct {
	ID                  uint64        // bookings.id
	CustomerID          uint64        // bookings.customer_id
	TentTypeID          uint64        // bookings.tent_type_id
	Location            string        // bookings.location
	EventDate           Date          // bookings.event_date
	EndDate             Date          // bookings.end_date
	NumberOfGuests      uint32        // bookings.number_of_guests
	SpecialRequirements *string       // bookings.special_requirements (nullable)
	Status              BookingStatus // bookings.status
	TotalAmount         Cents         // bookings.total_amount_cents
	ConfirmedBy         *uint64       // bookings.confirmed_by (nullable)
	ConfirmedAt         *time.Time    // bookings.confirmed_at (nullable)
	CreatedAt           time.Time     // bookings.created_at
	UpdatedAt           time.Time     // bookings.updated_at
}

// DurationDays counts rental days with both ends included.
func DurationDays(start, end Date) int { return start.DaysUntil(end) + 1 }

// TotalAmount is the price of renting at pricePerDay from start to end.
func TotalAmount(pricePerDay Cents, start, end Date) Cents {
	return pricePerDay.Times(DurationDays(start, end))
}

func (b Booking) DurationDays() int { return DurationDays(b.EventDate, b.EndDate) }

// Reprice recomputes TotalAmount from the current dates.
func (b *Booking) Reprice(pricePerDay Cents) {
	b.TotalAmount = TotalAmount(pricePerDay, b.EventDate, b.EndDate)
}

// Confirmed reports whether the confirmation stamp has been recorded.
func (b Booking) Confirmed() bool { return b.ConfirmedAt != nil }

// StampConfirmation records the first confirmation.  Later calls are no-ops.
func (b *Booking) StampConfirmation(adminID uint64, at time.Time) bool {
	if b.Confirmed() {
		return false
	}
	id := adminID
	ts := at.UTC()
	b.ConfirmedBy = &id
	b.ConfirmedAt = &ts
	return true
}

// BookingDetail is a booking joined with the rows it references.
type BookingDetail struct {
	Booking
	Customer  User
	TentType  TentType
	Confirmer *User
}

// BookingScope narrows which bookings a query may see.  The zero value sees
// every booking.  The repository turns it into the WHERE clause, so a row
// outside the scope reads exactly like a missing row.
type BookingScope struct {
	CustomerID uint64
	Status     BookingStatus
}

// BookingStats aggregates bookings across all customers.  Revenue counts
// confirmed and completed bookings only.
type BookingStats struct {
	Total     int64
	Pending   int64
	Confirmed int64
	Cancelled int64
	Completed int64
	Revenue   Cents
}
