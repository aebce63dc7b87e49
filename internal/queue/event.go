// Package queue defines the booking events exchanged over RabbitMQ together
// with their publisher and consumer.
package queue

import (
	"time"

	"github.com/iliyamo/tent-booking/internal/model"
)

// BookingConfirmedEvent is published once per booking, on the request that
// first confirms it.  It carries enough context for downstream consumers to
// log or notify without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID        uint64      `json:"booking_id"`
	CustomerID       uint64      `json:"customer_id"`
	CustomerUsername string      `json:"customer_username"`
	TentTypeID       uint64      `json:"tent_type_id"`
	TentTypeName     string      `json:"tent_type_name"`
	Location         string      `json:"location"`
	EventDate        string      `json:"event_date"`
	EndDate          string      `json:"end_date"`
	NumberOfGuests   uint32      `json:"number_of_guests"`
	TotalAmount      model.Cents `json:"total_amount"`
	ConfirmedBy      uint64      `json:"confirmed_by"`
	ConfirmedAt      string      `json:"confirmed_at"`
}

// NewBookingConfirmedEvent snapshots a confirmed booking.
func NewBookingConfirmedEvent(d model.BookingDetail) BookingConfirmedEvent {
	ev := BookingConfirmedEvent{
		BookingID:        d.ID,
		CustomerID:       d.CustomerID,
		CustomerUsername: d.Customer.Username,
		TentTypeID:       d.TentTypeID,
		TentTypeName:     d.TentType.Name,
		Location:         d.Location,
		EventDate:        d.EventDate.String(),
		EndDate:          d.EndDate.String(),
		NumberOfGuests:   d.NumberOfGuests,
		TotalAmount:      d.TotalAmount,
	}
	if d.ConfirmedBy != nil {
		ev.ConfirmedBy = *d.ConfirmedBy
	}
	if d.ConfirmedAt != nil {
		ev.ConfirmedAt = d.ConfirmedAt.UTC().Format(time.RFC3339)
	}
	return ev
}
