package handler

import (
	"time"

	"github.com/iliyamo/tent-booking/internal/model"
)

type tentTypeResp struct {
	ID          uint64      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Capacity    uint32      `json:"capacity"`
	PricePerDay model.Cents `json:"price_per_day"`
	IsAvailable bool        `json:"is_available"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func newTentTypeResp(t model.TentType) tentTypeResp {
	return tentTypeResp{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Capacity:    t.Capacity,
		PricePerDay: t.PricePerDay,
		IsAvailable: t.IsAvailable,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// bookingResp is the full booking detail, with the tent type nested and
// customer/confirmer fields flattened next to their ids.
type bookingResp struct {
	ID                  uint64              `json:"id"`
	TentType            tentTypeResp        `json:"tent_type"`
	CustomerName        string              `json:"customer_name"`
	CustomerUsername    string              `json:"customer_username"`
	CustomerEmail       string              `json:"customer_email"`
	CustomerPhone       *string             `json:"customer_phone"`
	DurationDays        int                 `json:"duration_days"`
	StatusDisplay       string              `json:"status_display"`
	ConfirmedByName     *string             `json:"confirmed_by_name"`
	Location            string              `json:"location"`
	EventDate           model.Date          `json:"event_date"`
	EndDate             model.Date          `json:"end_date"`
	NumberOfGuests      uint32              `json:"number_of_guests"`
	SpecialRequirements *string             `json:"special_requirements"`
	Status              model.BookingStatus `json:"status"`
	TotalAmount         model.Cents         `json:"total_amount"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
	Customer            uint64              `json:"customer"`
	ConfirmedBy         *uint64             `json:"confirmed_by"`
	ConfirmedAt         *time.Time          `json:"confirmed_at"`
}

func newBookingResp(d model.BookingDetail) bookingResp {
	r := bookingResp{
		ID:                  d.ID,
		TentType:            newTentTypeResp(d.TentType),
		CustomerName:        d.Customer.FullName(),
		CustomerUsername:    d.Customer.Username,
		CustomerEmail:       d.Customer.Email,
		CustomerPhone:       d.Customer.PhoneNumber,
		DurationDays:        d.DurationDays(),
		StatusDisplay:       d.Status.Label(),
		Location:            d.Location,
		EventDate:           d.EventDate,
		EndDate:             d.EndDate,
		NumberOfGuests:      d.NumberOfGuests,
		SpecialRequirements: d.SpecialRequirements,
		Status:              d.Status,
		TotalAmount:         d.TotalAmount,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
		Customer:            d.CustomerID,
		ConfirmedBy:         d.ConfirmedBy,
		ConfirmedAt:         d.ConfirmedAt,
	}
	if d.Confirmer != nil {
		name := d.Confirmer.FullName()
		r.ConfirmedByName = &name
	}
	return r
}

type bookingListItem struct {
	ID               uint64              `json:"id"`
	CustomerName     string              `json:"customer_name"`
	CustomerUsername string              `json:"customer_username"`
	TentTypeName     string              `json:"tent_type_name"`
	Location         string              `json:"location"`
	EventDate        model.Date          `json:"event_date"`
	EndDate          model.Date          `json:"end_date"`
	DurationDays     int                 `json:"duration_days"`
	NumberOfGuests   uint32              `json:"number_of_guests"`
	Status           model.BookingStatus `json:"status"`
	StatusDisplay    string              `json:"status_display"`
	TotalAmount      model.Cents         `json:"total_amount"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

func newBookingListItem(d model.BookingDetail) bookingListItem {
	return bookingListItem{
		ID:               d.ID,
		CustomerName:     d.Customer.FullName(),
		CustomerUsername: d.Customer.Username,
		TentTypeName:     d.TentType.Name,
		Location:         d.Location,
		EventDate:        d.EventDate,
		EndDate:          d.EndDate,
		DurationDays:     d.DurationDays(),
		NumberOfGuests:   d.NumberOfGuests,
		Status:           d.Status,
		StatusDisplay:    d.Status.Label(),
		TotalAmount:      d.TotalAmount,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

type statsResp struct {
	TotalBookings     int64       `json:"total_bookings"`
	PendingBookings   int64       `json:"pending_bookings"`
	ConfirmedBookings int64       `json:"confirmed_bookings"`
	CompletedBookings int64       `json:"completed_bookings"`
	CancelledBookings int64       `json:"cancelled_bookings"`
	TotalRevenue      model.Cents `json:"total_revenue"`
}

type userResp struct {
	ID          uint64     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Role        model.Role `json:"role"`
	RoleDisplay string     `json:"role_display"`
	PhoneNumber *string    `json:"phone_number"`
	DateJoined  time.Time  `json:"date_joined"`
}

func newUserResp(u model.User) userResp {
	return userResp{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		RoleDisplay: u.Role.Label(),
		PhoneNumber: u.PhoneNumber,
		DateJoined:  u.CreatedAt,
	}
}
