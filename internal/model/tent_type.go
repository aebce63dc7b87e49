package model

import "time"

// TentType is a rentable tent model in the catalog.  Rows are maintained by
// administrative tooling; the public API only reads them.
//
// Fields:
//
//	ID          – primary key identifier.
//	Name        – unique display name.
//	Description – free text shown to customers.
//	Capacity    – maximum number of guests, always at least 1.
//	PricePerDay – daily rental price, at least 0.01.
//	IsAvailable – whether new bookings may reference this tent type.
//	CreatedAt   – creation timestamp.
//	UpdatedAt   – last update timestamp.
type TentType struct {
	ID          uint64    // tent_types.id
	Name        string    // tent_types.name
	Description string    // tent_types.description
	Capacity    uint32    // tent_types.capacity
	PricePerDay Cents     // tent_types.price_per_day_cents
	IsAvailable bool      // tent_types.is_available
	CreatedAt   time.Time // tent_types.created_at
	UpdatedAt   time.Time // tent_types.updated_at
}

// Fits reports whether a party of guests fits into the tent.
func (t TentType) Fits(guests uint32) bool { return guests <= t.Capacity }
