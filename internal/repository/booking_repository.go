package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/tent-booking/internal/model"
)

// BookingRepo reads and writes bookings.  Reads always join the customer,
// the tent type and the confirming admin so callers get a complete
// model.BookingDetail in one round trip.  Visibility is enforced in SQL via
// model.BookingScope: a row outside the scope is indistinguishable from a
// missing row.
type BookingRepo struct {
	db *sql.DB
}

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingSelect = `SELECT b.id, b.customer_id, b.tent_type_id, b.location, b.event_date, b.end_date,
       b.number_of_guests, b.special_requirements, b.status, b.total_amount_cents,
       b.confirmed_by, b.confirmed_at, b.created_at, b.updated_at,
       c.username, c.email, c.first_name, c.last_name, c.phone_number, c.role,
       t.name, t.description, t.capacity, t.price_per_day_cents, t.is_available, t.created_at, t.updated_at,
       a.username, a.first_name, a.last_name
FROM bookings b
JOIN users c ON c.id = b.customer_id
JOIN tent_types t ON t.id = b.tent_type_id
LEFT JOIN users a ON a.id = b.confirmed_by`

// Create inserts b and populates its ID and timestamps.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (customer_id, tent_type_id, location, event_date, end_date,
		number_of_guests, special_requirements, status, total_amount_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, b.CustomerID, b.TentTypeID, b.Location, b.EventDate, b.EndDate,
		b.NumberOfGuests, b.SpecialRequirements, b.Status, b.TotalAmount)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return r.db.QueryRowContext(ctx, "SELECT created_at, updated_at FROM bookings WHERE id = ?", b.ID).
		Scan(&b.CreatedAt, &b.UpdatedAt)
}

// Get returns the booking with the given id if it lies inside scope.
func (r *BookingRepo) Get(ctx context.Context, id uint64, scope model.BookingScope) (*model.BookingDetail, error) {
	where, args := scopeClause(scope)
	where = append([]string{"b.id = ?"}, where...)
	args = append([]any{id}, args...)

	d, err := scanBookingDetail(r.db.QueryRowContext(ctx, bookingSelect+" WHERE "+strings.Join(where, " AND "), args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns the bookings inside scope, newest first.
func (r *BookingRepo) List(ctx context.Context, scope model.BookingScope) ([]model.BookingDetail, error) {
	q := bookingSelect
	where, args := scopeClause(scope)
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY b.created_at DESC, b.id DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.BookingDetail{}
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Update writes every mutable column of b.  customer_id is never written.
func (r *BookingRepo) Update(ctx context.Context, b *model.Booking) error {
	const q = `UPDATE bookings SET tent_type_id = ?, location = ?, event_date = ?, end_date = ?,
		number_of_guests = ?, special_requirements = ?, status = ?, total_amount_cents = ?,
		confirmed_by = ?, confirmed_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, b.TentTypeID, b.Location, b.EventDate, b.EndDate,
		b.NumberOfGuests, b.SpecialRequirements, b.Status, b.TotalAmount,
		b.ConfirmedBy, b.ConfirmedAt, b.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM bookings WHERE id = ?)", b.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrBookingNotFound
		}
	}
	return nil
}

// Stats aggregates counts per status and revenue over confirmed and
// completed bookings in a single scan.
func (r *BookingRepo) Stats(ctx context.Context) (model.BookingStats, error) {
	const q = `SELECT COUNT(*),
		COALESCE(SUM(status = 'pending'), 0),
		COALESCE(SUM(status = 'confirmed'), 0),
		COALESCE(SUM(status = 'cancelled'), 0),
		COALESCE(SUM(status = 'completed'), 0),
		COALESCE(SUM(CASE WHEN status IN ('confirmed', 'completed') THEN total_amount_cents ELSE 0 END), 0)
		FROM bookings`
	var s model.BookingStats
	err := r.db.QueryRowContext(ctx, q).Scan(&s.Total, &s.Pending, &s.Confirmed, &s.Cancelled, &s.Completed, &s.Revenue)
	return s, err
}

func scopeClause(scope model.BookingScope) ([]string, []any) {
	var (
		where []string
		args  []any
	)
	if scope.CustomerID != 0 {
		where = append(where, "b.customer_id = ?")
		args = append(args, scope.CustomerID)
	}
	if scope.Status != "" {
		where = append(where, "b.status = ?")
		args = append(args, scope.Status)
	}
	return where, args
}

func scanBookingDetail(s rowScanner) (model.BookingDetail, error) {
	var (
		d           model.BookingDetail
		special     sql.NullString
		confirmedBy sql.NullInt64
		confirmedAt sql.NullTime
		phone       sql.NullString
		aUser       sql.NullString
		aFirst      sql.NullString
		aLast       sql.NullString
	)
	err := s.Scan(
		&d.ID, &d.CustomerID, &d.TentTypeID, &d.Location, &d.EventDate, &d.EndDate,
		&d.NumberOfGuests, &special, &d.Status, &d.TotalAmount,
		&confirmedBy, &confirmedAt, &d.CreatedAt, &d.UpdatedAt,
		&d.Customer.Username, &d.Customer.Email, &d.Customer.FirstName, &d.Customer.LastName, &phone, &d.Customer.Role,
		&d.TentType.Name, &d.TentType.Description, &d.TentType.Capacity, &d.TentType.PricePerDay,
		&d.TentType.IsAvailable, &d.TentType.CreatedAt, &d.TentType.UpdatedAt,
		&aUser, &aFirst, &aLast,
	)
	if err != nil {
		return model.BookingDetail{}, err
	}
	d.Customer.ID = d.CustomerID
	d.TentType.ID = d.TentTypeID
	if special.Valid {
		v := special.String
		d.SpecialRequirements = &v
	}
	if phone.Valid {
		v := phone.String
		d.Customer.PhoneNumber = &v
	}
	if confirmedAt.Valid {
		v := confirmedAt.Time
		d.ConfirmedAt = &v
	}
	if confirmedBy.Valid {
		id := uint64(confirmedBy.Int64)
		d.ConfirmedBy = &id
		d.Confirmer = &model.User{ID: id, Username: aUser.String, FirstName: aFirst.String, LastName: aLast.String}
	}
	return d, nil
}
