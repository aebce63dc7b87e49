package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tent-booking/internal/model"
)

var detailColumns = []string{
	"id", "customer_id", "tent_type_id", "location", "event_date", "end_date",
	"number_of_guests", "special_requirements", "status", "total_amount_cents",
	"confirmed_by", "confirmed_at", "created_at", "updated_at",
	"username", "email", "first_name", "last_name", "phone_number", "role",
	"name", "description", "capacity", "price_per_day_cents", "is_available", "created_at", "updated_at",
	"username", "first_name", "last_name",
}

var created = time.Date(2030, time.June, 1, 12, 0, 0, 0, time.UTC)

func newMockRepo(t *testing.T) (*BookingRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewBookingRepo(db), mock
}

func pendingRow(rows *sqlmock.Rows, id, customerID int64) *sqlmock.Rows {
	return rows.AddRow(
		id, customerID, int64(3), "Riverside meadow",
		time.Date(2030, time.July, 1, 0, 0, 0, 0, time.UTC), time.Date(2030, time.July, 3, 0, 0, 0, 0, time.UTC),
		int64(4), nil, "pending", int64(45000),
		nil, nil, created, created,
		"alice", "alice@example.com", "Alice", "Walker", nil, "customer",
		"Bell Tent", "Canvas", int64(6), int64(15000), true, created, created,
		nil, nil, nil,
	)
}

func TestScopeClause(t *testing.T) {
	cases := []struct {
		name  string
		scope model.BookingScope
		where []string
		args  []any
	}{
		{"admin sees everything", model.BookingScope{}, nil, nil},
		{"customer reads own bookings", model.BookingScope{CustomerID: 2},
			[]string{"b.customer_id = ?"}, []any{uint64(2)}},
		{"customer edits own pending bookings", model.BookingScope{CustomerID: 2, Status: model.StatusPending},
			[]string{"b.customer_id = ?", "b.status = ?"}, []any{uint64(2), model.StatusPending}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			where, args := scopeClause(tc.scope)
			assert.Equal(t, tc.where, where)
			assert.Equal(t, tc.args, args)
		})
	}
}

func TestGetAppliesScopeInWhere(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.id = ? AND b.customer_id = ? AND b.status = ?")).
		WithArgs(uint64(7), uint64(2), model.StatusPending).
		WillReturnRows(pendingRow(sqlmock.NewRows(detailColumns), 7, 2))

	d, err := repo.Get(context.Background(), 7, model.BookingScope{CustomerID: 2, Status: model.StatusPending})

	require.NoError(t, err)
	assert.Equal(t, uint64(7), d.ID)
	assert.Equal(t, uint64(2), d.Customer.ID)
	assert.Equal(t, "alice", d.Customer.Username)
	assert.Nil(t, d.Customer.PhoneNumber)
	assert.Equal(t, uint64(3), d.TentType.ID)
	assert.Equal(t, uint32(6), d.TentType.Capacity)
	assert.Equal(t, model.NewDate(2030, time.July, 1), d.EventDate)
	assert.Equal(t, model.StatusPending, d.Status)
	assert.Equal(t, "450.00", d.TotalAmount.String())
	assert.Nil(t, d.SpecialRequirements)
	assert.Nil(t, d.ConfirmedBy)
	assert.Nil(t, d.ConfirmedAt)
	assert.Nil(t, d.Confirmer)
}

func TestGetOutsideScopeIsNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.id = ? AND b.customer_id = ?")).
		WithArgs(uint64(7), uint64(3)).
		WillReturnRows(sqlmock.NewRows(detailColumns))

	_, err := repo.Get(context.Background(), 7, model.BookingScope{CustomerID: 3})

	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetScansConfirmationAndNullableColumns(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2030, time.June, 2, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(detailColumns).AddRow(
		int64(9), int64(2), int64(3), "North field",
		"2030-07-01", "2030-07-01",
		int64(2), "wooden floor", "confirmed", int64(15000),
		int64(1), at, created, at,
		"alice", "alice@example.com", "Alice", "Walker", "+4912345", "customer",
		"Bell Tent", "Canvas", int64(6), int64(15000), true, created, created,
		"root", "Site", "Admin",
	)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.id = ?")).WithArgs(uint64(9)).WillReturnRows(rows)

	d, err := repo.Get(context.Background(), 9, model.BookingScope{})

	require.NoError(t, err)
	require.NotNil(t, d.SpecialRequirements)
	assert.Equal(t, "wooden floor", *d.SpecialRequirements)
	require.NotNil(t, d.Customer.PhoneNumber)
	assert.Equal(t, "+4912345", *d.Customer.PhoneNumber)
	require.NotNil(t, d.ConfirmedBy)
	assert.Equal(t, uint64(1), *d.ConfirmedBy)
	require.NotNil(t, d.ConfirmedAt)
	assert.True(t, d.ConfirmedAt.Equal(at))
	require.NotNil(t, d.Confirmer)
	assert.Equal(t, "root", d.Confirmer.Username)
	assert.Equal(t, 1, d.DurationDays())
}

func TestListFiltersCustomersAndOrdersNewestFirst(t *testing.T) {
	repo, mock := newMockRepo(t)
	rows := sqlmock.NewRows(detailColumns)
	pendingRow(rows, 8, 2)
	pendingRow(rows, 5, 2)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.customer_id = ? ORDER BY b.created_at DESC, b.id DESC")).
		WithArgs(uint64(2)).
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), model.BookingScope{CustomerID: 2})

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, uint64(8), list[0].ID)
	assert.Equal(t, uint64(5), list[1].ID)
}

func TestListForAdminHasNoWhere(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN users a ON a.id = b.confirmed_by ORDER BY b.created_at DESC")).
		WithArgs().
		WillReturnRows(sqlmock.NewRows(detailColumns))

	list, err := repo.List(context.Background(), model.BookingScope{})

	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestStatsScansDecimalSums(t *testing.T) {
	repo, mock := newMockRepo(t)
	// MySQL returns SUM over integers as DECIMAL, which the driver hands back as text.
	mock.ExpectQuery(regexp.QuoteMeta("SUM(CASE WHEN status IN ('confirmed', 'completed') THEN total_amount_cents ELSE 0 END)")).
		WillReturnRows(sqlmock.NewRows([]string{"total", "pending", "confirmed", "cancelled", "completed", "revenue"}).
			AddRow(int64(4), []byte("1"), []byte("1"), []byte("1"), []byte("1"), []byte("90000")))

	s, err := repo.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, model.BookingStats{Total: 4, Pending: 1, Confirmed: 1, Cancelled: 1, Completed: 1, Revenue: 90000}, s)
	assert.Equal(t, "900.00", s.Revenue.String())
}

func TestUpdateMissingRowIsNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	b := &model.Booking{ID: 7, Status: model.StatusConfirmed}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM bookings WHERE id = ?)")).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	assert.ErrorIs(t, repo.Update(context.Background(), b), ErrBookingNotFound)
}
