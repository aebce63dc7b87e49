package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/tent-booking/internal/model"
)

// TentTypeRepo encapsulates all queries on the tent catalog.
type TentTypeRepo struct {
	db *sql.DB
}

func NewTentTypeRepo(db *sql.DB) *TentTypeRepo { return &TentTypeRepo{db: db} }

const tentTypeColumns = "id, name, description, capacity, price_per_day_cents, is_available, created_at, updated_at"

// Create inserts a new tent type and populates its ID and timestamps.
func (r *TentTypeRepo) Create(ctx context.Context, t *model.TentType) error {
	const q = "INSERT INTO tent_types (name, description, capacity, price_per_day_cents, is_available) VALUES (?, ?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, t.Name, t.Description, t.Capacity, t.PricePerDay, t.IsAvailable)
	if err != nil {
		if isDuplicate(err) {
			return ErrTentTypeExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*t = *created
	return nil
}

// GetByID fetches a tent type regardless of availability.  It returns
// ErrTentTypeNotFound when no row exists.
func (r *TentTypeRepo) GetByID(ctx context.Context, id uint64) (*model.TentType, error) {
	t, err := scanTentType(r.db.QueryRowContext(ctx, "SELECT "+tentTypeColumns+" FROM tent_types WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTentTypeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListAvailable returns available tent types ordered by name.
func (r *TentTypeRepo) ListAvailable(ctx context.Context) ([]model.TentType, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+tentTypeColumns+" FROM tent_types WHERE is_available = 1 ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.TentType{}
	for rows.Next() {
		t, err := scanTentType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SetAvailability toggles whether new bookings may use the tent type.
func (r *TentTypeRepo) SetAvailability(ctx context.Context, id uint64, available bool) error {
	res, err := r.db.ExecContext(ctx, "UPDATE tent_types SET is_available = ? WHERE id = ?", available, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// 0 rows also means "already in that state"; tell the cases apart.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func scanTentType(s rowScanner) (model.TentType, error) {
	var t model.TentType
	err := s.Scan(&t.ID, &t.Name, &t.Description, &t.Capacity, &t.PricePerDay, &t.IsAvailable, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}
