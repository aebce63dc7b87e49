package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/tent-booking/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,email,password_hash,first_name,last_name,role,phone_number,is_active,created_at,updated_at"

// Create inserts u and fills in its ID and timestamps.  The password must
// already be hashed.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username,email,password_hash,first_name,last_name,role,phone_number) VALUES (?,?,?,?,?,?,?)",
		u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Role, u.PhoneNumber)
	if err != nil {
		if isDuplicate(err) {
			return ErrUsernameExists
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
	*u = created
	return nil
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// List returns every user ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateProfile writes the self-service profile fields.  Username and role
// are never touched here.
func (r *UserRepo) UpdateProfile(ctx context.Context, u *model.User) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET email=?, first_name=?, last_name=?, phone_number=? WHERE id=?",
		u.Email, u.FirstName, u.LastName, u.PhoneNumber, u.ID)
	if err != nil {
		return err
	}
	updated, err := r.GetByID(ctx, u.ID)
	if err != nil {
		return err
	}
	*u = updated
	return nil
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (model.User, error) {
	var (
		u     model.User
		phone sql.NullString
	)
	err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Role, &phone, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if phone.Valid {
		p := phone.String
		u.PhoneNumber = &p
	}
	return u, nil
}
