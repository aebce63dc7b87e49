package model

import (
	"strings"
	"time"
)

// Role is the closed set of account roles.  It is stored verbatim in the
// users.role column and carried in the "role" claim of access tokens.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// ParseRole returns the Role named by s.  Matching is case-insensitive and
// ignores surrounding whitespace.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool { return r == RoleAdmin || r == RoleCustomer }

// Label is the human readable name of the role.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleCustomer:
		return "Customer"
	}
	return string(r)
}

// Identity is the authenticated caller of a request as resolved from a
// verified access token.  Every business operation receives one explicitly.
type Identity struct {
	UserID   uint64
	Username string
	Role     Role
}

// IsAdmin reports whether the identity carries the admin role.
func (id Identity) IsAdmin() bool { return id.Role == RoleAdmin }

// User represents an account as stored in the `users` table.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Username     – unique login name.
//	Email        – contact address.
//	PasswordHash – bcrypt hashed password.
//	FirstName    – given name (may be empty).
//	LastName     – family name (may be empty).
//	Role         – admin or customer.  Never changed after creation.
//	PhoneNumber  – optional contact number, at most 15 characters.
//	IsActive     – whether the account may sign in.
//	CreatedAt    – date joined.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	FirstName    string    // users.first_name
	LastName     string    // users.last_name
	Role         Role      // users.role
	PhoneNumber  *string   // users.phone_number (nullable)
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// FullName joins first and last name.  It is empty when neither is set.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Identity returns the identity a token issued for u would carry.
func (u User) Identity() Identity {
	return Identity{UserID: u.ID, Username: u.Username, Role: u.Role}
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the token handed to the client is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
