// Package repository holds the hand-written SQL data access layer.  The
// sentinel values below let services tell "no such row" and unique key
// collisions apart from infrastructure failures.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameExists   = errors.New("username already exists")
	ErrTentTypeNotFound = errors.New("tent type not found")
	ErrTentTypeExists   = errors.New("tent type name already exists")
	ErrBookingNotFound  = errors.New("booking not found")
	// ErrTokenInvalid covers unknown, expired and revoked refresh tokens.
	ErrTokenInvalid = errors.New("refresh token invalid")
)

// isDuplicate reports whether err is a MySQL unique key violation (1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
