package service

import (
	"github.com/iliyamo/tent-booking/internal/model"
)

// Messages shown when a role check fails.
const (
	MsgCustomersOnly = "Only customers can create bookings."
	MsgAdminsOnly    = "Only admins can perform this action."
	MsgStatusAdmin   = "Only admins can update booking status."
	MsgStatsAdmin    = "Only admins can view booking statistics."
	MsgUsersAdmin    = "Only admins can list users."
)

// RequireRole fails with a *PermissionError carrying reason unless id holds
// one of roles.  It is the single role check used by the HTTP middleware
// and by every service operation.
func RequireRole(id model.Identity, reason string, roles ...model.Role) error {
	for _, r := range roles {
		if id.Role == r {
			return nil
		}
	}
	if reason == "" {
		reason = MsgAdminsOnly
	}
	return denied(reason)
}

// readScope is the set of bookings id may view.
func readScope(id model.Identity) model.BookingScope {
	if id.IsAdmin() {
		return model.BookingScope{}
	}
	return model.BookingScope{CustomerID: id.UserID}
}

// editScope is the set of bookings id may update.  Customers can only
// touch their own pending bookings.
func editScope(id model.Identity) model.BookingScope {
	if id.IsAdmin() {
		return model.BookingScope{}
	}
	return model.BookingScope{CustomerID: id.UserID, Status: model.StatusPending}
}
