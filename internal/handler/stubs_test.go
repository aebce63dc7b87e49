package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tent-booking/internal/middleware"
	"github.com/iliyamo/tent-booking/internal/model"
	"github.com/iliyamo/tent-booking/internal/service"
	"github.com/iliyamo/tent-booking/internal/utils"
)

const testSecret = "handler-secret"

var (
	stamp    = time.Date(2030, time.May, 1, 8, 0, 0, 0, time.UTC)
	customer = model.Identity{UserID: 2, Username: "alice", Role: model.RoleCustomer}
	admin    = model.Identity{UserID: 1, Username: "root", Role: model.RoleAdmin}
	bellTent = model.TentType{ID: 3, Name: "Bell Tent", Description: "Canvas", Capacity: 20, PricePerDay: 15000, IsAvailable: true, CreatedAt: stamp, UpdatedAt: stamp}
)

func sampleDetail() model.BookingDetail {
	phone := "0123456789"
	return model.BookingDetail{
		Booking: model.Booking{
			ID:             7,
			CustomerID:     2,
			TentTypeID:     3,
			Location:       "Lakeside",
			EventDate:      model.NewDate(2030, time.June, 10),
			EndDate:        model.NewDate(2030, time.June, 11),
			NumberOfGuests: 12,
			Status:         model.StatusPending,
			TotalAmount:    30000,
			CreatedAt:      stamp,
			UpdatedAt:      stamp,
		},
		Customer: model.User{ID: 2, Username: "alice", FirstName: "Alice", LastName: "Liddell", Email: "alice@example.com", PhoneNumber: &phone},
		TentType: bellTent,
	}
}

type stubBookings struct {
	detail  model.BookingDetail
	list    []model.BookingDetail
	stats   model.BookingStats
	err     error
	caller  model.Identity
	created service.CreateBookingInput
	updated service.UpdateBookingInput
	target  uint64
}

func (s *stubBookings) Create(_ context.Context, id model.Identity, in service.CreateBookingInput) (*model.BookingDetail, error) {
	s.caller, s.created = id, in
	if s.err != nil {
		return nil, s.err
	}
	d := s.detail
	return &d, nil
}

func (s *stubBookings) List(_ context.Context, id model.Identity) ([]model.BookingDetail, error) {
	s.caller = id
	return s.list, s.err
}

func (s *stubBookings) Get(_ context.Context, id model.Identity, bookingID uint64) (*model.BookingDetail, error) {
	s.caller, s.target = id, bookingID
	if s.err != nil {
		return nil, s.err
	}
	d := s.detail
	return &d, nil
}

func (s *stubBookings) Update(_ context.Context, id model.Identity, bookingID uint64, in service.UpdateBookingInput) (*model.BookingDetail, error) {
	s.caller, s.target, s.updated = id, bookingID, in
	if s.err != nil {
		return nil, s.err
	}
	d := s.detail
	return &d, nil
}

func (s *stubBookings) Stats(_ context.Context, id model.Identity) (model.BookingStats, error) {
	s.caller = id
	return s.stats, s.err
}

type stubCatalog struct {
	tents []model.TentType
}

func (s *stubCatalog) List(context.Context) ([]model.TentType, error) { return s.tents, nil }

func (s *stubCatalog) Get(_ context.Context, id uint64) (*model.TentType, error) {
	for _, t := range s.tents {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, service.ErrNotFound
}

func (s *stubCatalog) Create(context.Context, service.TentTypeInput) (*model.TentType, error) {
	return nil, service.ErrPermission
}

func (s *stubCatalog) SetAvailability(context.Context, uint64, bool) error { return nil }

type stubAuth struct {
	user         model.User
	err          error
	registered   service.RegisterInput
	loggedOut    string
	loggedOutAll uint64
}

func (s *stubAuth) pair() service.TokenPair {
	return service.TokenPair{
		Access:  utils.AccessToken{Token: "access-token", Exp: stamp.Add(time.Hour)},
		Refresh: utils.RefreshToken{Raw: "refresh-token", Exp: stamp.Add(24 * time.Hour)},
	}
}

func (s *stubAuth) Register(_ context.Context, in service.RegisterInput) (model.User, service.TokenPair, error) {
	s.registered = in
	if s.err != nil {
		return model.User{}, service.TokenPair{}, s.err
	}
	return s.user, s.pair(), nil
}

func (s *stubAuth) CreateAdmin(context.Context, service.RegisterInput) (model.User, error) {
	return s.user, s.err
}

func (s *stubAuth) Login(context.Context, string, string) (model.User, service.TokenPair, error) {
	if s.err != nil {
		return model.User{}, service.TokenPair{}, s.err
	}
	return s.user, s.pair(), nil
}

func (s *stubAuth) Refresh(context.Context, string) (model.User, service.TokenPair, error) {
	if s.err != nil {
		return model.User{}, service.TokenPair{}, s.err
	}
	return s.user, s.pair(), nil
}

func (s *stubAuth) Logout(_ context.Context, raw string) error {
	s.loggedOut = raw
	return s.err
}

func (s *stubAuth) LogoutAll(_ context.Context, userID uint64) error {
	s.loggedOutAll = userID
	return s.err
}

func (s *stubAuth) Profile(context.Context, model.Identity) (model.User, error) { return s.user, s.err }

func (s *stubAuth) UpdateProfile(context.Context, model.Identity, service.ProfileInput) (model.User, error) {
	return s.user, s.err
}

func (s *stubAuth) ListUsers(context.Context, model.Identity) ([]model.User, error) {
	return []model.User{s.user}, s.err
}

// newEcho returns an Echo with the validator installed and protected
// routes behind JWTAuth.
func newEcho() (*echo.Echo, *echo.Group) {
	e := echo.New()
	e.Validator = NewValidator()
	return e, e.Group("", middleware.JWTAuth(testSecret))
}

func call(t *testing.T, e *echo.Echo, method, path, body string, who *model.Identity) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if who != nil {
		tok, err := utils.NewAccessToken(testSecret, *who, 5)
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}
