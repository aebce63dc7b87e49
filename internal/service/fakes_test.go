package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/tent-booking/internal/model"
	"github.com/iliyamo/tent-booking/internal/queue"
	"github.com/iliyamo/tent-booking/internal/repository"
)

var (
	day0      = time.Date(2030, time.June, 1, 12, 0, 0, 0, time.UTC)
	fixedNow  = func() time.Time { return day0 }
	adminID   = model.Identity{UserID: 1, Username: "root", Role: model.RoleAdmin}
	aliceID   = model.Identity{UserID: 2, Username: "alice", Role: model.RoleCustomer}
	bobID     = model.Identity{UserID: 3, Username: "bob", Role: model.RoleCustomer}
	price150  = model.Cents(15000)
	errBroker = errors.New("broker down")
)

type fakeTents struct {
	byID map[uint64]*model.TentType
	next uint64
}

func newFakeTents(ts ...model.TentType) *fakeTents {
	f := &fakeTents{byID: map[uint64]*model.TentType{}}
	for i := range ts {
		t := ts[i]
		f.byID[t.ID] = &t
		if t.ID > f.next {
			f.next = t.ID
		}
	}
	return f
}

func (f *fakeTents) Create(_ context.Context, t *model.TentType) error {
	for _, existing := range f.byID {
		if existing.Name == t.Name {
			return repository.ErrTentTypeExists
		}
	}
	f.next++
	t.ID = f.next
	cp := *t
	f.byID[t.ID] = &cp
	return nil
}

func (f *fakeTents) GetByID(_ context.Context, id uint64) (*model.TentType, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrTentTypeNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTents) ListAvailable(context.Context) ([]model.TentType, error) {
	out := []model.TentType{}
	for _, t := range f.byID {
		if t.IsAvailable {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeTents) SetAvailability(_ context.Context, id uint64, available bool) error {
	t, ok := f.byID[id]
	if !ok {
		return repository.ErrTentTypeNotFound
	}
	t.IsAvailable = available
	return nil
}

// fakeBookings filters by BookingScope with the same column equalities the
// SQL repository puts in its WHERE clause.
type fakeBookings struct {
	mu      sync.Mutex
	rows    map[uint64]model.Booking
	tents   *fakeTents
	next    uint64
	clock   time.Time
	updates int
}

func newFakeBookings(tents *fakeTents) *fakeBookings {
	return &fakeBookings{rows: map[uint64]model.Booking{}, tents: tents, clock: day0}
}

func (f *fakeBookings) Create(_ context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.clock = f.clock.Add(time.Second)
	b.ID = f.next
	b.CreatedAt, b.UpdatedAt = f.clock, f.clock
	f.rows[b.ID] = *b
	return nil
}

func (f *fakeBookings) detail(b model.Booking) model.BookingDetail {
	d := model.BookingDetail{Booking: b}
	d.Customer = model.User{ID: b.CustomerID, Username: usernames[b.CustomerID]}
	if t, ok := f.tents.byID[b.TentTypeID]; ok {
		d.TentType = *t
	}
	if b.ConfirmedBy != nil {
		d.Confirmer = &model.User{ID: *b.ConfirmedBy, Username: usernames[*b.ConfirmedBy]}
	}
	return d
}

func inScope(scope model.BookingScope, b model.Booking) bool {
	if scope.CustomerID != 0 && b.CustomerID != scope.CustomerID {
		return false
	}
	return scope.Status == "" || b.Status == scope.Status
}

var usernames = map[uint64]string{1: "root", 2: "alice", 3: "bob"}

func (f *fakeBookings) Get(_ context.Context, id uint64, scope model.BookingScope) (*model.BookingDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok || !inScope(scope, b) {
		return nil, repository.ErrBookingNotFound
	}
	d := f.detail(b)
	return &d, nil
}

func (f *fakeBookings) List(_ context.Context, scope model.BookingScope) ([]model.BookingDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.BookingDetail{}
	for _, b := range f.rows {
		if inScope(scope, b) {
			out = append(out, f.detail(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakeBookings) Update(_ context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.rows[b.ID]
	if !ok {
		return repository.ErrBookingNotFound
	}
	b.CustomerID = old.CustomerID
	f.rows[b.ID] = *b
	f.updates++
	return nil
}

func (f *fakeBookings) Stats(context.Context) (model.BookingStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var s model.BookingStats
	for _, b := range f.rows {
		s.Total++
		switch b.Status {
		case model.StatusPending:
			s.Pending++
		case model.StatusConfirmed:
			s.Confirmed++
			s.Revenue += b.TotalAmount
		case model.StatusCancelled:
			s.Cancelled++
		case model.StatusCompleted:
			s.Completed++
			s.Revenue += b.TotalAmount
		}
	}
	return s, nil
}

type fakePublisher struct {
	events []queue.BookingConfirmedEvent
	err    error
}

func (p *fakePublisher) PublishBookingConfirmed(_ context.Context, ev queue.BookingConfirmedEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

type fakeObserver struct {
	created int
	changes []string
}

func (o *fakeObserver) BookingCreated() { o.created++ }

func (o *fakeObserver) BookingStatusChanged(from, to model.BookingStatus) {
	o.changes = append(o.changes, string(from)+"->"+string(to))
}

type fakeUsers struct {
	byID map[uint64]model.User
	next uint64
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[uint64]model.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	for _, existing := range f.byID {
		if existing.Username == u.Username {
			return repository.ErrUsernameExists
		}
	}
	f.next++
	u.ID = f.next
	u.CreatedAt = day0
	f.byID[u.ID] = *u
	return nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (model.User, error) {
	for _, u := range f.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) List(context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, u *model.User) error {
	old, ok := f.byID[u.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	old.Email, old.FirstName, old.LastName, old.PhoneNumber = u.Email, u.FirstName, u.LastName, u.PhoneNumber
	f.byID[u.ID] = old
	*u = old
	return nil
}

type tokenRow struct {
	userID  uint64
	exp     time.Time
	revoked bool
}

type fakeTokens struct {
	rows map[string]*tokenRow
}

func newFakeTokens() *fakeTokens { return &fakeTokens{rows: map[string]*tokenRow{}} }

func (f *fakeTokens) StoreRefresh(_ context.Context, userID uint64, hash string, exp time.Time) error {
	f.rows[hash] = &tokenRow{userID: userID, exp: exp}
	return nil
}

func (f *fakeTokens) ValidateRefresh(_ context.Context, hash string) (uint64, error) {
	r, ok := f.rows[hash]
	if !ok || r.revoked || time.Now().After(r.exp) {
		return 0, repository.ErrTokenInvalid
	}
	return r.userID, nil
}

func (f *fakeTokens) RevokeByHash(_ context.Context, hash string) error {
	if r, ok := f.rows[hash]; ok {
		r.revoked = true
	}
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	for _, r := range f.rows {
		if r.userID == userID {
			r.revoked = true
		}
	}
	return nil
}
