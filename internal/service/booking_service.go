package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/tent-booking/internal/model"
	"github.com/iliyamo/tent-booking/internal/queue"
	"github.com/iliyamo/tent-booking/internal/repository"
)

type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	Get(ctx context.Context, id uint64, scope model.BookingScope) (*model.BookingDetail, error)
	List(ctx context.Context, scope model.BookingScope) ([]model.BookingDetail, error)
	Update(ctx context.Context, b *model.Booking) error
	Stats(ctx context.Context) (model.BookingStats, error)
}

// TentLookup is the part of the catalog bookings depend on.
type TentLookup interface {
	GetByID(ctx context.Context, id uint64) (*model.TentType, error)
}

// EventPublisher delivers booking events to the broker.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// BookingObserver is told about booking lifecycle changes.
type BookingObserver interface {
	BookingCreated()
	BookingStatusChanged(from, to model.BookingStatus)
}

type BookingService interface {
	Create(ctx context.Context, id model.Identity, in CreateBookingInput) (*model.BookingDetail, error)
	List(ctx context.Context, id model.Identity) ([]model.BookingDetail, error)
	Get(ctx context.Context, id model.Identity, bookingID uint64) (*model.BookingDetail, error)
	Update(ctx context.Context, id model.Identity, bookingID uint64, in UpdateBookingInput) (*model.BookingDetail, error)
	Stats(ctx context.Context, id model.Identity) (model.BookingStats, error)
}

type CreateBookingInput struct {
	TentTypeID          uint64
	Location            string
	EventDate           model.Date
	EndDate             model.Date
	NumberOfGuests      uint32
	SpecialRequirements *string
}

// UpdateBookingInput is a partial update; nil fields are left unchanged.
// An empty SpecialRequirements clears the field.  A non-nil Status is an
// admin-only change even when it points at the empty status.
type UpdateBookingInput struct {
	TentTypeID          *uint64
	Location            *string
	EventDate           *model.Date
	EndDate             *model.Date
	NumberOfGuests      *uint32
	SpecialRequirements *string
	Status              *model.BookingStatus
}

type BookingOptions struct {
	// Location defines the calendar day used by the no-past-dates rule.
	Location *time.Location
	// StrictTransitions rejects status changes outside the lifecycle table.
	StrictTransitions bool
	Now               func() time.Time
	Publisher         EventPublisher
	Observer          BookingObserver
	Logger            *zap.Logger
}

type bookingService struct {
	store BookingStore
	tents TentLookup
	opts  BookingOptions
	log   *zap.Logger
}

func NewBookingService(store BookingStore, tents TentLookup, opts BookingOptions) BookingService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &bookingService{store: store, tents: tents, opts: opts, log: log}
}

const (
	msgPastDate       = "Event date cannot be in the past."
	msgEndBeforeStart = "End date must be after or equal to event date."
	msgUnavailable    = "Selected tent type is not available."
	msgNotNull        = "This field may not be null."
)

func (s *bookingService) today() model.Date {
	return model.Today(s.opts.Now(), s.opts.Location)
}

// Create places a pending booking for the calling customer.  Every broken
// rule is reported at once.
func (s *bookingService) Create(ctx context.Context, id model.Identity, in CreateBookingInput) (*model.BookingDetail, error) {
	if err := RequireRole(id, MsgCustomersOnly, model.RoleCustomer); err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	location := strings.TrimSpace(in.Location)
	checkLocation(verr, location)
	if in.NumberOfGuests < 1 {
		verr.Add("number_of_guests", minValue(1))
	}
	if in.EventDate.IsZero() {
		verr.Add("event_date", msgRequired)
	}
	if in.EndDate.IsZero() {
		verr.Add("end_date", msgRequired)
	}
	if !in.EventDate.IsZero() && !in.EndDate.IsZero() {
		s.checkDates(verr, in.EventDate, in.EndDate, true)
	}
	tent, err := s.lookupTent(ctx, verr, in.TentTypeID)
	if err != nil {
		return nil, err
	}
	if tent != nil {
		checkTent(verr, tent, in.NumberOfGuests, true)
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	b := &model.Booking{
		CustomerID:          id.UserID,
		TentTypeID:          tent.ID,
		Location:            location,
		EventDate:           in.EventDate,
		EndDate:             in.EndDate,
		NumberOfGuests:      in.NumberOfGuests,
		SpecialRequirements: in.SpecialRequirements,
		Status:              model.StatusPending,
	}
	b.Reprice(tent.PricePerDay)
	if err := s.store.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	if s.opts.Observer != nil {
		s.opts.Observer.BookingCreated()
	}
	s.log.Info("booking created",
		zap.Uint64("booking_id", b.ID),
		zap.Uint64("customer_id", b.CustomerID),
		zap.String("total_amount", b.TotalAmount.String()))
	return s.reload(ctx, b.ID)
}

// List returns every booking for admins and the caller's own bookings for
// customers, newest first.
func (s *bookingService) List(ctx context.Context, id model.Identity) ([]model.BookingDetail, error) {
	return s.store.List(ctx, readScope(id))
}

func (s *bookingService) Get(ctx context.Context, id model.Identity, bookingID uint64) (*model.BookingDetail, error) {
	d, err := s.store.Get(ctx, bookingID, readScope(id))
	if errors.Is(err, repository.ErrBookingNotFound) {
		return nil, ErrNotFound
	}
	return d, err
}

// Update applies a partial update.  Customers may edit their own pending
// bookings but never the status; admins may edit anything.  The first move
// into confirmed records who confirmed and when, and publishes an event.
func (s *bookingService) Update(ctx context.Context, id model.Identity, bookingID uint64, in UpdateBookingInput) (*model.BookingDetail, error) {
	current, err := s.store.Get(ctx, bookingID, editScope(id))
	if errors.Is(err, repository.ErrBookingNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if in.Status != nil {
		if err := RequireRole(id, MsgStatusAdmin, model.RoleAdmin); err != nil {
			return nil, err
		}
	}

	b := current.Booking
	tent := current.TentType
	verr := &ValidationError{}

	if in.Location != nil {
		b.Location = strings.TrimSpace(*in.Location)
		checkLocation(verr, b.Location)
	}
	if in.SpecialRequirements != nil {
		if v := *in.SpecialRequirements; v == "" {
			b.SpecialRequirements = nil
		} else {
			b.SpecialRequirements = &v
		}
	}
	if in.NumberOfGuests != nil {
		b.NumberOfGuests = *in.NumberOfGuests
		if b.NumberOfGuests < 1 {
			verr.Add("number_of_guests", minValue(1))
		}
	}
	tentChanged := in.TentTypeID != nil && *in.TentTypeID != b.TentTypeID
	tentKnown := true
	if tentChanged {
		t, err := s.lookupTent(ctx, verr, *in.TentTypeID)
		if err != nil {
			return nil, err
		}
		if t == nil {
			tentKnown = false
		} else {
			tent = *t
			b.TentTypeID = t.ID
		}
	}
	if in.EventDate != nil {
		b.EventDate = *in.EventDate
	}
	if in.EndDate != nil {
		b.EndDate = *in.EndDate
	}
	datesChanged := in.EventDate != nil || in.EndDate != nil
	if datesChanged {
		s.checkDates(verr, b.EventDate, b.EndDate, in.EventDate != nil)
	}
	if tentKnown && (tentChanged || in.NumberOfGuests != nil) {
		checkTent(verr, &tent, b.NumberOfGuests, tentChanged)
	}

	prev := b.Status
	stamped := false
	if in.Status != nil {
		next := *in.Status
		switch {
		case next == "":
			verr.Add("status", msgNotNull)
		case !next.Valid():
			verr.Add("status", fmt.Sprintf("%q is not a valid choice.", string(next)))
		case next == prev:
			// Re-applying the current status changes nothing, including the
			// confirmation stamp.
		case s.opts.StrictTransitions && !prev.CanTransitionTo(next):
			verr.Add("status", fmt.Sprintf("Cannot change status from %s to %s.", prev, next))
		default:
			if !prev.CanTransitionTo(next) {
				s.log.Warn("booking status changed outside lifecycle",
					zap.Uint64("booking_id", b.ID),
					zap.String("from", string(prev)),
					zap.String("to", string(next)),
					zap.Uint64("admin_id", id.UserID))
			}
			b.Status = next
			if next == model.StatusConfirmed {
				stamped = b.StampConfirmation(id.UserID, s.opts.Now())
			}
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	if tentChanged || datesChanged {
		b.Reprice(tent.PricePerDay)
	}
	if err := s.store.Update(ctx, &b); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update booking: %w", err)
	}

	updated, err := s.reload(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if b.Status != prev {
		if s.opts.Observer != nil {
			s.opts.Observer.BookingStatusChanged(prev, b.Status)
		}
		s.log.Info("booking status changed",
			zap.Uint64("booking_id", b.ID),
			zap.String("from", string(prev)),
			zap.String("to", string(b.Status)),
			zap.Uint64("admin_id", id.UserID))
	}
	if stamped {
		s.publishConfirmed(ctx, *updated)
	}
	return updated, nil
}

// Stats is restricted to admins.
func (s *bookingService) Stats(ctx context.Context, id model.Identity) (model.BookingStats, error) {
	if err := RequireRole(id, MsgStatsAdmin, model.RoleAdmin); err != nil {
		return model.BookingStats{}, err
	}
	return s.store.Stats(ctx)
}

func (s *bookingService) reload(ctx context.Context, bookingID uint64) (*model.BookingDetail, error) {
	d, err := s.store.Get(ctx, bookingID, model.BookingScope{})
	if err != nil {
		return nil, fmt.Errorf("reload booking %d: %w", bookingID, err)
	}
	return d, nil
}

// publishConfirmed never fails the request; broker problems are logged.
func (s *bookingService) publishConfirmed(ctx context.Context, d model.BookingDetail) {
	if s.opts.Publisher == nil {
		return
	}
	if err := s.opts.Publisher.PublishBookingConfirmed(ctx, queue.NewBookingConfirmedEvent(d)); err != nil {
		s.log.Warn("publish booking.confirmed failed", zap.Uint64("booking_id", d.ID), zap.Error(err))
	}
}

// lookupTent resolves a tent type id.  An unknown id is a validation error
// on tent_type; the returned tent is nil in that case.
func (s *bookingService) lookupTent(ctx context.Context, verr *ValidationError, tentID uint64) (*model.TentType, error) {
	if tentID == 0 {
		verr.Add("tent_type", msgRequired)
		return nil, nil
	}
	t, err := s.tents.GetByID(ctx, tentID)
	if errors.Is(err, repository.ErrTentTypeNotFound) {
		verr.Add("tent_type", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", tentID))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// checkDates validates an inclusive date range.  The past-date rule only
// applies when the event date itself is being set.
func (s *bookingService) checkDates(verr *ValidationError, start, end model.Date, checkPast bool) {
	if checkPast && start.Before(s.today()) {
		verr.Add("event_date", msgPastDate)
	}
	if end.Before(start) {
		verr.Add("end_date", msgEndBeforeStart)
	}
}

// checkTent validates capacity and, when the tent is newly chosen, that it
// can still be booked.
func checkTent(verr *ValidationError, t *model.TentType, guests uint32, checkAvailability bool) {
	if guests >= 1 && !t.Fits(guests) {
		verr.Add("number_of_guests", fmt.Sprintf("Number of guests (%d) exceeds tent capacity (%d).", guests, t.Capacity))
	}
	if checkAvailability && !t.IsAvailable {
		verr.Add("tent_type", msgUnavailable)
	}
}

func checkLocation(verr *ValidationError, location string) {
	switch {
	case location == "":
		verr.Add("location", msgRequired)
	case len([]rune(location)) > 200:
		verr.Add("location", maxLength(200))
	}
}
