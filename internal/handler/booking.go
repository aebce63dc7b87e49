package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tent-booking/internal/model"
	"github.com/iliyamo/tent-booking/internal/service"
)

// BookingHandler serves /api/bookings.  Authorization decisions live in
// the booking service; the handler only maps requests and errors.
type BookingHandler struct {
	Svc service.BookingService
	Log *zap.Logger
}

func NewBookingHandler(svc service.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{Svc: svc, Log: log}
}

// Required fields and business rules are checked by the service so that
// every broken rule is reported together; tags here only cover formats.
type createBookingReq struct {
	TentType            uint64  `json:"tent_type"`
	Location            string  `json:"location" validate:"max=200"`
	EventDate           string  `json:"event_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate             string  `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	NumberOfGuests      uint32  `json:"number_of_guests"`
	SpecialRequirements *string `json:"special_requirements"`
}

type updateBookingReq struct {
	TentType            *uint64          `json:"tent_type"`
	Location            *string          `json:"location" validate:"omitnil,max=200"`
	EventDate           *string          `json:"event_date" validate:"omitnil,datetime=2006-01-02"`
	EndDate             *string          `json:"end_date" validate:"omitnil,datetime=2006-01-02"`
	NumberOfGuests      *uint32          `json:"number_of_guests"`
	SpecialRequirements optional[string] `json:"special_requirements"`
	Status              optional[string] `json:"status"`
}

// optional remembers whether a key was sent at all, so an explicit null
// can be told apart from an omitted field.
type optional[T any] struct {
	Set   bool
	Value *T
}

func (o *optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// optionalDate parses s; the validator has already checked its format.
func optionalDate(s string) model.Date {
	d, err := model.ParseDate(s)
	if err != nil {
		return model.Date{}
	}
	return d
}

// POST /api/bookings
func (h *BookingHandler) Create(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	var req createBookingReq
	if err := decode(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Svc.Create(ctx, id, service.CreateBookingInput{
		TentTypeID:          req.TentType,
		Location:            req.Location,
		EventDate:           optionalDate(req.EventDate),
		EndDate:             optionalDate(req.EndDate),
		NumberOfGuests:      req.NumberOfGuests,
		SpecialRequirements: req.SpecialRequirements,
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, newBookingResp(*d))
}

// GET /api/bookings
func (h *BookingHandler) List(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Svc.List(ctx, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	out := make([]bookingListItem, 0, len(list))
	for _, d := range list {
		out = append(out, newBookingListItem(d))
	}
	return c.JSON(http.StatusOK, out)
}

// GET /api/bookings/:id
func (h *BookingHandler) Get(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	bookingID, err := pathID(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Svc.Get(ctx, id, bookingID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, newBookingResp(*d))
}

// PUT|PATCH /api/bookings/:id.  Both verbs are partial updates.
func (h *BookingHandler) Update(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	bookingID, err := pathID(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	var req updateBookingReq
	if err := decode(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}

	in := service.UpdateBookingInput{
		TentTypeID:     req.TentType,
		Location:       req.Location,
		NumberOfGuests: req.NumberOfGuests,
	}
	if req.SpecialRequirements.Set {
		// null clears the field, the service stores "" as NULL
		v := ""
		if req.SpecialRequirements.Value != nil {
			v = *req.SpecialRequirements.Value
		}
		in.SpecialRequirements = &v
	}
	if req.EventDate != nil {
		d := optionalDate(*req.EventDate)
		in.EventDate = &d
	}
	if req.EndDate != nil {
		d := optionalDate(*req.EndDate)
		in.EndDate = &d
	}
	if req.Status.Set {
		// Any status key, even null, goes to the service so the admin
		// guard fires before the value is looked at.
		var st model.BookingStatus
		if req.Status.Value != nil {
			st, _ = model.ParseBookingStatus(*req.Status.Value)
		}
		in.Status = &st
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	d, err := h.Svc.Update(ctx, id, bookingID, in)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, newBookingResp(*d))
}

// GET /api/bookings/stats
func (h *BookingHandler) Stats(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Svc.Stats(ctx, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, statsResp{
		TotalBookings:     s.Total,
		PendingBookings:   s.Pending,
		ConfirmedBookings: s.Confirmed,
		CompletedBookings: s.Completed,
		CancelledBookings: s.Cancelled,
		TotalRevenue:      s.Revenue,
	})
}
