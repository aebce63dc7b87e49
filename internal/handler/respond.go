package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tent-booking/internal/middleware"
	"github.com/iliyamo/tent-booking/internal/model"
	"github.com/iliyamo/tent-booking/internal/service"
)

var errBadBody = errors.New("invalid body")

// decode binds the JSON body into req and runs its validate tags.
func decode(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errBadBody
	}
	return c.Validate(req)
}

// respondError maps service errors onto HTTP responses.  Anything that is
// not part of the service error taxonomy is logged and answered with 500.
func respondError(c echo.Context, log *zap.Logger, err error) error {
	var verr *service.ValidationError
	var perr *service.PermissionError
	switch {
	case errors.Is(err, errBadBody):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, verr.Fields)
	case errors.As(err, &perr):
		return c.JSON(http.StatusForbidden, echo.Map{"error": perr.Reason})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, service.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No active account found with the given credentials."})
	}
	if log != nil {
		log.Error("request failed",
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.String("route", c.Path()),
			zap.Error(err))
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// identity returns the authenticated caller.  Routes using it sit behind
// JWTAuth, so a missing identity is a wiring bug surfaced as 401.
func identity(c echo.Context) (model.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return model.Identity{}, service.ErrUnauthenticated
	}
	return id, nil
}

// pathID parses the :id parameter.  Malformed ids cannot name a row, so
// they are reported as not found.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, service.ErrNotFound
	}
	return id, nil
}
