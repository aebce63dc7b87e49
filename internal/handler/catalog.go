package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tent-booking/internal/service"
)

// CatalogHandler serves the public tent type endpoints.
type CatalogHandler struct {
	Svc service.CatalogService
	Log *zap.Logger
}

func NewCatalogHandler(svc service.CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{Svc: svc, Log: log}
}

// GET /api/tent-types
func (h *CatalogHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	tents, err := h.Svc.List(ctx)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	out := make([]tentTypeResp, 0, len(tents))
	for _, t := range tents {
		out = append(out, newTentTypeResp(t))
	}
	return c.JSON(http.StatusOK, out)
}

// GET /api/tent-types/:id
func (h *CatalogHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Svc.Get(ctx, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, newTentTypeResp(*t))
}
