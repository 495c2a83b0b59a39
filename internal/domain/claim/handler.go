package claim

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/HSPiira/ultra-sub001/internal/platform/auth"
	"github.com/HSPiira/ultra-sub001/internal/platform/validation"
	"github.com/HSPiira/ultra-sub001/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/claims", h.List)
	api.GET("/claims/:id", h.Get)
	api.POST("/claims", h.Create)
	api.PUT("/claims/:id", h.Update)
	api.DELETE("/claims/:id", h.Delete)
}

func (h *Handler) Create(c echo.Context) error {
	var data map[string]any
	if err := c.Bind(&data); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	cl, err := h.svc.Create(ctx, validation.Payload(data), auth.ActorFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cl)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cl, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := Filter{
		Status: Status(c.QueryParam("status")),
		Query:  c.QueryParam("q"),
		All:    c.QueryParam("all") == "true",
	}
	if v := c.QueryParam("member_id"); v != "" {
		f.PersonID, _ = uuid.Parse(v)
	}
	if v := c.QueryParam("hospital_id"); v != "" {
		f.HospitalID, _ = uuid.Parse(v)
	}
	if v := c.QueryParam("doctor_id"); v != "" {
		f.DoctorID, _ = uuid.Parse(v)
	}
	if v := c.QueryParam("from"); v != "" {
		if t, ok := validation.ParseDate(v); ok {
			f.DateFrom = t
		}
	}
	if v := c.QueryParam("to"); v != "" {
		if t, ok := validation.ParseDate(v); ok {
			f.DateTo = t
		}
	}
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var data map[string]any
	if err := c.Bind(&data); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	cl, err := h.svc.Update(ctx, id, validation.Payload(data), auth.ActorFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	if err := h.svc.Delete(ctx, id, auth.ActorFromContext(ctx)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
