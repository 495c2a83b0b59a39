package catalog

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
	api.GET("/services", h.ListServices)
	api.GET("/services/:id", h.GetService)
	api.POST("/services", h.CreateService)
	api.PUT("/services/:id", h.UpdateService)
	api.DELETE("/services/:id", h.DeleteService)

	api.GET("/medicines", h.ListMedicines)
	api.GET("/medicines/:id", h.GetMedicine)
	api.POST("/medicines", h.CreateMedicine)
	api.PUT("/medicines/:id", h.UpdateMedicine)
	api.DELETE("/medicines/:id", h.DeleteMedicine)

	api.GET("/lab-tests", h.ListLabTests)
	api.GET("/lab-tests/:id", h.GetLabTest)
	api.POST("/lab-tests", h.CreateLabTest)
	api.PUT("/lab-tests/:id", h.UpdateLabTest)
	api.DELETE("/lab-tests/:id", h.DeleteLabTest)

	api.GET("/hospitals/:id/prices", h.ListPrices)
	api.GET("/prices/:id", h.GetPrice)
	api.POST("/prices", h.CreatePrice)
	api.PUT("/prices/:id", h.UpdatePrice)
	api.DELETE("/prices/:id", h.DeletePrice)
}

func bindPayload(c echo.Context) (validation.Payload, error) {
	var data map[string]any
	if err := c.Bind(&data); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return validation.Payload(data), nil
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) CreateService(c echo.Context) error {
	data, err := bindPayload(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	m, err := h.svc.CreateService(ctx, data, auth.ActorFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) GetService(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	m, err := h.svc.GetServiceItem(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) ListServices(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListServices(c.Request().Context(), c.QueryParam("q"), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateService(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	data, err := bindPayload(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	m, err := h.svc.UpdateService(ctx, id, data, auth.ActorFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) DeleteService(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.svc.DeleteService(ctx, id, auth.ActorFromContext(ctx)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateMedicine(c echo.Context) error {
	data, err := bindPayload(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	m, err := h.svc.CreateMedicine(ctx, data, auth.ActorFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) GetMedicine(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	m, err := h.svc.GetMedicine(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) ListMedicines(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListMedicines(c.Request().Context(), c.QueryParam("q"), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateMedicine(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	data, err := bindPayload(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	m, err := h.svc.UpdateMedicine(ctx, id, data, auth.ActorFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) DeleteMedicine(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.svc.DeleteMedicine(ctx, id, auth.ActorFromContext(ctx)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateLabTest(c echo.Context) error {
	data, err := bindPayload(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	m, err := h.svc.CreateLabTest(ctx, data, auth.ActorFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) GetLabTest(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	m, err := h.svc.GetLabTest(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) ListLabTests(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListLabTests(c.Request().Context(), c.QueryParam("q"), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateLabTest(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	data, err := bindPayload(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	m, err := h.svc.UpdateLabTest(ctx, id, data, auth.ActorFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) DeleteLabTest(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.svc.DeleteLabTest(ctx, id, auth.ActorFromContext(ctx)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreatePrice(c echo.Context) error {
	data, err := bindPayload(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	p, err := h.svc.CreatePrice(ctx, data, auth.ActorFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPrice(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetPrice(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPrices(c echo.Context) error {
	hospitalID, err := pathID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPrices(c.Request().Context(), hospitalID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdatePrice(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	data, err := bindPayload(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	p, err := h.svc.UpdatePrice(ctx, id, data, auth.ActorFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePrice(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.svc.DeletePrice(ctx, id, auth.ActorFromContext(ctx)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
