package member

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
	api.GET("/members", h.ListPersons)
	api.GET("/members/:id", h.GetPerson)
	api.POST("/members", h.CreatePerson)
	api.PUT("/members/:id", h.UpdatePerson)
	api.DELETE("/members/:id", h.DeletePerson)

	api.GET("/companies", h.ListCompanies)
	api.POST("/companies", h.CreateCompany)
	api.PUT("/companies/:id", h.UpdateCompany)
	api.DELETE("/companies/:id", h.DeleteCompany)

	api.GET("/schemes", h.ListSchemes)
	api.POST("/schemes", h.CreateScheme)
	api.PUT("/schemes/:id", h.UpdateScheme)
	api.DELETE("/schemes/:id", h.DeleteScheme)
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

func (h *Handler) CreatePerson(c echo.Context) error {
	data, err := bindPayload(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	p, err := h.svc.CreatePerson(ctx, data, auth.ActorFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPerson(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.persons.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPersons(c echo.Context) error {
	pg := pagination.FromContext(c)
	var companyID, schemeID uuid.UUID
	if v := c.QueryParam("company_id"); v != "" {
		companyID, _ = uuid.Parse(v)
	}
	if v := c.QueryParam("scheme_id"); v != "" {
		schemeID, _ = uuid.Parse(v)
	}
	items, total, err := h.svc.persons.List(c.Request().Context(), companyID, schemeID, c.QueryParam("q"), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdatePerson(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	data, err := bindPayload(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	p, err := h.svc.UpdatePerson(ctx, id, data, auth.ActorFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePerson(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.svc.DeactivatePerson(ctx, id, auth.ActorFromContext(ctx)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateCompany(c echo.Context) error {
	data, err := bindPayload(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	company, err := h.svc.CreateCompany(ctx, data, auth.ActorFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, company)
}

func (h *Handler) ListCompanies(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.companies.List(c.Request().Context(), c.QueryParam("q"), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateCompany(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	data, err := bindPayload(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	company, err := h.svc.UpdateCompany(ctx, id, data, auth.ActorFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, company)
}

func (h *Handler) DeleteCompany(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.svc.DeactivateCompany(ctx, id, auth.ActorFromContext(ctx)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateScheme(c echo.Context) error {
	data, err := bindPayload(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	sc, err := h.svc.CreateScheme(ctx, data, auth.ActorFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sc)
}

func (h *Handler) ListSchemes(c echo.Context) error {
	pg := pagination.FromContext(c)
	var companyID uuid.UUID
	if v := c.QueryParam("company_id"); v != "" {
		companyID, _ = uuid.Parse(v)
	}
	items, total, err := h.svc.schemes.ListByCompany(c.Request().Context(), companyID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateScheme(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	data, err := bindPayload(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	sc, err := h.svc.UpdateScheme(ctx, id, data, auth.ActorFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sc)
}

func (h *Handler) DeleteScheme(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.svc.DeactivateScheme(ctx, id, auth.ActorFromContext(ctx)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
