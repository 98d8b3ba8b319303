package practitioner

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medicareperu/clinic-api/internal/platform/auth"
)

type Handler struct {
	svc        *Service
	adminEmail string
}

func NewHandler(svc *Service, adminEmail string) *Handler {
	return &Handler{svc: svc, adminEmail: adminEmail}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/practitioners", h.List)
	api.GET("/practitioners/specialties", h.ListSpecialties)
	api.GET("/practitioners/:id", h.Get)
	api.GET("/practitioners/:id/fee", h.GetFee)

	admin := api.Group("", auth.RequireAdmin(h.adminEmail))
	admin.POST("/practitioners", h.Create)
	admin.PATCH("/practitioners/:id/active", h.SetActive)
}

func (h *Handler) List(c echo.Context) error {
	items, err := h.svc.ListActive(c.Request().Context(), c.QueryParam("specialty"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Practitioner{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListSpecialties(c echo.Context) error {
	return c.JSON(http.StatusOK, Specialties)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) GetFee(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	fee, err := h.svc.Fee(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
	}
	return c.JSON(http.StatusOK, map[string]float64{"consultation_fee": fee})
}

func (h *Handler) Create(c echo.Context) error {
	var p Practitioner
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) SetActive(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body struct {
		Active bool `json:"active"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SetActive(c.Request().Context(), id, body.Active); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
