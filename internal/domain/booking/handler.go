package booking

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medicareperu/clinic-api/internal/domain/payment"
	"github.com/medicareperu/clinic-api/internal/domain/practitioner"
	"github.com/medicareperu/clinic-api/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/bookings/validate", h.Validate)
	api.POST("/bookings/payments", h.RegisterPayment)
	api.POST("/bookings/confirm", h.Confirm)
}

func currentPatient(c echo.Context) (uuid.UUID, string, string, error) {
	ctx := c.Request().Context()
	id, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return uuid.Nil, "", "", echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}
	return id, auth.UserNameFromContext(ctx), auth.UserEmailFromContext(ctx), nil
}

func (h *Handler) Validate(c echo.Context) error {
	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	fieldErrs := ValidateForm(req.PractitionerID, req.Date, req.Time, req.Phone, req.Reason)
	if len(fieldErrs) > 0 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"valid": false, "errors": fieldErrs})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"valid": true})
}

func (h *Handler) RegisterPayment(c echo.Context) error {
	patientID, name, email, err := currentPatient(c)
	if err != nil {
		return err
	}
	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.svc.RegisterPayment(c.Request().Context(), patientID, name, email, &req)
	if err != nil {
		var stepErr *StepError
		if errors.As(err, &stepErr) {
			return c.JSON(http.StatusInternalServerError, stepErr)
		}
		if errors.Is(err, practitioner.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *Handler) Confirm(c echo.Context) error {
	patientID, _, _, err := currentPatient(c)
	if err != nil {
		return err
	}
	var req ConfirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.svc.Confirm(c.Request().Context(), patientID, &req)
	if err != nil {
		var stepErr *StepError
		if errors.As(err, &stepErr) {
			return c.JSON(http.StatusInternalServerError, stepErr)
		}
		if errors.Is(err, payment.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	status := http.StatusCreated
	if res.AlreadyLinked {
		status = http.StatusOK
	}
	return c.JSON(status, res)
}
