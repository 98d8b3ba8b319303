package rbac

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
	api.GET("/rbac/me/roles", h.MyRoles)

	admin := api.Group("/rbac", auth.RequireAdmin(h.adminEmail))
	admin.GET("/roles", h.ListRoles)
	admin.GET("/roles/:id/permissions", h.RolePermissions)
	admin.GET("/users/:id/roles", h.UserRoles)
	admin.POST("/users/:id/roles", h.AssignRole)
	admin.DELETE("/users/:id/roles/:role", h.RemoveRole)
}

func (h *Handler) MyRoles(c echo.Context) error {
	ctx := c.Request().Context()
	uid, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}
	names, err := h.svc.RoleNamesForUser(ctx, uid, auth.UserEmailFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(http.StatusOK, map[string][]string{"roles": names})
}

func (h *Handler) ListRoles(c echo.Context) error {
	roles, err := h.svc.ListRoles(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if roles == nil {
		roles = []*Role{}
	}
	return c.JSON(http.StatusOK, roles)
}

func (h *Handler) RolePermissions(c echo.Context) error {
	var roleID int
	if err := echo.PathParamsBinder(c).Int("id", &roleID).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid role id")
	}
	perms, err := h.svc.PermissionsForRole(c.Request().Context(), roleID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if perms == nil {
		perms = []*Permission{}
	}
	return c.JSON(http.StatusOK, perms)
}

func (h *Handler) UserRoles(c echo.Context) error {
	uid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	roles, err := h.svc.roles.RolesForUser(c.Request().Context(), uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if roles == nil {
		roles = []*Role{}
	}
	return c.JSON(http.StatusOK, roles)
}

func (h *Handler) AssignRole(c echo.Context) error {
	uid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	var body struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var assignedBy *uuid.UUID
	if actor, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context())); err == nil {
		assignedBy = &actor
	}
	if err := h.svc.AssignRoleByName(c.Request().Context(), uid, body.Role, assignedBy); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RemoveRole(c echo.Context) error {
	uid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	if err := h.svc.RemoveRoleByName(c.Request().Context(), uid, c.Param("role")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
