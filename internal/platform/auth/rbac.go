package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// AdminRole is the role name that grants unrestricted access.
const AdminRole = "administrador"

// RequireRole returns middleware that checks if the user has at least one of
// the specified roles. The administrator role always passes.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userRoles := RolesFromContext(c.Request().Context())
			for _, required := range roles {
				for _, has := range userRoles {
					if has == required || has == AdminRole {
						return next(c)
					}
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// RequireAdmin returns middleware that grants access to administrators. The
// configured admin email is always treated as an administrator, checked
// before any role inspection; otherwise the administrator role decides.
func RequireAdmin(adminEmail string) echo.MiddlewareFunc {
	adminEmail = strings.ToLower(strings.TrimSpace(adminEmail))
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if adminEmail != "" && UserEmailFromContext(ctx) == adminEmail {
				return next(c)
			}
			for _, has := range RolesFromContext(ctx) {
				if has == AdminRole {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "se requiere rol de administrador")
		}
	}
}
