package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/limcoins/user-service/internal/core/domain"
)

// RBAC lets the request through only when the role set by Auth is one of
// allowedRoles. Per-user ownership checks happen in the services.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if !allowed[role] {
				return fmt.Errorf("%s %s needs role %v: %w", c.Request().Method, c.Path(), allowedRoles, domain.ErrForbidden)
			}
			return next(c)
		}
	}
}
