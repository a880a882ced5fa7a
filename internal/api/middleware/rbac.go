package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/storefront/commerce-api/internal/api/metrics"
	"github.com/storefront/commerce-api/internal/core/domain"
)

// RBAC admits only callers whose role is exactly one of allowedRoles.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	return guard(func(r domain.Role) bool {
		return domain.AllowedExact(r, allowedRoles...)
	})
}

// RequireRole admits callers whose role includes min through the role
// hierarchy, e.g. RequireRole(domain.RoleCashier) admits managers and admins.
func RequireRole(min domain.Role) echo.MiddlewareFunc {
	return guard(func(r domain.Role) bool {
		return r.Satisfies(min)
	})
}

func guard(allowed func(domain.Role) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := Identity(c)
			if !ok {
				return domain.ErrUnauthenticated
			}
			if !allowed(identity.Role) {
				metrics.AuthFailuresTotal.WithLabelValues("forbidden").Inc()
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
