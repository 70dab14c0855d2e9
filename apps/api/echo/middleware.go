package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kmr-srbh/paper-desktop/core/session"
)

// unlockedMiddleware lets requests carrying a valid unlock token dispatch any command.
func unlockedMiddleware(a *auth) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, err := a.getContextClaims(ctx); err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			req := ctx.Request()
			ctx.SetRequest(req.WithContext(session.WithUnlocked(req.Context())))
			return next(ctx)
		}
	}
}
