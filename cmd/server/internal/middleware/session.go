package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/portfoliobuilder/intake/cmd/server/internal/session"
	"github.com/portfoliobuilder/intake/internal/logger"
)

// Session loads the visitor's session and writes it back just before the
// response headers go out.
func Session(m *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			st := m.Load(req)
			session.Set(c, st)

			c.Response().Before(func() {
				if err := st.Save(req, c.Response()); err != nil {
					logger.Logger.ErrorContext(req.Context(), "failed to save session", "error", err)
				}
			})

			return next(c)
		}
	}
}
