package echomw

import (
	"net/http"

	"github.com/aymenmerabta5/actionize"
	"github.com/aymenmerabta5/actionize/middleware"
	"github.com/labstack/echo/v4"
)

// Validate parses the request submission via schema s, stores the parsed
// value in the request context on success, or returns 400 with the issues.
func Validate[T any](s actionize.Schema[T], opts middleware.Options) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			fd, err := actionize.ParseRequest(c.Request(), opts.MaxBytes)
			if err != nil {
				return c.JSON(http.StatusBadRequest, middleware.ErrorPayload(err))
			}
			v, err := s.Parse(c.Request().Context(), fd.ToMap())
			if err != nil {
				return c.JSON(http.StatusBadRequest, middleware.ErrorPayload(err))
			}
			ctx := middleware.ContextWithResult(c.Request().Context(), v)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetResult fetches the parsed value from echo.Context.
func GetResult[T any](c echo.Context) (T, bool) {
	return middleware.ResultFromContext[T](c.Request().Context())
}

// Handler serves a form action on an echo route.
func Handler[T, R any](cfg actionize.Config[T, R], opts middleware.Options) echo.HandlerFunc {
	return echo.WrapHandler(middleware.Handler(cfg, opts))
}
