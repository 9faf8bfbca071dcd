package ginmw

import (
	"net/http"

	"github.com/aymenmerabta5/actionize"
	"github.com/aymenmerabta5/actionize/middleware"
	"github.com/gin-gonic/gin"
)

// Validate parses the request submission using schema s, stores the parsed
// value in the request context, and on validation failure returns 400 with
// the issues payload.
func Validate[T any](s actionize.Schema[T], opts middleware.Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		fd, err := actionize.ParseRequest(c.Request, opts.MaxBytes)
		if err != nil {
			c.JSON(http.StatusBadRequest, middleware.ErrorPayload(err))
			c.Abort()
			return
		}
		v, err := s.Parse(c.Request.Context(), fd.ToMap())
		if err != nil {
			c.JSON(http.StatusBadRequest, middleware.ErrorPayload(err))
			c.Abort()
			return
		}
		// store the parsed value in request context
		c.Request = c.Request.WithContext(middleware.ContextWithResult(c.Request.Context(), v))
		c.Next()
	}
}

// GetResult fetches the parsed value from gin.Context.
func GetResult[T any](c *gin.Context) (T, bool) {
	return middleware.ResultFromContext[T](c.Request.Context())
}

// Handler serves a form action on a gin route.
func Handler[T, R any](cfg actionize.Config[T, R], opts middleware.Options) gin.HandlerFunc {
	return gin.WrapH(middleware.Handler(cfg, opts))
}
