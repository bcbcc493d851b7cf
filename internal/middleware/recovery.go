package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/senyabanana/marketplace-service/internal/utils"

	"github.com/gin-gonic/gin"
)

// Recovery перехватывает панику в обработчике и отвечает 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic recovered",
					"error", err,
					"request_id", GetRequestID(c),
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)
				utils.SendErrorResponse(c, http.StatusInternalServerError, "internal server error")
			}
		}()

		c.Next()
	}
}
