package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/senyabanana/marketplace-service/internal/middleware"
	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/pkg/logger"
	"github.com/senyabanana/marketplace-service/internal/utils"

	"github.com/gin-gonic/gin"
)

// sendError отвечает клиенту ошибкой сервиса. Внутренние ошибки отдаются как 500
// с сообщением fallback, исходный текст виден только при exposeInternal.
func sendError(c *gin.Context, l *slog.Logger, exposeInternal bool, err error, fallback string) {
	log := logger.WithContext(c.Request.Context(), l).With("method", c.Request.Method, "path", c.FullPath())

	var errorResponse *models.ErrorResponse
	if errors.As(err, &errorResponse) {
		log.Warn("request rejected", "status", errorResponse.StatusCode, "error", errorResponse.Message)
		utils.SendErrorResponse(c, errorResponse.StatusCode, errorResponse.Message, errorResponse.Errors...)
		return
	}

	log.Error(fallback, "error", err)
	message := fallback
	if exposeInternal {
		message = fallback + ": " + err.Error()
	}
	utils.SendErrorResponse(c, http.StatusInternalServerError, message)
}

// currentActor достаёт пользователя из контекста или отвечает 401.
func currentActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		utils.SendErrorResponse(c, http.StatusUnauthorized, "authentication required")
	}
	return actor, ok
}
