package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/pkg/logger"
	"github.com/senyabanana/marketplace-service/internal/pkg/token"
	"github.com/senyabanana/marketplace-service/internal/utils"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// JWTAuth проверяет bearer-токен и сохраняет пользователя в контексте запроса.
func JWTAuth(tokens *token.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			utils.SendErrorResponse(c, http.StatusUnauthorized, "authorization header is missing")
			return
		}

		scheme, raw, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			utils.SendErrorResponse(c, http.StatusUnauthorized, "authorization header must be Bearer <token>")
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(raw))
		if err != nil {
			utils.SendErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		role, err := models.ParseRole(claims.Role)
		if err != nil {
			utils.SendErrorResponse(c, http.StatusUnauthorized, "token carries an unknown role")
			return
		}

		c.Set(actorKey, models.Actor{UserID: claims.UserID, Role: role})
		ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole пропускает только роли, для которых allowed возвращает true.
// Используется вместе с методами models.Role: RequireRole(models.Role.CanBid).
func RequireRole(allowed func(models.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			utils.SendErrorResponse(c, http.StatusUnauthorized, "authentication required")
			return
		}
		if !allowed(actor.Role) {
			utils.SendErrorResponse(c, http.StatusForbidden, "access denied: insufficient permissions")
			return
		}
		c.Next()
	}
}

// ActorFrom возвращает пользователя, сохранённого JWTAuth.
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	value, exists := c.Get(actorKey)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := value.(models.Actor)
	return actor, ok
}

