package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PingHandler обрабатывает GET запрос к /api/ping
func PingHandler(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
