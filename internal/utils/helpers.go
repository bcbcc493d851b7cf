package utils

import (
	"fmt"
	"strconv"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	MaxPage         = 100000 // (MaxPage-1)*MaxPageSize помещается в int и в OFFSET
)

// SendErrorResponse отправляет ошибку в формате JSON
func SendErrorResponse(c *gin.Context, statusCode int, message string, fields ...models.FieldError) {
	c.AbortWithStatusJSON(statusCode, models.ErrorResponse{
		StatusCode: statusCode,
		Success:    false,
		Message:    message,
		Errors:     fields,
	})
}

// SendSuccess отправляет успешный ответ вида {"success": true, key: value}
func SendSuccess(c *gin.Context, statusCode int, key string, value interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		key:       value,
	})
}

// ParsePage обрабатывает page и pageSize
func ParsePage(pageStr, pageSizeStr string) (int, int, error) {
	page, pageSize := 1, DefaultPageSize
	var err error

	if pageStr != "" {
		page, err = strconv.Atoi(pageStr)
		if err != nil || page < 1 || page > MaxPage {
			return 0, 0, fmt.Errorf("invalid page parameter, must be a positive integer [1:%d]", MaxPage)
		}
	}

	if pageSizeStr != "" {
		pageSize, err = strconv.Atoi(pageSizeStr)
		if err != nil || pageSize <= 0 || pageSize > MaxPageSize {
			return 0, 0, fmt.Errorf("invalid pageSize parameter, must be a positive integer [1:%d]", MaxPageSize)
		}
	}

	return page, pageSize, nil
}

// Contains - проверка вхождения значения в список (например, допустимых переходов статуса)
func Contains[T comparable](values []T, value T) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
