package models

import "net/http"

// FieldError описывает ошибку валидации отдельного поля.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse описывает ошибку с кодом и сообщением.
type ErrorResponse struct {
	StatusCode int          `json:"-"`
	Success    bool         `json:"success"`
	Message    string       `json:"message"`
	Errors     []FieldError `json:"errors,omitempty"`
}

// NewErrorResponse создает новую ошибку с кодом и сообщением.
func NewErrorResponse(statusCode int, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusCode,
		Message:    message}
}

// NewValidationError - некорректные входные данные (400).
func NewValidationError(message string, fields ...FieldError) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: http.StatusBadRequest,
		Message:    message,
		Errors:     fields,
	}
}

// NewDuplicateBidError - исполнитель уже подал предложение по проекту (409).
func NewDuplicateBidError() *ErrorResponse {
	return NewErrorResponse(http.StatusConflict, "you have already placed a bid on this project")
}

// NewConflictError - операция недопустима в текущем состоянии (409).
func NewConflictError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusConflict, message)
}

// NewNotFoundError - ресурс не найден (404).
func NewNotFoundError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusNotFound, message)
}

// NewForbiddenError - у пользователя нет прав на ресурс (403).
func NewForbiddenError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusForbidden, message)
}

// NewUnauthorizedError - запрос без валидной аутентификации (401).
func NewUnauthorizedError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusUnauthorized, message)
}

// Реализация метода Error() для удовлетворения интерфейса error.
func (e *ErrorResponse) Error() string {
	return e.Message
}
