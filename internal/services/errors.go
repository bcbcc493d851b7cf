package services

import (
	"errors"
	"fmt"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/pkg/validator"
	"github.com/senyabanana/marketplace-service/internal/repository"
)

// translate переводит ошибки репозитория в ErrorResponse. Прочие ошибки оборачиваются и
// уходят наверх как внутренние.
func translate(err error, op, notFound, conflict string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return models.NewNotFoundError(notFound)
	case errors.Is(err, repository.ErrDuplicateBid):
		return models.NewDuplicateBidError()
	case errors.Is(err, repository.ErrStateConflict):
		return models.NewConflictError(conflict)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// validateRequest возвращает ошибку валидации с деталями по полям.
func validateRequest(v interface{}) error {
	if fields := validator.Validate(v); len(fields) > 0 {
		return models.NewValidationError("validation failed", fields...)
	}
	return nil
}
