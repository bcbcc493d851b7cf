package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound - запись не найдена.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateBid - исполнитель уже подал предложение по проекту.
	ErrDuplicateBid = errors.New("duplicate bid for project and merchant")
	// ErrStateConflict - условие на статус не выполнилось в момент записи.
	ErrStateConflict = errors.New("record is not in the expected state")
)

const (
	uniqueViolation      = "23505"
	bidProjectMerchantUQ = "bid_project_merchant_key"
)

// isUniqueViolation проверяет, что ошибка - нарушение уникальности (project_id, merchant_id).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation && (pgErr.ConstraintName == "" || pgErr.ConstraintName == bidProjectMerchantUQ)
}

// noRows заменяет pgx.ErrNoRows на fallback (ErrNotFound или ErrStateConflict),
// остальные ошибки возвращает как есть.
func noRows(err error, fallback error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fallback
	}
	return err
}
