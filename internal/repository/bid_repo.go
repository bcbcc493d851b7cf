package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BidRepository - интерфейс для работы с предложениями.
type BidRepository interface {
	CreateBid(ctx context.Context, projectId, merchantId string, bidReq models.BidRequest) (*models.Bid, error)
	GetBidById(ctx context.Context, bidId string) (*models.Bid, error)
	GetBidView(ctx context.Context, bidId string) (*models.BidView, error)
	ListBidsForProject(ctx context.Context, projectId string) ([]models.BidView, error)
	ListBidsForMerchant(ctx context.Context, merchantId string) ([]models.BidView, error)
	RejectBid(ctx context.Context, bidId string, at time.Time) (*models.Bid, error)
}

const bidColumns = `b.id, b.project_id, b.merchant_id, b.price, b.days, b.message, b.status, b.created_at, b.updated_at`

const bidViewSelect = `SELECT ` + bidColumns + `,
	COALESCE(m.name, ''), COALESCE(m.email, ''), COALESCE(p.title, '')
	FROM bid b
	LEFT JOIN users m ON m.id = b.merchant_id
	LEFT JOIN project p ON p.id = b.project_id`

// PostgresBidRepository - реализация BidRepository для базы данных.
type PostgresBidRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresBidRepository создает новый экземпляр PostgresBidRepository.
func NewPostgresBidRepository(db *pgxpool.Pool) *PostgresBidRepository {
	return &PostgresBidRepository{DB: db}
}

func bidDest(b *models.Bid) []any {
	return []any{
		&b.ID,
		&b.ProjectID,
		&b.MerchantID,
		&b.Price,
		&b.Days,
		&b.Message,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	}
}

func scanBid(row pgx.Row) (*models.Bid, error) {
	var bid models.Bid
	if err := row.Scan(bidDest(&bid)...); err != nil {
		return nil, err
	}
	return &bid, nil
}

func scanBidView(row pgx.Row) (*models.BidView, error) {
	var view models.BidView
	dest := append(bidDest(&view.Bid), &view.MerchantName, &view.MerchantEmail, &view.ProjectTitle)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &view, nil
}

func (r *PostgresBidRepository) listBidViews(ctx context.Context, query string, args ...interface{}) ([]models.BidView, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bids := []models.BidView{}
	for rows.Next() {
		bid, err := scanBidView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bid row: %w", err)
		}
		bids = append(bids, *bid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bid rows: %w", err)
	}
	return bids, nil
}

// CreateBid создает новое предложение. Проект блокируется на время вставки, чтобы
// предложение не появилось у уже присуждённого проекта. Первое предложение
// переводит опубликованный проект в InBidding.
func (r *PostgresBidRepository) CreateBid(ctx context.Context, projectId, merchantId string, bidReq models.BidRequest) (*models.Bid, error) {
	now := time.Now().UTC()
	newBid := models.Bid{
		ID:         uuid.New().String(),
		ProjectID:  projectId,
		MerchantID: merchantId,
		Price:      bidReq.Price,
		Days:       bidReq.Days,
		Message:    bidReq.Message,
		Status:     models.PendingBid,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := pgx.BeginFunc(ctx, r.DB, func(tx pgx.Tx) error {
		var status models.ProjectStatus
		err := tx.QueryRow(ctx, `SELECT status FROM project WHERE id = $1 FOR UPDATE`, projectId).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock project: %w", err)
		}
		if !status.IsBiddable() {
			return ErrStateConflict
		}

		insertQuery := `INSERT INTO bid (id, project_id, merchant_id, price, days, message, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
		_, err = tx.Exec(
			ctx,
			insertQuery,
			newBid.ID,
			newBid.ProjectID,
			newBid.MerchantID,
			newBid.Price,
			newBid.Days,
			newBid.Message,
			newBid.Status,
			newBid.CreatedAt,
			newBid.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateBid
			}
			return fmt.Errorf("failed to insert bid: %w", err)
		}

		_, err = tx.Exec(ctx, `UPDATE project SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
			models.InBiddingProject, now, projectId, models.PublishedProject)
		if err != nil {
			return fmt.Errorf("failed to open bidding: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &newBid, nil
}

// GetBidById получает предложение по ID.
func (r *PostgresBidRepository) GetBidById(ctx context.Context, bidId string) (*models.Bid, error) {
	bid, err := scanBid(r.DB.QueryRow(ctx, `SELECT `+bidColumns+` FROM bid b WHERE b.id = $1`, bidId))
	if err != nil {
		return nil, noRows(err, ErrNotFound)
	}
	return bid, nil
}

// GetBidView получает предложение вместе с именем исполнителя.
func (r *PostgresBidRepository) GetBidView(ctx context.Context, bidId string) (*models.BidView, error) {
	bid, err := scanBidView(r.DB.QueryRow(ctx, bidViewSelect+` WHERE b.id = $1`, bidId))
	if err != nil {
		return nil, noRows(err, ErrNotFound)
	}
	return bid, nil
}

// ListBidsForProject возвращает предложения по проекту, новые первыми.
func (r *PostgresBidRepository) ListBidsForProject(ctx context.Context, projectId string) ([]models.BidView, error) {
	query := bidViewSelect + `
		WHERE b.project_id = $1
		ORDER BY b.created_at DESC, b.id`
	bids, err := r.listBidViews(ctx, query, projectId)
	if err != nil {
		return nil, fmt.Errorf("failed to list project bids: %w", err)
	}
	return bids, nil
}

// ListBidsForMerchant возвращает все предложения исполнителя, новые первыми.
func (r *PostgresBidRepository) ListBidsForMerchant(ctx context.Context, merchantId string) ([]models.BidView, error) {
	query := bidViewSelect + `
		WHERE b.merchant_id = $1
		ORDER BY b.created_at DESC, b.id`
	bids, err := r.listBidViews(ctx, query, merchantId)
	if err != nil {
		return nil, fmt.Errorf("failed to list merchant bids: %w", err)
	}
	return bids, nil
}

// RejectBid отклоняет одно предложение, ожидающее решения. Проект не меняется.
func (r *PostgresBidRepository) RejectBid(ctx context.Context, bidId string, at time.Time) (*models.Bid, error) {
	query := `UPDATE bid AS b SET status = $2, updated_at = $3
		WHERE b.id = $1 AND b.status = $4
		RETURNING ` + bidColumns
	bid, err := scanBid(r.DB.QueryRow(ctx, query, bidId, models.RejectedBid, at, models.PendingBid))
	if err != nil {
		return nil, noRows(err, ErrStateConflict)
	}
	return bid, nil
}
