package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// ProjectRepository - интерфейс для работы с проектами.
type ProjectRepository interface {
	CreateProject(ctx context.Context, customerId string, req models.ProjectRequest) (*models.Project, error)
	GetProjectById(ctx context.Context, projectId string) (*models.Project, error)
	GetProjectView(ctx context.Context, projectId string) (*models.ProjectView, error)
	ListProjects(ctx context.Context, filter models.ProjectFilter) ([]models.ProjectView, int64, error)
	ListOpenProjects(ctx context.Context, limit int) ([]models.ProjectView, error)
	ListCustomerProjects(ctx context.Context, customerId string) ([]models.ProjectView, error)
	UpdateProject(ctx context.Context, projectId string, update models.ProjectUpdate, allowed []models.ProjectStatus) (*models.Project, error)
	DeleteProject(ctx context.Context, projectId string, allowed []models.ProjectStatus) error
	TransitionStatus(ctx context.Context, projectId string, from []models.ProjectStatus, to models.ProjectStatus) (*models.Project, error)
	AwardBid(ctx context.Context, award models.Award) error
	MarkDelivered(ctx context.Context, projectId, note string, at time.Time) (*models.Project, error)
	AcceptDelivery(ctx context.Context, projectId string, at time.Time) (*models.Project, error)
	RejectDelivery(ctx context.Context, projectId, reason string, at time.Time) (*models.Project, error)
	RateMerchant(ctx context.Context, projectId string, rating int, comment string, at time.Time) (*models.Project, error)
}

const projectColumns = `p.id, p.customer_id, p.title, p.description, p.ptype, p.material, p.width, p.height,
	p.quantity, p.price_per_meter, p.total, p.days, p.items, p.status, p.assigned_merchant_id, p.awarded_bid_id,
	p.execution_started_at, p.execution_due_at, p.delivery_status, p.delivery_note, p.delivered_at,
	p.delivery_rejection_reason, p.completed_at, p.merchant_rating, p.rating_comment, p.created_at, p.updated_at`

const projectViewColumns = projectColumns + `,
	COALESCE(c.name, ''), COALESCE(c.email, ''), COALESCE(m.name, ''), COALESCE(m.email, '')`

const projectViewFrom = `FROM project p
	LEFT JOIN users c ON c.id = p.customer_id
	LEFT JOIN users m ON m.id = p.assigned_merchant_id`

const projectViewSelect = `SELECT ` + projectViewColumns + ` ` + projectViewFrom

// sortColumns - поля, по которым разрешена сортировка.
var sortColumns = map[string]string{
	"createdAt": "p.created_at",
	"updatedAt": "p.updated_at",
	"title":     "p.title",
	"total":     "p.total",
	"status":    "p.status",
}

// SortColumn возвращает колонку для поля сортировки из запроса.
func SortColumn(sortBy string) (string, bool) {
	if sortBy == "" {
		return sortColumns["createdAt"], true
	}
	column, ok := sortColumns[sortBy]
	return column, ok
}

// PostgresProjectRepository - реализация ProjectRepository для базы данных.
type PostgresProjectRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresProjectRepository создаёт новый экземпляр PostgresProjectRepository.
func NewPostgresProjectRepository(db *pgxpool.Pool) *PostgresProjectRepository {
	return &PostgresProjectRepository{DB: db}
}

func projectDest(p *models.Project) []any {
	return []any{
		&p.ID,
		&p.CustomerID,
		&p.Title,
		&p.Description,
		&p.PType,
		&p.Material,
		&p.Width,
		&p.Height,
		&p.Quantity,
		&p.PricePerMeter,
		&p.Total,
		&p.Days,
		&p.Items,
		&p.Status,
		&p.AssignedMerchantID,
		&p.AwardedBidID,
		&p.ExecutionStartedAt,
		&p.ExecutionDueAt,
		&p.DeliveryStatus,
		&p.DeliveryNote,
		&p.DeliveredAt,
		&p.DeliveryRejectionReason,
		&p.CompletedAt,
		&p.MerchantRating,
		&p.RatingComment,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	if err := row.Scan(projectDest(&p)...); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProjectView(row pgx.Row, extra ...any) (*models.ProjectView, error) {
	var v models.ProjectView
	dest := append(projectDest(&v.Project), &v.CustomerName, &v.CustomerEmail, &v.MerchantName, &v.MerchantEmail)
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &v, nil
}

func collectProjectViews(rows pgx.Rows) ([]models.ProjectView, error) {
	defer rows.Close()

	projects := []models.ProjectView{}
	for rows.Next() {
		project, err := scanProjectView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}
	return projects, nil
}

func statusStrings(statuses []models.ProjectStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, string(status))
	}
	return out
}

// CreateProject создает новый проект в статусе Draft.
func (r *PostgresProjectRepository) CreateProject(ctx context.Context, customerId string, req models.ProjectRequest) (*models.Project, error) {
	now := time.Now().UTC()
	items := req.Items
	if items == nil {
		items = []models.ProjectItem{}
	}
	newProject := models.Project{
		ID:            uuid.New().String(),
		CustomerID:    customerId,
		Title:         req.Title,
		Description:   req.Description,
		PType:         req.PType,
		Material:      req.Material,
		Width:         req.Width,
		Height:        req.Height,
		Quantity:      req.Quantity,
		PricePerMeter: req.PricePerMeter,
		Total:         req.Total,
		Days:          req.Days,
		Items:         items,
		Status:        models.DraftProject,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO project (id, customer_id, title, description, ptype, material, width, height,
			quantity, price_per_meter, total, days, items, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		newProject.ID,
		newProject.CustomerID,
		newProject.Title,
		newProject.Description,
		newProject.PType,
		newProject.Material,
		newProject.Width,
		newProject.Height,
		newProject.Quantity,
		newProject.PricePerMeter,
		newProject.Total,
		newProject.Days,
		newProject.Items,
		newProject.Status,
		newProject.CreatedAt,
		newProject.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert project: %w", err)
	}
	return &newProject, nil
}

// GetProjectById возвращает проект по ID.
func (r *PostgresProjectRepository) GetProjectById(ctx context.Context, projectId string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM project p WHERE p.id = $1`
	project, err := scanProject(r.DB.QueryRow(ctx, query, projectId))
	if err != nil {
		return nil, noRows(err, ErrNotFound)
	}
	return project, nil
}

// GetProjectView возвращает проект вместе с именами заказчика и исполнителя.
func (r *PostgresProjectRepository) GetProjectView(ctx context.Context, projectId string) (*models.ProjectView, error) {
	project, err := scanProjectView(r.DB.QueryRow(ctx, projectViewSelect+` WHERE p.id = $1`, projectId))
	if err != nil {
		return nil, noRows(err, ErrNotFound)
	}
	return project, nil
}

// ListProjects возвращает страницу проектов и общее количество по фильтру.
func (r *PostgresProjectRepository) ListProjects(ctx context.Context, filter models.ProjectFilter) ([]models.ProjectView, int64, error) {
	qb := NewQueryBuilder()
	qb.AddSearch(filter.Query, "p.title", "p.description")
	if filter.Status != "" {
		qb.AddCondition("p.status", filter.Status)
	}

	sortColumn, ok := SortColumn(filter.SortBy)
	if !ok {
		return nil, 0, fmt.Errorf("unsupported sort field %q", filter.SortBy)
	}
	direction := "DESC"
	if strings.EqualFold(filter.SortDirection, "asc") {
		direction = "ASC"
	}

	limit := filter.PageSize
	offset := (filter.Page - 1) * filter.PageSize
	argNum := qb.NextArgNum()

	// SAFETY: sortColumn и direction берутся только из белого списка выше.
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		%s
		%s
		ORDER BY %s %s, p.id
		LIMIT $%d OFFSET $%d`,
		projectViewColumns, projectViewFrom, qb.WhereClause(),
		sortColumn, direction,
		argNum, argNum+1)
	args := append(qb.Args(), limit, offset)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := []models.ProjectView{}
	var total int64
	for rows.Next() {
		project, err := scanProjectView(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating project rows: %w", err)
	}

	// За последней страницей строк нет, и COUNT(*) OVER() нечего вернуть.
	if len(projects) == 0 && offset > 0 {
		countQuery := `SELECT COUNT(*) FROM project p ` + qb.WhereClause()
		if err := r.DB.QueryRow(ctx, countQuery, qb.Args()...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("failed to count projects: %w", err)
		}
	}
	return projects, total, nil
}

// ListOpenProjects возвращает проекты, открытые для предложений, от новых к старым.
func (r *PostgresProjectRepository) ListOpenProjects(ctx context.Context, limit int) ([]models.ProjectView, error) {
	qb := NewQueryBuilder()
	qb.AddAny("p.status", statusStrings(models.BiddableStatuses))
	query := fmt.Sprintf(`%s %s ORDER BY p.created_at DESC, p.id LIMIT $%d`,
		projectViewSelect, qb.WhereClause(), qb.NextArgNum())
	rows, err := r.DB.Query(ctx, query, append(qb.Args(), limit)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query open projects: %w", err)
	}
	return collectProjectViews(rows)
}

// ListCustomerProjects возвращает проекты заказчика от новых к старым.
func (r *PostgresProjectRepository) ListCustomerProjects(ctx context.Context, customerId string) ([]models.ProjectView, error) {
	query := projectViewSelect + `
		WHERE p.customer_id = $1
		ORDER BY p.created_at DESC`
	rows, err := r.DB.Query(ctx, query, customerId)
	if err != nil {
		return nil, fmt.Errorf("failed to query customer projects: %w", err)
	}
	return collectProjectViews(rows)
}

// UpdateProject меняет коммерческие поля проекта, пока его статус входит в allowed.
func (r *PostgresProjectRepository) UpdateProject(ctx context.Context, projectId string, update models.ProjectUpdate, allowed []models.ProjectStatus) (*models.Project, error) {
	var updates []string
	args := []interface{}{projectId} // Первый аргумент всегда будет projectId
	argIndex := 2

	set := func(column string, value interface{}) {
		updates = append(updates, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if update.Title != nil {
		set("title", *update.Title)
	}
	if update.Description != nil {
		set("description", *update.Description)
	}
	if update.PType != nil {
		set("ptype", *update.PType)
	}
	if update.Material != nil {
		set("material", *update.Material)
	}
	if update.Width != nil {
		set("width", *update.Width)
	}
	if update.Height != nil {
		set("height", *update.Height)
	}
	if update.Quantity != nil {
		set("quantity", *update.Quantity)
	}
	if update.PricePerMeter != nil {
		set("price_per_meter", *update.PricePerMeter)
	}
	if update.Total != nil {
		set("total", *update.Total)
	}
	if update.Days != nil {
		set("days", *update.Days)
	}
	if update.Items != nil {
		items := *update.Items
		if items == nil {
			items = []models.ProjectItem{}
		}
		set("items", items)
	}

	if len(updates) == 0 {
		return nil, errors.New("no valid fields to update")
	}

	set("updated_at", time.Now().UTC())
	updateQuery := fmt.Sprintf(`UPDATE project AS p SET %s WHERE p.id = $1 AND p.status = ANY($%d) RETURNING %s`,
		strings.Join(updates, ", "), argIndex, projectColumns)
	args = append(args, pq.Array(statusStrings(allowed)))

	project, err := scanProject(r.DB.QueryRow(ctx, updateQuery, args...))
	if err != nil {
		return nil, noRows(err, ErrStateConflict)
	}
	return project, nil
}

// DeleteProject удаляет проект, если его статус входит в allowed. Предложения удаляются каскадно.
func (r *PostgresProjectRepository) DeleteProject(ctx context.Context, projectId string, allowed []models.ProjectStatus) error {
	result, err := r.DB.Exec(ctx, `DELETE FROM project WHERE id = $1 AND status = ANY($2)`,
		projectId, pq.Array(statusStrings(allowed)))
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrStateConflict
	}
	return nil
}

// TransitionStatus переводит проект в статус to, если текущий статус входит в from.
func (r *PostgresProjectRepository) TransitionStatus(ctx context.Context, projectId string, from []models.ProjectStatus, to models.ProjectStatus) (*models.Project, error) {
	query := `UPDATE project AS p SET status = $2, updated_at = $3
		WHERE p.id = $1 AND p.status = ANY($4)
		RETURNING ` + projectColumns
	return r.updateReturning(ctx, query, projectId, to, time.Now().UTC(), pq.Array(statusStrings(from)))
}

// AwardBid в одной транзакции принимает выбранное предложение, отклоняет остальные
// и переводит проект в InProgress.
func (r *PostgresProjectRepository) AwardBid(ctx context.Context, award models.Award) error {
	return pgx.BeginFunc(ctx, r.DB, func(tx pgx.Tx) error {
		var status models.ProjectStatus
		err := tx.QueryRow(ctx, `SELECT status FROM project WHERE id = $1 FOR UPDATE`, award.ProjectID).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock project: %w", err)
		}
		if !status.IsBiddable() {
			return ErrStateConflict
		}

		_, err = tx.Exec(ctx, `UPDATE bid SET status = $1, updated_at = $2 WHERE project_id = $3 AND id <> $4`,
			models.RejectedBid, award.StartedAt, award.ProjectID, award.BidID)
		if err != nil {
			return fmt.Errorf("failed to reject competing bids: %w", err)
		}

		accepted, err := tx.Exec(ctx, `UPDATE bid SET status = $1, updated_at = $2 WHERE id = $3 AND project_id = $4`,
			models.AcceptedBid, award.StartedAt, award.BidID, award.ProjectID)
		if err != nil {
			return fmt.Errorf("failed to accept bid: %w", err)
		}
		if accepted.RowsAffected() != 1 {
			return ErrNotFound
		}

		_, err = tx.Exec(ctx, `
			UPDATE project
			SET status = $1, assigned_merchant_id = $2, awarded_bid_id = $3,
				execution_started_at = $4, execution_due_at = $5, updated_at = $4
			WHERE id = $6`,
			models.InProgressProject,
			award.MerchantID,
			award.BidID,
			award.StartedAt,
			award.DueAt,
			award.ProjectID)
		if err != nil {
			return fmt.Errorf("failed to update awarded project: %w", err)
		}
		return nil
	})
}

// MarkDelivered отмечает сдачу работ исполнителем.
func (r *PostgresProjectRepository) MarkDelivered(ctx context.Context, projectId, note string, at time.Time) (*models.Project, error) {
	query := `UPDATE project AS p
		SET delivery_status = $2, delivery_note = $3, delivered_at = $4, delivery_rejection_reason = '', updated_at = $4
		WHERE p.id = $1 AND p.status = $5 AND p.delivery_status <> $2
		RETURNING ` + projectColumns
	return r.updateReturning(ctx, query, projectId, models.DeliveredProject, note, at, models.InProgressProject)
}

// AcceptDelivery принимает сданные работы и завершает проект.
func (r *PostgresProjectRepository) AcceptDelivery(ctx context.Context, projectId string, at time.Time) (*models.Project, error) {
	query := `UPDATE project AS p
		SET status = $2, delivery_status = $3, completed_at = $4, updated_at = $4
		WHERE p.id = $1 AND p.status = $5 AND p.delivery_status = $6
		RETURNING ` + projectColumns
	return r.updateReturning(ctx, query, projectId,
		models.CompletedProject, models.AcceptedDelivery, at, models.InProgressProject, models.DeliveredProject)
}

// RejectDelivery возвращает сданные работы исполнителю, проект остаётся InProgress.
func (r *PostgresProjectRepository) RejectDelivery(ctx context.Context, projectId, reason string, at time.Time) (*models.Project, error) {
	query := `UPDATE project AS p
		SET delivery_status = $2, delivery_rejection_reason = $3, updated_at = $4
		WHERE p.id = $1 AND p.status = $5 AND p.delivery_status = $6
		RETURNING ` + projectColumns
	return r.updateReturning(ctx, query, projectId,
		models.RejectedDelivery, reason, at, models.InProgressProject, models.DeliveredProject)
}

// RateMerchant сохраняет оценку исполнителя по завершённому проекту. Оценить можно один раз.
func (r *PostgresProjectRepository) RateMerchant(ctx context.Context, projectId string, rating int, comment string, at time.Time) (*models.Project, error) {
	query := `UPDATE project AS p
		SET merchant_rating = $2, rating_comment = $3, updated_at = $4
		WHERE p.id = $1 AND p.status = $5 AND p.merchant_rating IS NULL
		RETURNING ` + projectColumns
	return r.updateReturning(ctx, query, projectId, rating, comment, at, models.CompletedProject)
}

func (r *PostgresProjectRepository) updateReturning(ctx context.Context, query string, args ...interface{}) (*models.Project, error) {
	project, err := scanProject(r.DB.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, noRows(err, ErrStateConflict)
	}
	return project, nil
}
