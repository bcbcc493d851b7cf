package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/utils"
)

// OpenProjectsLimit - максимальный размер списка открытых проектов.
const OpenProjectsLimit = 200

var (
	// editableStatuses - статусы, в которых заказчик может менять поля проекта.
	editableStatuses = []models.ProjectStatus{models.DraftProject, models.PublishedProject, models.InBiddingProject}
	// deletableStatuses - статусы, в которых проект можно удалить.
	deletableStatuses = []models.ProjectStatus{models.DraftProject, models.PublishedProject, models.InBiddingProject, models.CancelledProject}
)

type ProjectService struct {
	Repo repository.ProjectRepository
}

// NewProjectService создает новый экземпляр ProjectService.
func NewProjectService(repo repository.ProjectRepository) *ProjectService {
	return &ProjectService{Repo: repo}
}

// CreateProject создает проект в статусе Draft.
func (s *ProjectService) CreateProject(ctx context.Context, actor models.Actor, req models.ProjectRequest) (*models.Project, error) {
	if !actor.Role.CanOwnProjects() {
		return nil, models.NewForbiddenError("only customers can create projects")
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Items == nil {
		req.Items = []models.ProjectItem{}
	}

	project, err := s.Repo.CreateProject(ctx, actor.UserID, req)
	if err != nil {
		return nil, translate(err, "create project", "", "")
	}
	return project, nil
}

// GetProjectById возвращает проект с именами заказчика и исполнителя.
func (s *ProjectService) GetProjectById(ctx context.Context, projectId string) (*models.ProjectView, error) {
	project, err := s.Repo.GetProjectView(ctx, projectId)
	if err != nil {
		return nil, translate(err, "get project", "project not found", "")
	}
	return project, nil
}

// ListProjects ищет проекты по фильтру и возвращает одну страницу.
func (s *ProjectService) ListProjects(ctx context.Context, filter models.ProjectFilter) (*models.ProjectPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > utils.MaxPageSize {
		filter.PageSize = utils.DefaultPageSize
	}
	filter.Query = strings.TrimSpace(filter.Query)

	if filter.Page > utils.MaxPage {
		return nil, models.NewValidationError("invalid page parameter",
			models.FieldError{Field: "page", Message: fmt.Sprintf("must be at most %d", utils.MaxPage)})
	}
	if _, ok := repository.SortColumn(filter.SortBy); !ok {
		return nil, models.NewValidationError("invalid sortBy parameter",
			models.FieldError{Field: "sortBy", Message: "must be one of createdAt, updatedAt, title, total, status"})
	}
	switch strings.ToLower(filter.SortDirection) {
	case "", "asc", "desc":
	default:
		return nil, models.NewValidationError("invalid sortDirection parameter",
			models.FieldError{Field: "sortDirection", Message: "must be asc or desc"})
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, models.NewValidationError("invalid status parameter",
			models.FieldError{Field: "status", Message: "unknown project status"})
	}

	projects, total, err := s.Repo.ListProjects(ctx, filter)
	if err != nil {
		return nil, translate(err, "list projects", "", "")
	}
	return &models.ProjectPage{
		Items:      projects,
		TotalCount: total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	}, nil
}

// ListOpenProjects возвращает проекты, по которым можно подать предложение.
func (s *ProjectService) ListOpenProjects(ctx context.Context) ([]models.ProjectView, error) {
	projects, err := s.Repo.ListOpenProjects(ctx, OpenProjectsLimit)
	if err != nil {
		return nil, translate(err, "list open projects", "", "")
	}
	return projects, nil
}

// ListCustomerProjects возвращает проекты текущего заказчика.
func (s *ProjectService) ListCustomerProjects(ctx context.Context, actor models.Actor) ([]models.ProjectView, error) {
	if !actor.Role.CanOwnProjects() {
		return nil, models.NewForbiddenError("only customers have projects")
	}
	projects, err := s.Repo.ListCustomerProjects(ctx, actor.UserID)
	if err != nil {
		return nil, translate(err, "list customer projects", "", "")
	}
	return projects, nil
}

// UpdateProject меняет поля проекта, пока по нему не выбран исполнитель.
func (s *ProjectService) UpdateProject(ctx context.Context, actor models.Actor, projectId string, update models.ProjectUpdate) (*models.Project, error) {
	if update.IsEmpty() {
		return nil, models.NewValidationError("no valid fields to update")
	}
	if err := validateRequest(update); err != nil {
		return nil, err
	}

	project, err := s.Repo.GetProjectById(ctx, projectId)
	if err != nil {
		return nil, translate(err, "get project", "project not found", "")
	}
	if !actor.CanManage(project.CustomerID) {
		return nil, models.NewForbiddenError("you are not authorized to edit this project")
	}
	if !utils.Contains(editableStatuses, project.Status) {
		return nil, models.NewConflictError("project can no longer be edited")
	}

	updated, err := s.Repo.UpdateProject(ctx, projectId, update, editableStatuses)
	if err != nil {
		return nil, translate(err, "update project", "project not found", "project can no longer be edited")
	}
	return updated, nil
}

// DeleteProject удаляет проект вместе с предложениями.
func (s *ProjectService) DeleteProject(ctx context.Context, actor models.Actor, projectId string) error {
	project, err := s.Repo.GetProjectById(ctx, projectId)
	if err != nil {
		return translate(err, "get project", "project not found", "")
	}
	if !actor.CanManage(project.CustomerID) {
		return models.NewForbiddenError("you are not authorized to delete this project")
	}
	if !utils.Contains(deletableStatuses, project.Status) {
		return models.NewConflictError("project in progress or completed cannot be deleted")
	}

	if err := s.Repo.DeleteProject(ctx, projectId, deletableStatuses); err != nil {
		return translate(err, "delete project", "project not found", "project in progress or completed cannot be deleted")
	}
	return nil
}
