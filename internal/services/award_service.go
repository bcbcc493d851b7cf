package services

import (
	"context"
	"fmt"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/utils"
)

// projectTransitions - допустимые переходы статуса проекта.
var projectTransitions = map[models.ProjectStatus][]models.ProjectStatus{
	models.DraftProject:      {models.PublishedProject, models.CancelledProject},
	models.PublishedProject:  {models.InBiddingProject, models.InProgressProject, models.CancelledProject},
	models.InBiddingProject:  {models.InProgressProject, models.CancelledProject},
	models.InProgressProject: {models.CompletedProject, models.CancelledProject},
	models.CompletedProject:  {},
	models.CancelledProject:  {},
}

// CanTransition сообщает, разрешён ли переход из from в to.
func CanTransition(from, to models.ProjectStatus) bool {
	return utils.Contains(projectTransitions[from], to)
}

// sourcesOf возвращает все статусы, из которых разрешён переход в to.
func sourcesOf(to models.ProjectStatus) []models.ProjectStatus {
	var from []models.ProjectStatus
	for _, status := range []models.ProjectStatus{
		models.DraftProject,
		models.PublishedProject,
		models.InBiddingProject,
		models.InProgressProject,
		models.CompletedProject,
		models.CancelledProject,
	} {
		if CanTransition(status, to) {
			from = append(from, status)
		}
	}
	return from
}

// ExecutionDays выбирает срок исполнения: срок из предложения, иначе срок из проекта.
// Если ни один не задан или значение вне [1, MaxExecutionDays], срок не вычисляется.
func ExecutionDays(bidDays int, projectDays *int) (int, bool) {
	if bidDays > 0 {
		return bidDays, bidDays <= models.MaxExecutionDays
	}
	if projectDays != nil && *projectDays > 0 {
		return *projectDays, *projectDays <= models.MaxExecutionDays
	}
	return 0, false
}

// AwardService - единственное место, где меняются статус проекта, поля присуждения
// и статусы предложений.
type AwardService struct {
	Projects repository.ProjectRepository
	Bids     repository.BidRepository
	now      func() time.Time
}

// NewAwardService создает новый экземпляр AwardService.
func NewAwardService(projects repository.ProjectRepository, bids repository.BidRepository) *AwardService {
	return &AwardService{Projects: projects, Bids: bids, now: time.Now}
}

// SelectBid присуждает проект projectId предложению bidId.
func (s *AwardService) SelectBid(ctx context.Context, actor models.Actor, projectId, bidId string) (*models.AwardResult, error) {
	bid, err := s.Bids.GetBidById(ctx, bidId)
	if err != nil {
		return nil, translate(err, "get bid", "bid not found", "")
	}
	project, err := s.Projects.GetProjectById(ctx, projectId)
	if err != nil {
		return nil, translate(err, "get project", "project not found", "")
	}
	if bid.ProjectID != project.ID {
		return nil, models.NewValidationError("bid does not belong to this project")
	}
	return s.award(ctx, actor, project, bid)
}

// AcceptBid присуждает проект, к которому относится предложение bidId.
func (s *AwardService) AcceptBid(ctx context.Context, actor models.Actor, bidId string) (*models.AwardResult, error) {
	bid, err := s.Bids.GetBidById(ctx, bidId)
	if err != nil {
		return nil, translate(err, "get bid", "bid not found", "")
	}
	project, err := s.Projects.GetProjectById(ctx, bid.ProjectID)
	if err != nil {
		return nil, translate(err, "get project", "project not found", "")
	}
	return s.award(ctx, actor, project, bid)
}

func (s *AwardService) award(ctx context.Context, actor models.Actor, project *models.Project, bid *models.Bid) (*models.AwardResult, error) {
	if !actor.CanManage(project.CustomerID) {
		return nil, models.NewForbiddenError("only the project owner can select a bid")
	}
	if !CanTransition(project.Status, models.InProgressProject) {
		return nil, models.NewConflictError(fmt.Sprintf("project is not open for bidding (status %s)", project.Status))
	}

	startedAt := s.now().UTC()
	award := models.Award{
		ProjectID:  project.ID,
		BidID:      bid.ID,
		MerchantID: bid.MerchantID,
		StartedAt:  startedAt,
	}
	if days, ok := ExecutionDays(bid.Days, project.Days); ok {
		dueAt := startedAt.AddDate(0, 0, days)
		award.DueAt = &dueAt
	}

	if err := s.Projects.AwardBid(ctx, award); err != nil {
		return nil, translate(err, "award bid", "bid not found", "project is no longer open for bidding")
	}

	projectView, err := s.Projects.GetProjectView(ctx, project.ID)
	if err != nil {
		return nil, translate(err, "get awarded project", "project not found", "")
	}
	bidView, err := s.Bids.GetBidView(ctx, bid.ID)
	if err != nil {
		return nil, translate(err, "get awarded bid", "bid not found", "")
	}
	return &models.AwardResult{Project: projectView, Bid: bidView}, nil
}

// PublishProject открывает проект для предложений.
func (s *AwardService) PublishProject(ctx context.Context, actor models.Actor, projectId string) (*models.ProjectView, error) {
	return s.transition(ctx, actor, projectId, models.PublishedProject)
}

// CancelProject отменяет проект из любого нетерминального статуса.
func (s *AwardService) CancelProject(ctx context.Context, actor models.Actor, projectId string) (*models.ProjectView, error) {
	return s.transition(ctx, actor, projectId, models.CancelledProject)
}

func (s *AwardService) transition(ctx context.Context, actor models.Actor, projectId string, to models.ProjectStatus) (*models.ProjectView, error) {
	project, err := s.Projects.GetProjectById(ctx, projectId)
	if err != nil {
		return nil, translate(err, "get project", "project not found", "")
	}
	if !actor.CanManage(project.CustomerID) {
		return nil, models.NewForbiddenError("you are not authorized to change this project")
	}

	conflict := fmt.Sprintf("project cannot move from %s to %s", project.Status, to)
	if !CanTransition(project.Status, to) {
		return nil, models.NewConflictError(conflict)
	}
	if _, err := s.Projects.TransitionStatus(ctx, projectId, sourcesOf(to), to); err != nil {
		return nil, translate(err, "update project status", "project not found", conflict)
	}
	return s.view(ctx, projectId)
}

// DeliverProject отмечает, что назначенный исполнитель сдал работы.
func (s *AwardService) DeliverProject(ctx context.Context, actor models.Actor, projectId string, req models.DeliveryRequest) (*models.ProjectView, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	project, err := s.Projects.GetProjectById(ctx, projectId)
	if err != nil {
		return nil, translate(err, "get project", "project not found", "")
	}
	assigned := project.AssignedMerchantID != nil && *project.AssignedMerchantID == actor.UserID
	if !assigned && !actor.IsAdmin() {
		return nil, models.NewForbiddenError("only the assigned merchant can deliver this project")
	}
	if project.Status != models.InProgressProject {
		return nil, models.NewConflictError("project is not in progress")
	}
	if project.DeliveryStatus == models.DeliveredProject {
		return nil, models.NewConflictError("project has already been delivered")
	}

	if _, err := s.Projects.MarkDelivered(ctx, projectId, req.Note, s.now().UTC()); err != nil {
		return nil, translate(err, "deliver project", "project not found", "project cannot be delivered in its current state")
	}
	return s.view(ctx, projectId)
}

// AcceptDelivery принимает сданные работы и завершает проект.
func (s *AwardService) AcceptDelivery(ctx context.Context, actor models.Actor, projectId string) (*models.ProjectView, error) {
	project, err := s.deliveredProject(ctx, actor, projectId)
	if err != nil {
		return nil, err
	}
	if !CanTransition(project.Status, models.CompletedProject) {
		return nil, models.NewConflictError("project cannot be completed")
	}
	if _, err := s.Projects.AcceptDelivery(ctx, projectId, s.now().UTC()); err != nil {
		return nil, translate(err, "accept delivery", "project not found", "project has not been delivered")
	}
	return s.view(ctx, projectId)
}

// RejectDelivery возвращает сданные работы исполнителю.
func (s *AwardService) RejectDelivery(ctx context.Context, actor models.Actor, projectId string, req models.DeliveryRejection) (*models.ProjectView, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if _, err := s.deliveredProject(ctx, actor, projectId); err != nil {
		return nil, err
	}
	if _, err := s.Projects.RejectDelivery(ctx, projectId, req.Reason, s.now().UTC()); err != nil {
		return nil, translate(err, "reject delivery", "project not found", "project has not been delivered")
	}
	return s.view(ctx, projectId)
}

// RateMerchant сохраняет оценку исполнителя по завершённому проекту.
func (s *AwardService) RateMerchant(ctx context.Context, actor models.Actor, projectId string, req models.RatingRequest) (*models.ProjectView, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	project, err := s.Projects.GetProjectById(ctx, projectId)
	if err != nil {
		return nil, translate(err, "get project", "project not found", "")
	}
	if !actor.CanManage(project.CustomerID) {
		return nil, models.NewForbiddenError("only the project owner can rate the merchant")
	}
	if project.Status != models.CompletedProject {
		return nil, models.NewConflictError("only completed projects can be rated")
	}
	if project.MerchantRating != nil {
		return nil, models.NewConflictError("merchant has already been rated for this project")
	}

	if _, err := s.Projects.RateMerchant(ctx, projectId, req.Rating, req.Comment, s.now().UTC()); err != nil {
		return nil, translate(err, "rate merchant", "project not found", "merchant has already been rated for this project")
	}
	return s.view(ctx, projectId)
}

// deliveredProject загружает проект и проверяет, что заказчик может принять решение по сдаче.
func (s *AwardService) deliveredProject(ctx context.Context, actor models.Actor, projectId string) (*models.Project, error) {
	project, err := s.Projects.GetProjectById(ctx, projectId)
	if err != nil {
		return nil, translate(err, "get project", "project not found", "")
	}
	if !actor.CanManage(project.CustomerID) {
		return nil, models.NewForbiddenError("only the project owner can review the delivery")
	}
	if project.Status != models.InProgressProject || project.DeliveryStatus != models.DeliveredProject {
		return nil, models.NewConflictError("project has not been delivered")
	}
	return project, nil
}

func (s *AwardService) view(ctx context.Context, projectId string) (*models.ProjectView, error) {
	project, err := s.Projects.GetProjectView(ctx, projectId)
	if err != nil {
		return nil, translate(err, "get project", "project not found", "")
	}
	return project, nil
}
