package services

import (
	"context"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"
)

type BidService struct {
	Repo     repository.BidRepository
	Projects repository.ProjectRepository
	now      func() time.Time
}

// NewBidService создает новый экземпляр BidService.
func NewBidService(repo repository.BidRepository, projects repository.ProjectRepository) *BidService {
	return &BidService{Repo: repo, Projects: projects, now: time.Now}
}

// CreateBid создает новое предложение исполнителя по проекту.
func (s *BidService) CreateBid(ctx context.Context, actor models.Actor, projectId string, bidReq models.BidRequest) (*models.Bid, error) {
	if !actor.Role.CanBid() {
		return nil, models.NewForbiddenError("only merchants can place bids")
	}
	if err := validateRequest(bidReq); err != nil {
		return nil, err
	}

	project, err := s.Projects.GetProjectById(ctx, projectId)
	if err != nil {
		return nil, translate(err, "get project", "project not found", "")
	}
	if project.CustomerID == actor.UserID {
		return nil, models.NewForbiddenError("you cannot bid on your own project")
	}
	if !project.Status.IsBiddable() {
		return nil, models.NewConflictError("project is not open for bidding")
	}

	bid, err := s.Repo.CreateBid(ctx, projectId, actor.UserID, bidReq)
	if err != nil {
		return nil, translate(err, "create bid", "project not found", "project is not open for bidding")
	}
	return bid, nil
}

// ListBidsForProject возвращает предложения по проекту с именами исполнителей.
func (s *BidService) ListBidsForProject(ctx context.Context, projectId string) ([]models.BidView, error) {
	if _, err := s.Projects.GetProjectById(ctx, projectId); err != nil {
		return nil, translate(err, "get project", "project not found", "")
	}
	bids, err := s.Repo.ListBidsForProject(ctx, projectId)
	if err != nil {
		return nil, translate(err, "list project bids", "project not found", "")
	}
	return bids, nil
}

// ListBidsForMerchant возвращает все предложения текущего исполнителя.
func (s *BidService) ListBidsForMerchant(ctx context.Context, actor models.Actor) ([]models.BidView, error) {
	if !actor.Role.CanBid() {
		return nil, models.NewForbiddenError("only merchants have bids")
	}
	bids, err := s.Repo.ListBidsForMerchant(ctx, actor.UserID)
	if err != nil {
		return nil, translate(err, "list merchant bids", "", "")
	}
	return bids, nil
}

// RejectBid отклоняет одно предложение. Статус проекта не меняется.
func (s *BidService) RejectBid(ctx context.Context, actor models.Actor, bidId string) (*models.Bid, error) {
	bid, err := s.Repo.GetBidById(ctx, bidId)
	if err != nil {
		return nil, translate(err, "get bid", "bid not found", "")
	}
	project, err := s.Projects.GetProjectById(ctx, bid.ProjectID)
	if err != nil {
		return nil, translate(err, "get project", "project not found", "")
	}
	if !actor.CanManage(project.CustomerID) {
		return nil, models.NewForbiddenError("only the project owner can reject bids")
	}
	if bid.Status != models.PendingBid {
		return nil, models.NewConflictError("only pending bids can be rejected")
	}

	rejected, err := s.Repo.RejectBid(ctx, bidId, s.now().UTC())
	if err != nil {
		return nil, translate(err, "reject bid", "bid not found", "only pending bids can be rejected")
	}
	return rejected, nil
}
