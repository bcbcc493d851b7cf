// Package mocks содержит testify-моки репозиториев для тестов сервисов и обработчиков.
package mocks

import (
	"context"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) CreateProject(ctx context.Context, customerId string, req models.ProjectRequest) (*models.Project, error) {
	args := m.Called(ctx, customerId, req)
	return projectResult(args)
}

func (m *MockProjectRepository) GetProjectById(ctx context.Context, projectId string) (*models.Project, error) {
	args := m.Called(ctx, projectId)
	return projectResult(args)
}

func (m *MockProjectRepository) GetProjectView(ctx context.Context, projectId string) (*models.ProjectView, error) {
	args := m.Called(ctx, projectId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProjectView), args.Error(1)
}

func (m *MockProjectRepository) ListProjects(ctx context.Context, filter models.ProjectFilter) ([]models.ProjectView, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.ProjectView), args.Get(1).(int64), args.Error(2)
}

func (m *MockProjectRepository) ListOpenProjects(ctx context.Context, limit int) ([]models.ProjectView, error) {
	args := m.Called(ctx, limit)
	return projectViews(args)
}

func (m *MockProjectRepository) ListCustomerProjects(ctx context.Context, customerId string) ([]models.ProjectView, error) {
	args := m.Called(ctx, customerId)
	return projectViews(args)
}

func (m *MockProjectRepository) UpdateProject(ctx context.Context, projectId string, update models.ProjectUpdate, allowed []models.ProjectStatus) (*models.Project, error) {
	args := m.Called(ctx, projectId, update, allowed)
	return projectResult(args)
}

func (m *MockProjectRepository) DeleteProject(ctx context.Context, projectId string, allowed []models.ProjectStatus) error {
	args := m.Called(ctx, projectId, allowed)
	return args.Error(0)
}

func (m *MockProjectRepository) TransitionStatus(ctx context.Context, projectId string, from []models.ProjectStatus, to models.ProjectStatus) (*models.Project, error) {
	args := m.Called(ctx, projectId, from, to)
	return projectResult(args)
}

func (m *MockProjectRepository) AwardBid(ctx context.Context, award models.Award) error {
	args := m.Called(ctx, award)
	return args.Error(0)
}

func (m *MockProjectRepository) MarkDelivered(ctx context.Context, projectId, note string, at time.Time) (*models.Project, error) {
	args := m.Called(ctx, projectId, note, at)
	return projectResult(args)
}

func (m *MockProjectRepository) AcceptDelivery(ctx context.Context, projectId string, at time.Time) (*models.Project, error) {
	args := m.Called(ctx, projectId, at)
	return projectResult(args)
}

func (m *MockProjectRepository) RejectDelivery(ctx context.Context, projectId, reason string, at time.Time) (*models.Project, error) {
	args := m.Called(ctx, projectId, reason, at)
	return projectResult(args)
}

func (m *MockProjectRepository) RateMerchant(ctx context.Context, projectId string, rating int, comment string, at time.Time) (*models.Project, error) {
	args := m.Called(ctx, projectId, rating, comment, at)
	return projectResult(args)
}

func projectResult(args mock.Arguments) (*models.Project, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func projectViews(args mock.Arguments) ([]models.ProjectView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProjectView), args.Error(1)
}

type MockBidRepository struct {
	mock.Mock
}

func (m *MockBidRepository) CreateBid(ctx context.Context, projectId, merchantId string, bidReq models.BidRequest) (*models.Bid, error) {
	args := m.Called(ctx, projectId, merchantId, bidReq)
	return bidResult(args)
}

func (m *MockBidRepository) GetBidById(ctx context.Context, bidId string) (*models.Bid, error) {
	args := m.Called(ctx, bidId)
	return bidResult(args)
}

func (m *MockBidRepository) GetBidView(ctx context.Context, bidId string) (*models.BidView, error) {
	args := m.Called(ctx, bidId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BidView), args.Error(1)
}

func (m *MockBidRepository) ListBidsForProject(ctx context.Context, projectId string) ([]models.BidView, error) {
	args := m.Called(ctx, projectId)
	return bidViews(args)
}

func (m *MockBidRepository) ListBidsForMerchant(ctx context.Context, merchantId string) ([]models.BidView, error) {
	args := m.Called(ctx, merchantId)
	return bidViews(args)
}

func (m *MockBidRepository) RejectBid(ctx context.Context, bidId string, at time.Time) (*models.Bid, error) {
	args := m.Called(ctx, bidId, at)
	return bidResult(args)
}

func bidResult(args mock.Arguments) (*models.Bid, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bid), args.Error(1)
}

func bidViews(args mock.Arguments) ([]models.BidView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BidView), args.Error(1)
}
