package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, repo *PostgresProjectRepository, id, name string, role models.Role) {
	t.Helper()
	_, err := repo.DB.Exec(context.Background(),
		`INSERT INTO users (id, name, email, role) VALUES ($1, $2, $3, $4)`, id, name, id+"@example.com", role)
	require.NoError(t, err)
}

func publishedProject(t *testing.T, repo *PostgresProjectRepository, customerId string, days *int) *models.Project {
	t.Helper()
	ctx := context.Background()
	project, err := repo.CreateProject(ctx, customerId, models.ProjectRequest{
		Title: "Bathroom renovation",
		Total: 5000,
		Days:  days,
		Items: []models.ProjectItem{{Name: "Tiles", Quantity: 12, Unit: "m2", Price: 30}},
	})
	require.NoError(t, err)
	_, err = repo.TransitionStatus(ctx, project.ID, []models.ProjectStatus{models.DraftProject}, models.PublishedProject)
	require.NoError(t, err)
	return project
}

func TestCreateBid_DuplicateKeepsOriginal(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	projects := NewPostgresProjectRepository(pool)
	bids := NewPostgresBidRepository(pool)

	seedUser(t, projects, "C1", "Customer", models.RoleCustomer)
	seedUser(t, projects, "M1", "Merchant", models.RoleMerchant)
	project := publishedProject(t, projects, "C1", nil)

	first, err := bids.CreateBid(ctx, project.ID, "M1", models.BidRequest{Price: 1000, Days: 7})
	require.NoError(t, err)

	stored, err := projects.GetProjectById(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InBiddingProject, stored.Status)

	_, err = bids.CreateBid(ctx, project.ID, "M1", models.BidRequest{Price: 800, Days: 5})
	assert.ErrorIs(t, err, ErrDuplicateBid)

	original, err := bids.GetBidById(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, original.Price)
	assert.Equal(t, models.PendingBid, original.Status)
}

func TestAwardBid_AcceptsOneRejectsOthers(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	projects := NewPostgresProjectRepository(pool)
	bids := NewPostgresBidRepository(pool)

	seedUser(t, projects, "C1", "Customer", models.RoleCustomer)
	project := publishedProject(t, projects, "C1", intPtr(5))

	var created []*models.Bid
	for i := 1; i <= 3; i++ {
		merchantId := fmt.Sprintf("M%d", i)
		seedUser(t, projects, merchantId, "Merchant "+merchantId, models.RoleMerchant)
		bid, err := bids.CreateBid(ctx, project.ID, merchantId, models.BidRequest{Price: float64(100 * i), Days: 7})
		require.NoError(t, err)
		created = append(created, bid)
	}

	started := time.Now().UTC().Truncate(time.Microsecond)
	due := started.Add(7 * 24 * time.Hour)
	winner := created[1]
	err := projects.AwardBid(ctx, models.Award{
		ProjectID:  project.ID,
		BidID:      winner.ID,
		MerchantID: winner.MerchantID,
		StartedAt:  started,
		DueAt:      &due,
	})
	require.NoError(t, err)

	list, err := bids.ListBidsForProject(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	accepted := 0
	for _, bid := range list {
		if bid.ID == winner.ID {
			assert.Equal(t, models.AcceptedBid, bid.Status)
			assert.Equal(t, "Merchant M2", bid.MerchantName)
			accepted++
			continue
		}
		assert.Equal(t, models.RejectedBid, bid.Status)
	}
	assert.Equal(t, 1, accepted)

	view, err := projects.GetProjectView(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InProgressProject, view.Status)
	require.NotNil(t, view.AssignedMerchantID)
	assert.Equal(t, "M2", *view.AssignedMerchantID)
	require.NotNil(t, view.AwardedBidID)
	assert.Equal(t, winner.ID, *view.AwardedBidID)
	require.NotNil(t, view.ExecutionDueAt)
	assert.True(t, view.ExecutionDueAt.Equal(due))
	assert.Equal(t, "Merchant M2", view.MerchantName)

	err = projects.AwardBid(ctx, models.Award{
		ProjectID:  project.ID,
		BidID:      created[0].ID,
		MerchantID: created[0].MerchantID,
		StartedAt:  started,
	})
	assert.ErrorIs(t, err, ErrStateConflict)

	_, err = bids.CreateBid(ctx, project.ID, "M9", models.BidRequest{Price: 50, Days: 1})
	assert.ErrorIs(t, err, ErrStateConflict)
}

func TestListProjects_SearchAndPaging(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	projects := NewPostgresProjectRepository(pool)

	seedUser(t, projects, "C1", "Customer", models.RoleCustomer)
	for i := 0; i < 3; i++ {
		_, err := projects.CreateProject(ctx, "C1", models.ProjectRequest{Title: fmt.Sprintf("Roof repair %d", i)})
		require.NoError(t, err)
	}
	_, err := projects.CreateProject(ctx, "C1", models.ProjectRequest{Title: "Garden fence"})
	require.NoError(t, err)

	items, total, err := projects.ListProjects(ctx, models.ProjectFilter{Page: 1, PageSize: 2, Query: "ROOF"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 2)
	assert.Equal(t, "Customer", items[0].CustomerName)

	items, total, err = projects.ListProjects(ctx, models.ProjectFilter{Page: 5, PageSize: 2, Query: "roof"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Empty(t, items)

	open, err := projects.ListOpenProjects(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestDeliveryUpdates(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	projects := NewPostgresProjectRepository(pool)
	bids := NewPostgresBidRepository(pool)

	seedUser(t, projects, "C1", "Customer", models.RoleCustomer)
	seedUser(t, projects, "M1", "Merchant", models.RoleMerchant)
	project := publishedProject(t, projects, "C1", nil)
	bid, err := bids.CreateBid(ctx, project.ID, "M1", models.BidRequest{Price: 700, Days: 3})
	require.NoError(t, err)

	now := time.Now().UTC()
	_, err = projects.AcceptDelivery(ctx, project.ID, now)
	assert.ErrorIs(t, err, ErrStateConflict)

	require.NoError(t, projects.AwardBid(ctx, models.Award{
		ProjectID: project.ID, BidID: bid.ID, MerchantID: "M1", StartedAt: now,
	}))

	delivered, err := projects.MarkDelivered(ctx, project.ID, "done", now)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveredProject, delivered.DeliveryStatus)

	_, err = projects.MarkDelivered(ctx, project.ID, "again", now)
	assert.ErrorIs(t, err, ErrStateConflict)

	completed, err := projects.AcceptDelivery(ctx, project.ID, now)
	require.NoError(t, err)
	assert.Equal(t, models.CompletedProject, completed.Status)

	rated, err := projects.RateMerchant(ctx, project.ID, 5, "great", now)
	require.NoError(t, err)
	require.NotNil(t, rated.MerchantRating)
	assert.Equal(t, 5, *rated.MerchantRating)

	_, err = projects.RateMerchant(ctx, project.ID, 4, "", now)
	assert.ErrorIs(t, err, ErrStateConflict)

	err = projects.DeleteProject(ctx, project.ID, []models.ProjectStatus{models.DraftProject})
	assert.ErrorIs(t, err, ErrStateConflict)
}

func intPtr(v int) *int { return &v }
