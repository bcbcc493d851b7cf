package router

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/senyabanana/marketplace-service/internal/handlers"
	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/pkg/token"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/repository/mocks"
	"github.com/senyabanana/marketplace-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router   *gin.Engine
	tokens   *token.Service
	projects *mocks.MockProjectRepository
	bids     *mocks.MockBidRepository
}

func newTestEnv(t *testing.T, exposeInternal bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	projects := new(mocks.MockProjectRepository)
	bids := new(mocks.MockBidRepository)
	tokens := token.New("router-test-secret", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	awards := services.NewAwardService(projects, bids)
	projectHandler := handlers.NewProjectHandler(services.NewProjectService(projects), awards, logger, time.Second, exposeInternal)
	bidHandler := handlers.NewBidHandler(services.NewBidService(bids, projects), awards, logger, time.Second, exposeInternal)

	return &testEnv{
		router:   InitRoutes(projectHandler, bidHandler, tokens),
		tokens:   tokens,
		projects: projects,
		bids:     bids,
	}
}

func (e *testEnv) do(t *testing.T, method, path, userID, role string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		signed, err := e.tokens.GenerateToken(userID, role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+signed)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestPing(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodGet, "/api/ping", "", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestListProjects_Public(t *testing.T) {
	env := newTestEnv(t, false)
	env.projects.On("ListProjects", mock.Anything, models.ProjectFilter{
		Page: 2, PageSize: 5, Query: "roof", SortBy: "title", SortDirection: "asc",
	}).Return([]models.ProjectView{{Project: models.Project{ID: "P1", Title: "Roof"}}}, int64(6), nil)

	w := env.do(t, http.MethodGet, "/api/Projects?page=2&pageSize=5&query=roof&sortBy=title&sortDirection=asc", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(6), body["totalCount"])
	assert.Equal(t, float64(2), body["page"])
	assert.Equal(t, float64(5), body["pageSize"])
	assert.Len(t, body["items"], 1)
}

func TestListProjects_BadPaging(t *testing.T) {
	env := newTestEnv(t, false)

	for _, query := range []string{"pageSize=1000", "page=92233720368547758&pageSize=100"} {
		w := env.do(t, http.MethodGet, "/api/Projects?"+query, "", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
		assert.Equal(t, false, decode(t, w)["success"], query)
	}
	env.projects.AssertNotCalled(t, "ListProjects", mock.Anything, mock.Anything)
}

func TestOpenProjects_EmptyList(t *testing.T) {
	env := newTestEnv(t, false)
	env.projects.On("ListOpenProjects", mock.Anything, services.OpenProjectsLimit).Return([]models.ProjectView{}, nil)

	w := env.do(t, http.MethodGet, "/api/Projects/open", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"projects":[]}`, w.Body.String())
}

func TestGetProject_RequiresToken(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodGet, "/api/Projects/P1", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateBid(t *testing.T) {
	env := newTestEnv(t, false)
	req := models.BidRequest{Price: 1500, Days: 7, Message: "ready"}
	env.projects.On("GetProjectById", mock.Anything, "P1").Return(&models.Project{
		ID: "P1", CustomerID: "C1", Status: models.PublishedProject,
	}, nil)
	env.bids.On("CreateBid", mock.Anything, "P1", "M1", req).Return(&models.Bid{
		ID: "B1", ProjectID: "P1", MerchantID: "M1", Price: 1500, Days: 7, Status: models.PendingBid,
	}, nil).Once()
	env.bids.On("CreateBid", mock.Anything, "P1", "M1", req).Return(nil, repository.ErrDuplicateBid).Once()

	w := env.do(t, http.MethodPost, "/api/Projects/P1/bids", "M1", "merchant", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	bid := decode(t, w)["bid"].(map[string]interface{})
	assert.Equal(t, "pending", bid["status"])
	assert.Equal(t, float64(1500), bid["price"])

	w = env.do(t, http.MethodPost, "/api/Projects/P1/bids", "M1", "merchant", req)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "you have already placed a bid on this project", decode(t, w)["message"])
}

func TestCreateBid_ValidationDetails(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodPost, "/api/Projects/P1/bids", "M1", "merchant", map[string]interface{}{"price": -5, "days": 2})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "validation failed", body["message"])
	fields := body["errors"].([]interface{})
	require.Len(t, fields, 1)
	assert.Equal(t, "price", fields[0].(map[string]interface{})["field"])
}

func TestCreateBid_RoleGate(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodPost, "/api/Projects/P1/bids", "C1", "customer", models.BidRequest{Price: 1, Days: 1})
	assert.Equal(t, http.StatusForbidden, w.Code)
	env.bids.AssertNotCalled(t, "CreateBid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBid_InvalidBody(t *testing.T) {
	env := newTestEnv(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/Projects/P1/bids", bytes.NewBufferString("{not json"))
	signed, err := env.tokens.GenerateToken("M1", "merchant")
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request body", decode(t, w)["message"])
}

func TestSelectBid(t *testing.T) {
	env := newTestEnv(t, false)
	env.bids.On("GetBidById", mock.Anything, "B1").Return(&models.Bid{
		ID: "B1", ProjectID: "P1", MerchantID: "M1", Days: 7,
	}, nil)
	env.projects.On("GetProjectById", mock.Anything, "P1").Return(&models.Project{
		ID: "P1", CustomerID: "C1", Status: models.InBiddingProject,
	}, nil)
	env.projects.On("AwardBid", mock.Anything, mock.MatchedBy(func(a models.Award) bool {
		return a.BidID == "B1" && a.MerchantID == "M1" && a.DueAt != nil &&
			a.DueAt.Sub(a.StartedAt) == 7*24*time.Hour
	})).Return(nil).Once()
	merchantID, bidID := "M1", "B1"
	env.projects.On("GetProjectView", mock.Anything, "P1").Return(&models.ProjectView{Project: models.Project{
		ID: "P1", Status: models.InProgressProject, AssignedMerchantID: &merchantID, AwardedBidID: &bidID,
	}}, nil)
	env.bids.On("GetBidView", mock.Anything, "B1").Return(&models.BidView{
		Bid: models.Bid{ID: "B1", Status: models.AcceptedBid}, MerchantName: "Merchant One",
	}, nil)

	w := env.do(t, http.MethodPost, "/api/Projects/P1/select-bid/B1", "C1", "customer", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	project := body["project"].(map[string]interface{})
	assert.Equal(t, "InProgress", project["status"])
	assert.Equal(t, "M1", project["assignedMerchantId"])
	assert.Equal(t, "B1", project["awardedBidId"])
	assert.Equal(t, "Merchant One", body["bid"].(map[string]interface{})["merchantName"])
	env.projects.AssertExpectations(t)
}

func TestAcceptBid_NotOwner(t *testing.T) {
	env := newTestEnv(t, false)
	env.bids.On("GetBidById", mock.Anything, "B1").Return(&models.Bid{ID: "B1", ProjectID: "P1", MerchantID: "M1"}, nil)
	env.projects.On("GetProjectById", mock.Anything, "P1").Return(&models.Project{
		ID: "P1", CustomerID: "C1", Status: models.InBiddingProject,
	}, nil)

	w := env.do(t, http.MethodPost, "/api/Projects/bids/B1/accept", "C2", "customer", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	env.projects.AssertNotCalled(t, "AwardBid", mock.Anything, mock.Anything)
}

func TestRejectBid(t *testing.T) {
	env := newTestEnv(t, false)
	env.bids.On("GetBidById", mock.Anything, "B2").Return(&models.Bid{
		ID: "B2", ProjectID: "P1", MerchantID: "M2", Status: models.PendingBid,
	}, nil)
	env.projects.On("GetProjectById", mock.Anything, "P1").Return(&models.Project{
		ID: "P1", CustomerID: "C1", Status: models.InBiddingProject,
	}, nil)
	env.bids.On("RejectBid", mock.Anything, "B2", mock.AnythingOfType("time.Time")).Return(&models.Bid{
		ID: "B2", Status: models.RejectedBid,
	}, nil)

	w := env.do(t, http.MethodPost, "/api/Projects/bids/B2/reject", "C1", "customer", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "rejected", decode(t, w)["bid"].(map[string]interface{})["status"])
}

func TestMyBidsAndProjects(t *testing.T) {
	env := newTestEnv(t, false)
	env.bids.On("ListBidsForMerchant", mock.Anything, "M1").Return([]models.BidView{
		{Bid: models.Bid{ID: "B1"}, ProjectTitle: "Roof"},
	}, nil)
	env.projects.On("ListCustomerProjects", mock.Anything, "C1").Return([]models.ProjectView{}, nil)

	w := env.do(t, http.MethodGet, "/api/Projects/bids/merchant/my-bids", "M1", "merchant", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode(t, w)["bids"], 1)

	w = env.do(t, http.MethodGet, "/api/Projects/customer/my-projects", "C1", "customer", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"projects":[]}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/Projects/customer/my-projects", "M1", "merchant", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateProject(t *testing.T) {
	env := newTestEnv(t, false)
	env.projects.On("CreateProject", mock.Anything, "C1", mock.AnythingOfType("models.ProjectRequest")).
		Return(&models.Project{ID: "P1", CustomerID: "C1", Title: "Fence", Status: models.DraftProject, Items: []models.ProjectItem{}}, nil)

	w := env.do(t, http.MethodPost, "/api/Projects", "C1", "customer", map[string]interface{}{"title": "Fence", "total": 300})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	project := decode(t, w)["project"].(map[string]interface{})
	assert.Equal(t, "Draft", project["status"])
	assert.Equal(t, []interface{}{}, project["items"])
}

func TestPublishProject(t *testing.T) {
	env := newTestEnv(t, false)
	env.projects.On("GetProjectById", mock.Anything, "P1").Return(&models.Project{
		ID: "P1", CustomerID: "C1", Status: models.DraftProject,
	}, nil)
	env.projects.On("TransitionStatus", mock.Anything, "P1", []models.ProjectStatus{models.DraftProject}, models.PublishedProject).
		Return(&models.Project{ID: "P1", Status: models.PublishedProject}, nil)
	env.projects.On("GetProjectView", mock.Anything, "P1").Return(&models.ProjectView{
		Project: models.Project{ID: "P1", Status: models.PublishedProject},
	}, nil)

	w := env.do(t, http.MethodPost, "/api/Projects/P1/publish", "C1", "customer", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Published", decode(t, w)["project"].(map[string]interface{})["status"])
}

func TestDeliverProject_WithoutBody(t *testing.T) {
	env := newTestEnv(t, false)
	merchantID := "M1"
	env.projects.On("GetProjectById", mock.Anything, "P1").Return(&models.Project{
		ID: "P1", CustomerID: "C1", Status: models.InProgressProject, AssignedMerchantID: &merchantID,
	}, nil)
	env.projects.On("MarkDelivered", mock.Anything, "P1", "", mock.AnythingOfType("time.Time")).Return(&models.Project{}, nil)
	env.projects.On("GetProjectView", mock.Anything, "P1").Return(&models.ProjectView{
		Project: models.Project{ID: "P1", DeliveryStatus: models.DeliveredProject},
	}, nil)

	w := env.do(t, http.MethodPost, "/api/Projects/P1/deliver", "M1", "merchant", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Delivered", decode(t, w)["project"].(map[string]interface{})["deliveryStatus"])
}

func TestRateMerchant_OutOfRange(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodPost, "/api/Projects/P1/rate-merchant", "C1", "customer", map[string]interface{}{"rating": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInternalErrorMessage(t *testing.T) {
	for _, expose := range []bool{false, true} {
		env := newTestEnv(t, expose)
		env.projects.On("ListOpenProjects", mock.Anything, services.OpenProjectsLimit).Return(nil, errors.New("connection refused"))

		w := env.do(t, http.MethodGet, "/api/Projects/open", "", "", nil)
		require.Equal(t, http.StatusInternalServerError, w.Code)
		message := decode(t, w)["message"].(string)
		if expose {
			assert.Contains(t, message, "connection refused")
		} else {
			assert.Equal(t, "failed to fetch open projects", message)
		}
	}
}
