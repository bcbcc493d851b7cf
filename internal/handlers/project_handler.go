package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/services"
	"github.com/senyabanana/marketplace-service/internal/utils"

	"github.com/gin-gonic/gin"
)

// ProjectHandler - структура для обработки HTTP-запросов по проектам.
type ProjectHandler struct {
	Service        *services.ProjectService
	Awards         *services.AwardService
	Logger         *slog.Logger
	Timeout        time.Duration
	ExposeInternal bool
}

// NewProjectHandler создаёт новый экземпляр ProjectHandler.
func NewProjectHandler(service *services.ProjectService, awards *services.AwardService, logger *slog.Logger, timeout time.Duration, exposeInternal bool) *ProjectHandler {
	return &ProjectHandler{
		Service:        service,
		Awards:         awards,
		Logger:         logger,
		Timeout:        timeout,
		ExposeInternal: exposeInternal,
	}
}

func (h *ProjectHandler) fail(c *gin.Context, err error, fallback string) {
	sendError(c, h.Logger, h.ExposeInternal, err, fallback)
}

// GetProjects обрабатывает поиск проектов с пагинацией.
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	page, pageSize, err := utils.ParsePage(c.Query("page"), c.Query("pageSize"))
	if err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.Service.ListProjects(ctx, models.ProjectFilter{
		Page:          page,
		PageSize:      pageSize,
		Query:         c.Query("query"),
		SortBy:        c.Query("sortBy"),
		SortDirection: c.Query("sortDirection"),
		Status:        models.ProjectStatus(c.Query("status")),
	})
	if err != nil {
		h.fail(c, err, "failed to fetch projects")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"items":      result.Items,
		"totalCount": result.TotalCount,
		"page":       result.Page,
		"pageSize":   result.PageSize,
	})
}

// GetOpenProjects обрабатывает запрос списка проектов, открытых для предложений.
func (h *ProjectHandler) GetOpenProjects(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	projects, err := h.Service.ListOpenProjects(ctx)
	if err != nil {
		h.fail(c, err, "failed to fetch open projects")
		return
	}
	utils.SendSuccess(c, http.StatusOK, "projects", projects)
}

// GetProject обрабатывает запрос проекта по ID.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	project, err := h.Service.GetProjectById(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to fetch project")
		return
	}
	utils.SendSuccess(c, http.StatusOK, "project", project)
}

// GetMyProjects обрабатывает запрос проектов текущего заказчика.
func (h *ProjectHandler) GetMyProjects(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	projects, err := h.Service.ListCustomerProjects(ctx, actor)
	if err != nil {
		h.fail(c, err, "failed to fetch projects")
		return
	}
	utils.SendSuccess(c, http.StatusOK, "projects", projects)
}

// CreateProject обрабатывает создание проекта.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	var req models.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	project, err := h.Service.CreateProject(ctx, actor, req)
	if err != nil {
		h.fail(c, err, "failed to create project")
		return
	}
	utils.SendSuccess(c, http.StatusCreated, "project", project)
}

// UpdateProject обрабатывает частичное обновление проекта.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	var update models.ProjectUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	project, err := h.Service.UpdateProject(ctx, actor, c.Param("id"), update)
	if err != nil {
		h.fail(c, err, "failed to update project")
		return
	}
	utils.SendSuccess(c, http.StatusOK, "project", project)
}

// DeleteProject обрабатывает удаление проекта.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	if err := h.Service.DeleteProject(ctx, actor, c.Param("id")); err != nil {
		h.fail(c, err, "failed to delete project")
		return
	}
	utils.SendSuccess(c, http.StatusOK, "message", "project deleted")
}

// PublishProject обрабатывает публикацию черновика.
func (h *ProjectHandler) PublishProject(c *gin.Context) {
	h.changeProject(c, "failed to publish project", func(ctx context.Context, actor models.Actor, projectId string) (*models.ProjectView, error) {
		return h.Awards.PublishProject(ctx, actor, projectId)
	})
}

// CancelProject обрабатывает отмену проекта.
func (h *ProjectHandler) CancelProject(c *gin.Context) {
	h.changeProject(c, "failed to cancel project", func(ctx context.Context, actor models.Actor, projectId string) (*models.ProjectView, error) {
		return h.Awards.CancelProject(ctx, actor, projectId)
	})
}

// SelectBid обрабатывает выбор предложения по проекту.
func (h *ProjectHandler) SelectBid(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	result, err := h.Awards.SelectBid(ctx, actor, c.Param("id"), c.Param("bidId"))
	if err != nil {
		h.fail(c, err, "failed to select bid")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"project": result.Project,
		"bid":     result.Bid,
	})
}

// DeliverProject обрабатывает сдачу работ исполнителем.
func (h *ProjectHandler) DeliverProject(c *gin.Context) {
	var req models.DeliveryRequest
	// Тело необязательно: сдать работы можно без комментария.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.SendErrorResponse(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	h.changeProject(c, "failed to deliver project", func(ctx context.Context, actor models.Actor, projectId string) (*models.ProjectView, error) {
		return h.Awards.DeliverProject(ctx, actor, projectId, req)
	})
}

// AcceptDelivery обрабатывает приёмку работ заказчиком.
func (h *ProjectHandler) AcceptDelivery(c *gin.Context) {
	h.changeProject(c, "failed to accept delivery", func(ctx context.Context, actor models.Actor, projectId string) (*models.ProjectView, error) {
		return h.Awards.AcceptDelivery(ctx, actor, projectId)
	})
}

// RejectDelivery обрабатывает возврат работ на доработку.
func (h *ProjectHandler) RejectDelivery(c *gin.Context) {
	var req models.DeliveryRejection
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	h.changeProject(c, "failed to reject delivery", func(ctx context.Context, actor models.Actor, projectId string) (*models.ProjectView, error) {
		return h.Awards.RejectDelivery(ctx, actor, projectId, req)
	})
}

// RateMerchant обрабатывает оценку исполнителя.
func (h *ProjectHandler) RateMerchant(c *gin.Context) {
	var req models.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	h.changeProject(c, "failed to rate merchant", func(ctx context.Context, actor models.Actor, projectId string) (*models.ProjectView, error) {
		return h.Awards.RateMerchant(ctx, actor, projectId, req)
	})
}

// changeProject выполняет переход состояния проекта и отвечает обновлённым проектом.
func (h *ProjectHandler) changeProject(c *gin.Context, fallback string, change func(context.Context, models.Actor, string) (*models.ProjectView, error)) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	project, err := change(ctx, actor, c.Param("id"))
	if err != nil {
		h.fail(c, err, fallback)
		return
	}
	utils.SendSuccess(c, http.StatusOK, "project", project)
}
