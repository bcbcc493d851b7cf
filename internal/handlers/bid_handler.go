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

// BidHandler - структура для обработки HTTP-запросов по предложениям.
type BidHandler struct {
	Service        *services.BidService
	Awards         *services.AwardService
	Logger         *slog.Logger
	Timeout        time.Duration
	ExposeInternal bool
}

// NewBidHandler создает новый экземпляр BidHandler.
func NewBidHandler(service *services.BidService, awards *services.AwardService, logger *slog.Logger, timeout time.Duration, exposeInternal bool) *BidHandler {
	return &BidHandler{
		Service:        service,
		Awards:         awards,
		Logger:         logger,
		Timeout:        timeout,
		ExposeInternal: exposeInternal,
	}
}

func (h *BidHandler) fail(c *gin.Context, err error, fallback string) {
	sendError(c, h.Logger, h.ExposeInternal, err, fallback)
}

// CreateBid обрабатывает запросы для создания предложения.
func (h *BidHandler) CreateBid(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	var bidReq models.BidRequest
	if err := c.ShouldBindJSON(&bidReq); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	newBid, err := h.Service.CreateBid(ctx, actor, c.Param("id"), bidReq)
	if err != nil {
		h.fail(c, err, "failed to create bid")
		return
	}
	utils.SendSuccess(c, http.StatusCreated, "bid", newBid)
}

// GetProjectBids обрабатывает запросы списка предложений по проекту.
func (h *BidHandler) GetProjectBids(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	bids, err := h.Service.ListBidsForProject(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to fetch bids")
		return
	}
	utils.SendSuccess(c, http.StatusOK, "bids", bids)
}

// GetMyBids обрабатывает запросы списка предложений текущего исполнителя.
func (h *BidHandler) GetMyBids(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	bids, err := h.Service.ListBidsForMerchant(ctx, actor)
	if err != nil {
		h.fail(c, err, "failed to fetch bids")
		return
	}
	utils.SendSuccess(c, http.StatusOK, "bids", bids)
}

// AcceptBid обрабатывает принятие предложения заказчиком.
func (h *BidHandler) AcceptBid(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	result, err := h.Awards.AcceptBid(ctx, actor, c.Param("bidId"))
	if err != nil {
		h.fail(c, err, "failed to accept bid")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"project": result.Project,
		"bid":     result.Bid,
	})
}

// RejectBid обрабатывает отклонение одного предложения.
func (h *BidHandler) RejectBid(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	bid, err := h.Service.RejectBid(ctx, actor, c.Param("bidId"))
	if err != nil {
		h.fail(c, err, "failed to reject bid")
		return
	}
	utils.SendSuccess(c, http.StatusOK, "bid", bid)
}
