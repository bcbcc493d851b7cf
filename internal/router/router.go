package router

import (
	"github.com/senyabanana/marketplace-service/internal/handlers"
	"github.com/senyabanana/marketplace-service/internal/middleware"
	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/pkg/token"

	"github.com/gin-gonic/gin"
)

func InitRoutes(projectHandler *handlers.ProjectHandler, bidHandler *handlers.BidHandler, tokens *token.Service) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery(), middleware.RequestLogger())

	api := r.Group("/api")
	api.GET("/ping", handlers.PingHandler)

	projects := api.Group("/Projects")
	projects.GET("", projectHandler.GetProjects)
	projects.GET("/open", projectHandler.GetOpenProjects)

	auth := projects.Group("", middleware.JWTAuth(tokens))
	auth.GET("/:id", projectHandler.GetProject)
	auth.GET("/:id/bids", bidHandler.GetProjectBids)
	auth.POST("/:id/select-bid/:bidId", projectHandler.SelectBid)
	auth.POST("/bids/:bidId/accept", bidHandler.AcceptBid)
	auth.POST("/bids/:bidId/reject", bidHandler.RejectBid)

	owners := auth.Group("", middleware.RequireRole(models.Role.CanOwnProjects))
	owners.POST("", projectHandler.CreateProject)
	owners.GET("/customer/my-projects", projectHandler.GetMyProjects)
	owners.PUT("/:id", projectHandler.UpdateProject)
	owners.DELETE("/:id", projectHandler.DeleteProject)
	owners.POST("/:id/publish", projectHandler.PublishProject)
	owners.POST("/:id/cancel", projectHandler.CancelProject)
	owners.POST("/:id/accept-delivery", projectHandler.AcceptDelivery)
	owners.POST("/:id/reject-delivery", projectHandler.RejectDelivery)
	owners.POST("/:id/rate-merchant", projectHandler.RateMerchant)

	bidders := auth.Group("", middleware.RequireRole(models.Role.CanBid))
	bidders.POST("/:id/bids", bidHandler.CreateBid)
	bidders.GET("/bids/merchant/my-bids", bidHandler.GetMyBids)
	bidders.POST("/:id/deliver", projectHandler.DeliverProject)

	return r
}
