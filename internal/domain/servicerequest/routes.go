package servicerequest

import (
	"github.com/gin-gonic/gin"

	"myhometech/internal/middleware"
)

// RegisterRoutes mounts the workflow under an authenticated group.
func RegisterRoutes(protected *gin.RouterGroup, h *Handler) {
	client := middleware.RequireRole("client")
	technician := middleware.RequireRole("technician")

	requests := protected.Group("/service-requests")
	{
		requests.POST("", client, h.Create)
		requests.GET("/mine", middleware.RequireRoles("client", "technician", "admin"), h.Mine)
		requests.GET("/available-for-me", technician, h.AvailableForMe)
		requests.GET("/:id", h.Get)
		requests.GET("/:id/proposals", h.ListProposals)
		requests.POST("/:id/accept", technician, h.Accept)
		requests.POST("/:id/propose-alternative-date", technician, h.ProposeAlternativeDate)
		requests.POST("/:id/complete", client, h.Complete)
		requests.POST("/:id/cancel", h.Cancel)
	}

	proposals := protected.Group("/alternative-date-proposals", client)
	{
		proposals.POST("/:id/accept", h.AcceptProposal)
		proposals.POST("/:id/reject", h.RejectProposal)
	}
}
