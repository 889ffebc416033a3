package profile

import (
	"github.com/gin-gonic/gin"

	"myhometech/internal/middleware"
)

// RegisterRoutes registers all profile routes
func RegisterRoutes(public, protected *gin.RouterGroup, clientHandler *ClientHandler, technicianHandler *TechnicianHandler) {
	public.GET("/technicians/:id", technicianHandler.GetPublic)

	profile := protected.Group("/profile")
	{
		client := profile.Group("/client", middleware.RequireRole("client"))
		client.GET("", clientHandler.GetProfile)
		client.PATCH("", clientHandler.UpdateProfile)

		technician := profile.Group("/technician", middleware.RequireRole("technician"))
		technician.GET("", technicianHandler.GetProfile)
		technician.PATCH("", technicianHandler.UpdateProfile)
	}
}
