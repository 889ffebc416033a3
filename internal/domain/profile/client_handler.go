package profile

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"myhometech/internal/pkg/response"
	"myhometech/internal/pkg/validator"
)

// ClientHandler handles client profile HTTP requests
type ClientHandler struct {
	service *Service
}

func NewClientHandler(service *Service) *ClientHandler {
	return &ClientHandler{service: service}
}

// GetProfile handles GET /api/v1/profile/client
func (h *ClientHandler) GetProfile(c *gin.Context) {
	profile, err := h.service.GetClientProfile(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// UpdateProfile handles PATCH /api/v1/profile/client
func (h *ClientHandler) UpdateProfile(c *gin.Context) {
	var req UpdateClientProfileRequest
	if !validator.BindJSON(c, &req) {
		return
	}

	profile, err := h.service.UpdateClientProfile(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}
