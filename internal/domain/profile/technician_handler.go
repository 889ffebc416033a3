package profile

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"myhometech/internal/pkg/response"
	"myhometech/internal/pkg/validator"
)

// TechnicianHandler handles technician profile HTTP requests
type TechnicianHandler struct {
	service *Service
}

func NewTechnicianHandler(service *Service) *TechnicianHandler {
	return &TechnicianHandler{service: service}
}

// GetProfile handles GET /api/v1/profile/technician
func (h *TechnicianHandler) GetProfile(c *gin.Context) {
	profile, err := h.service.GetTechnicianProfile(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// UpdateProfile handles PATCH /api/v1/profile/technician
func (h *TechnicianHandler) UpdateProfile(c *gin.Context) {
	var req UpdateTechnicianProfileRequest
	if !validator.BindJSON(c, &req) {
		return
	}

	profile, err := h.service.UpdateTechnicianProfile(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// GetPublic handles GET /api/v1/technicians/:id where id is the technician's user id.
func (h *TechnicianHandler) GetPublic(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid technician ID")
		return
	}

	profile, err := h.service.GetPublicTechnician(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}
