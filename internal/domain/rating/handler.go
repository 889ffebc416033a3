package rating

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"myhometech/internal/middleware"
	"myhometech/internal/pkg/response"
	"myhometech/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/technicians/:id/ratings", h.ListForTechnician)
	protected.POST("/ratings", middleware.RequireRole("client"), h.Create)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if !validator.BindJSON(c, &req) {
		return
	}
	r, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, r)
}

// ListForTechnician returns the technician's rating summary and recent ratings.
func (h *Handler) ListForTechnician(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid technician ID")
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	ctx := c.Request.Context()
	summary, err := h.service.Summary(ctx, id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	items, err := h.service.ListForTechnician(ctx, id, limit, offset)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, TechnicianRatings{Summary: summary, Ratings: items})
}
