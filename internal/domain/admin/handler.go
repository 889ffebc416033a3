package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"myhometech/internal/domain/servicerequest"
	"myhometech/internal/middleware"
	"myhometech/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	admin := protected.Group("/admin", middleware.AdminOnly())
	{
		admin.GET("/reports/summary", h.Summary)
		admin.GET("/reports/service-requests.xlsx", h.ExportServiceRequests)
		admin.POST("/service-requests/expire", h.Expire)
	}
}

func (h *Handler) Summary(c *gin.Context) {
	out, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// ExportServiceRequests handles GET /api/v1/admin/reports/service-requests.xlsx
// Optional filters: status, from, to (YYYY-MM-DD or RFC3339, UTC).
func (h *Handler) ExportServiceRequests(c *gin.Context) {
	var f ExportFilter
	if st := c.Query("status"); st != "" {
		if !servicerequest.Status(st).Valid() {
			response.Error(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown service request status")
			return
		}
		f.Status = st
	}
	var ok bool
	if f.From, ok = parseDateParam(c, "from"); !ok {
		return
	}
	if f.To, ok = parseDateParam(c, "to"); !ok {
		return
	}

	book, filename, err := h.service.ExportServiceRequests(c.Request.Context(), f)
	if err != nil {
		response.FromError(c, err)
		return
	}
	defer book.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Status(http.StatusOK)
	if err := book.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

func (h *Handler) Expire(c *gin.Context) {
	out, err := h.service.ExpireNow(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func parseDateParam(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, true
		}
	}
	response.Error(c, http.StatusBadRequest, "INVALID_DATE", "Invalid "+name+" date")
	return nil, false
}
