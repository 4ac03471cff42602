package auditlog

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/expo-event-service/middleware"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetEventAuditLogs handles GET /events/:id/audit
// @Summary Get event audit trail
// @Description Lifecycle mutations recorded for one event of the caller's organization
// @Tags AuditLog
// @Produce json
// @Param id path uint true "Event ID"
// @Param X-Organization-ID header int true "Organization ID"
// @Param action query string false "Filter by action (partial match)"
// @Param from_date query string false "Filter from date (YYYY-MM-DD)"
// @Param to_date query string false "Filter to date (YYYY-MM-DD)"
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Number of records per page (default: 20)"
// @Success 200 {object} PaginatedAuditLogs
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /events/{id}/audit [get]
func (h *Handler) GetEventAuditLogs(c *gin.Context) {
	ac, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
		return
	}

	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || eventID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event ID"})
		return
	}

	filter := AuditLogFilter{
		OrganizationID: ac.OrganizationID,
		EventID:        uint(eventID),
		Action:         c.Query("action"),
	}

	if v := c.Query("from_date"); v != "" {
		from, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from_date format. Use YYYY-MM-DD"})
			return
		}
		filter.FromDate = &from
	}
	if v := c.Query("to_date"); v != "" {
		to, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to_date format. Use YYYY-MM-DD"})
			return
		}
		// inclusive: the whole day
		endOfDay := to.Add(24*time.Hour - time.Second)
		filter.ToDate = &endOfDay
	}

	filter.Page, _ = strconv.Atoi(c.Query("page"))
	filter.Limit, _ = strconv.Atoi(c.Query("limit"))

	result, err := h.service.GetAuditLogs(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve audit logs"})
		return
	}
	c.JSON(http.StatusOK, result)
}
