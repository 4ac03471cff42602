package reports

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sharath018/expo-event-service/internal/event"
	"github.com/sharath018/expo-event-service/middleware"
)

// EventLister is the listing the export renders.
type EventLister interface {
	QueryEvents(ctx context.Context, language string, req event.EventQueryRequest, userID string, organizationID uint) ([]event.EventSummary, error)
}

type Handler struct {
	events   EventLister
	exporter *EventExporter
	log      *zap.Logger
}

func NewHandler(events EventLister, exporter *EventExporter, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{events: events, exporter: exporter, log: log}
}

// ExportEvents godoc
// @Summary      Export the event listing
// @Tags         events
// @Produce      octet-stream
// @Param        format        query  string  true   "xlsx, csv or pdf"
// @Param        search        query  string  false  "name search"
// @Param        status_list   query  string  false  "comma separated UPCOMING,ONGOING,COMPLETED"
// @Param        order_column  query  string  false  "name, url, created or time"
// @Param        direction     query  string  false  "asc or desc"
// @Success      200  {file}  file
// @Failure      400  {object}  map[string]string
// @Router       /events/export [get]
func (h *Handler) ExportEvents(c *gin.Context) {
	ac, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", FormatExcel))
	if !IsFormat(format) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported format: %s", format)})
		return
	}

	req, err := queryFromURL(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	events, err := h.events.QueryEvents(c.Request.Context(), ac.Language, req, ac.UserID, ac.OrganizationID)
	if err != nil {
		event.RespondError(c, h.log, err)
		return
	}

	file, err := h.exporter.Export(format, events)
	if err != nil {
		h.log.Error("❌ export failed", zap.String("format", format), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	h.log.Info("📄 events exported",
		zap.String("format", format),
		zap.Int("rows", len(events)),
		zap.Uint("organization_id", ac.OrganizationID),
	)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func queryFromURL(c *gin.Context) (event.EventQueryRequest, error) {
	req := event.EventQueryRequest{
		Search:      c.Query("search"),
		OrderColumn: c.Query("order_column"),
		Direction:   c.Query("direction"),
	}
	if req.OrderColumn != "" && !event.IsOrderColumn(req.OrderColumn) {
		return req, fmt.Errorf("invalid order_column: %s", req.OrderColumn)
	}
	for _, raw := range strings.Split(c.Query("status_list"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		status := event.TimeStatus(strings.ToUpper(raw))
		if !status.IsValid() {
			return req, fmt.Errorf("invalid status: %s", raw)
		}
		req.StatusList = append(req.StatusList, status)
	}
	return req, nil
}
