package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sharath018/expo-event-service/middleware"
)

type Handler struct {
	Service *Service
	log     *zap.Logger
}

func NewHandler(s *Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if err := RegisterValidators(); err != nil {
		log.Error("❌ listing validators not registered", zap.Error(err))
		panic(fmt.Sprintf("❌ listing validators: %v", err))
	}
	return &Handler{Service: s, log: log}
}

// customValidations back the binding tags of the listing filter.
var customValidations = map[string]validator.Func{
	"timestatus": func(fl validator.FieldLevel) bool {
		return TimeStatus(fl.Field().String()).IsValid()
	},
	"eventcolumn": func(fl validator.FieldLevel) bool {
		return IsOrderColumn(fl.Field().String())
	},
}

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the listing filter tags to gin's validator.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		registerErr = registerValidations(v, customValidations)
	})
	return registerErr
}

func registerValidations(v *validator.Validate, fns map[string]validator.Func) error {
	for tag, fn := range fns {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %q validation: %w", tag, err)
		}
	}
	return nil
}

// ===========================
// 📌 Error rendering
func (h *Handler) respondError(c *gin.Context, err error) {
	RespondError(c, h.log, err)
}

// RespondError writes err as {"error", "code"} with the status of its kind.
// Errors without a kind become an opaque 500.
func RespondError(c *gin.Context, log *zap.Logger, err error) {
	var status int
	switch {
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, ErrDependency):
		status = http.StatusBadGateway
	default:
		log.Error("❌ unexpected error", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if status == http.StatusBadGateway {
		log.Warn("⚠️ dependency failure", zap.String("path", c.FullPath()), zap.Error(err))
	}
	var e *Error
	if !errors.As(err, &e) {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(status, gin.H{"error": e.Message, "code": e.Code})
}

func accessContext(c *gin.Context) (middleware.AccessContext, bool) {
	ac, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
	}
	return ac, ok
}

func requireEventID(c *gin.Context, ac middleware.AccessContext) (uint, bool) {
	if !ac.HasEvent() {
		c.JSON(http.StatusBadRequest, gin.H{"error": middleware.HeaderEventID + " header is required"})
		return 0, false
	}
	return ac.EventID, true
}

func actorOf(c *gin.Context, ac middleware.AccessContext) Actor {
	return Actor{UserID: ac.UserID, IP: middleware.GetIPFromContext(c)}
}

// bindSaveRequest reads the multipart "data" field as JSON and validates it
// with gin's binding rules.
func bindSaveRequest(c *gin.Context) (SaveEventRequest, error) {
	var req SaveEventRequest
	raw := c.PostForm("data")
	if raw == "" {
		return req, errors.New("data field is required")
	}
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return req, err
	}
	return req, binding.Validator.ValidateStruct(&req)
}

// readPicture returns nil when the request carries no picture part.
func readPicture(c *gin.Context) (*Picture, error) {
	fh, err := c.FormFile("picture")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &Picture{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Data:        data,
	}, nil
}

// ===========================
// 🎯 Create Event - POST /events
//
// @Summary Create event
// @Tags Event
// @Accept multipart/form-data
// @Produce json
// @Param X-Organization-ID header int true "Organization ID"
// @Param data formData string true "SaveEventRequest as JSON"
// @Param picture formData file true "Event picture (png, jpg, jpeg; max 5 MB)"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/events [post]
func (h *Handler) CreateEvent(c *gin.Context) {
	ac, ok := accessContext(c)
	if !ok {
		return
	}

	req, err := bindSaveRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}
	picture, err := readPicture(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid picture: " + err.Error()})
		return
	}

	id, err := h.Service.CreateEvent(c.Request.Context(), req, ac.OrganizationID, picture, actorOf(c, ac))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "event created successfully", "id": id})
}

// ===========================
// 🔍 Get Event - GET /events
//
// @Summary Get event
// @Tags Event
// @Produce json
// @Param X-Organization-ID header int true "Organization ID"
// @Param X-Event-ID header int true "Event ID"
// @Success 200 {object} EventDetail
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/events [get]
func (h *Handler) GetEvent(c *gin.Context) {
	ac, ok := accessContext(c)
	if !ok {
		return
	}
	eventID, ok := requireEventID(c, ac)
	if !ok {
		return
	}

	detail, err := h.Service.GetEvent(c.Request.Context(), eventID, ac.OrganizationID, ac.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// CheckURL - GET /events/url-check?url=...&event_id=...
func (h *Handler) CheckURL(c *gin.Context) {
	var excludeID *uint
	if raw := c.Query("event_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event_id"})
			return
		}
		v := uint(id)
		excludeID = &v
	}

	if err := h.Service.CheckURL(c.Request.Context(), c.Query("url"), excludeID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": true})
}

// ===========================
// 📄 Query Events - POST /events/all
//
// @Summary List events
// @Tags Event
// @Accept json
// @Produce json
// @Param X-Organization-ID header int true "Organization ID"
// @Param filter body EventQueryRequest true "Filter"
// @Success 200 {array} EventSummary
// @Failure 400 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /api/v1/events/all [post]
func (h *Handler) QueryEvents(c *gin.Context) {
	ac, ok := accessContext(c)
	if !ok {
		return
	}

	var req EventQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter: " + err.Error()})
		return
	}

	events, err := h.Service.QueryEvents(c.Request.Context(), ac.Language, req, ac.UserID, ac.OrganizationID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// ===========================
// 🛠 Update Event - PUT /events
func (h *Handler) UpdateEvent(c *gin.Context) {
	ac, ok := accessContext(c)
	if !ok {
		return
	}
	eventID, ok := requireEventID(c, ac)
	if !ok {
		return
	}

	req, err := bindSaveRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}
	picture, err := readPicture(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid picture: " + err.Error()})
		return
	}

	if err := h.Service.UpdateEvent(c.Request.Context(), eventID, req, picture, actorOf(c, ac)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "event updated successfully"})
}

// ===========================
// 📢 Change Status - PUT /events/status
func (h *Handler) ChangeStatus(c *gin.Context) {
	ac, ok := accessContext(c)
	if !ok {
		return
	}
	eventID, ok := requireEventID(c, ac)
	if !ok {
		return
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	if err := h.Service.ChangeStatus(c.Request.Context(), eventID, req.Status, actorOf(c, ac)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "event status updated", "status": req.Status})
}

// ===========================
// 🗑 Delete Event - DELETE /events
func (h *Handler) DeleteEvent(c *gin.Context) {
	ac, ok := accessContext(c)
	if !ok {
		return
	}
	eventID, ok := requireEventID(c, ac)
	if !ok {
		return
	}

	if err := h.Service.DeleteEvent(c.Request.Context(), eventID, actorOf(c, ac)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "event deleted successfully"})
}

// ===========================
// 🏢 Organization Events - GET /events/organization/:id
func (h *Handler) ListForOrganization(c *gin.Context) {
	ac, ok := accessContext(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organization ID"})
		return
	}
	if uint(id) != ac.OrganizationID {
		c.JSON(http.StatusForbidden, gin.H{"error": "organization mismatch"})
		return
	}

	count, err := h.Service.CountForOrganization(c.Request.Context(), uint(id))
	if err != nil {
		h.respondError(c, err)
		return
	}
	events, err := h.Service.ListForOrganization(c.Request.Context(), uint(id), ac.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count, "events": events})
}
