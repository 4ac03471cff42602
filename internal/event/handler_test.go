package event

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sharath018/expo-event-service/middleware"
)

func newTestRouter(f *fixture, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		middleware.SetAccessContext(c, middleware.AccessContext{
			UserID:         userID,
			OrganizationID: middleware.ParseUintHeader(c, middleware.HeaderOrganizationID),
			EventID:        middleware.ParseUintHeader(c, middleware.HeaderEventID),
			Language:       c.GetHeader(middleware.HeaderLanguage),
		})
		c.Next()
	})

	h := NewHandler(f.svc, nil)
	events := r.Group("/events")
	events.POST("", h.CreateEvent)
	events.GET("", h.GetEvent)
	events.GET("/url-check", h.CheckURL)
	events.POST("/all", h.QueryEvents)
	events.PUT("", h.UpdateEvent)
	events.PUT("/status", h.ChangeStatus)
	events.DELETE("", h.DeleteEvent)
	events.GET("/organization/:id", h.ListForOrganization)
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func scoped(req *http.Request, eventID uint) *http.Request {
	req.Header.Set(middleware.HeaderOrganizationID, strconv.Itoa(int(orgID)))
	if eventID > 0 {
		req.Header.Set(middleware.HeaderEventID, strconv.Itoa(int(eventID)))
	}
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandler_CreateEventMultipart(t *testing.T) {
	f := newFixture(t)
	f.files.On("Upload", mock.Anything, mock.MatchedBy(func(p *Picture) bool {
		return p.Filename == "cover.png" && string(p.Data) == "fake-png"
	}), BucketEventPicture).Return("stored.png", nil).Once()
	f.roles.On("ProvisionDefaultRoles", mock.Anything, RoleScopeEvent, DefaultRoleTemplates, uint(1)).Return(nil).Once()

	data, err := json.Marshal(saveRequest("expo2024", upcoming()))
	require.NoError(t, err)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("data", string(data)))
	part, err := mw.CreateFormFile("picture", "cover.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/events", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := serve(newTestRouter(f, ownerID), scoped(req, 0))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.EqualValues(t, 1, decode(t, w)["id"])
}

func TestHandler_CreateEventRejectsMissingData(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/events", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := serve(newTestRouter(f, ownerID), scoped(req, 0))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_GetEventRequiresEventHeader(t *testing.T) {
	f := newFixture(t)

	w := serve(newTestRouter(f, ownerID), scoped(httptest.NewRequest(http.MethodGet, "/events", nil), 0))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ErrorMapping(t *testing.T) {
	f := newFixture(t)
	released := f.seed("expo", StatusReleased, upcoming())
	draft := f.seed("draft", StatusDraft, upcoming())

	r := newTestRouter(f, ownerID)

	w := serve(r, scoped(httptest.NewRequest(http.MethodDelete, "/events", nil), released))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, CodeStatusConflict, decode(t, w)["code"])

	w = serve(r, scoped(httptest.NewRequest(http.MethodGet, "/events", nil), 999))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeNotFound, decode(t, w)["code"])

	w = serve(newTestRouter(f, otherID), scoped(httptest.NewRequest(http.MethodGet, "/events", nil), draft))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, CodeForbidden, decode(t, w)["code"])

	w = serve(r, httptest.NewRequest(http.MethodGet, "/events/url-check?url=my-event!", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, CodeWrongURL, body["code"])
	assert.Equal(t, "wrong domain name", body["error"])

	status := strings.NewReader(`{"status":"DRAFT"}`)
	w = serve(r, scoped(httptest.NewRequest(http.MethodPut, "/events/status", status), draft))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandler_UnexpectedErrorIs500(t *testing.T) {
	f := newFixture(t)
	id := f.seed("draft", StatusDraft, nil)
	f.files.On("Remove", mock.Anything, BucketEventPicture, "draft.png").Return(nil).Once()
	f.store.failOn = "SaveEvent"

	w := serve(newTestRouter(f, ownerID), scoped(httptest.NewRequest(http.MethodDelete, "/events", nil), id))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), errInjected.Error())
}

func TestHandler_QueryEvents(t *testing.T) {
	f := newFixture(t)
	f.seed("expo", StatusDraft, upcoming())
	f.perms.On("EventPermissions", mock.Anything, mock.Anything).Return(orgWide("EVENT_VIEW"), nil).Once()
	r := newTestRouter(f, ownerID)

	req := httptest.NewRequest(http.MethodPost, "/events/all", strings.NewReader(`{"status_list":["UPCOMING"],"order_column":"name"}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, scoped(req, 0))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got []EventSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, [][]string{{"EVENT_VIEW"}}, got[0].PermissionList)

	bad := httptest.NewRequest(http.MethodPost, "/events/all", strings.NewReader(`{"status_list":["SOMEDAY"]}`))
	bad.Header.Set("Content-Type", "application/json")
	w = serve(r, scoped(bad, 0))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	badColumn := httptest.NewRequest(http.MethodPost, "/events/all", strings.NewReader(`{"order_column":"secret"}`))
	badColumn.Header.Set("Content-Type", "application/json")
	w = serve(r, scoped(badColumn, 0))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ListForOrganization(t *testing.T) {
	f := newFixture(t)
	f.seed("a", StatusDraft, upcoming())
	r := newTestRouter(f, ownerID)

	w := serve(r, scoped(httptest.NewRequest(http.MethodGet, "/events/organization/10", nil), 0))
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = serve(r, scoped(httptest.NewRequest(http.MethodGet, "/events/organization/11", nil), 0))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRegisterValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())

	type filter struct {
		Status string `validate:"timestatus"`
		Column string `validate:"omitempty,eventcolumn"`
	}
	v := validator.New()
	require.NoError(t, registerValidations(v, customValidations))
	assert.NoError(t, v.Struct(filter{Status: "ONGOING", Column: OrderByName}))
	assert.Error(t, v.Struct(filter{Status: "SOMEDAY"}))
	assert.Error(t, v.Struct(filter{Status: "UPCOMING", Column: "secret"}))
}

func TestRegisterValidations_ReportsFailure(t *testing.T) {
	err := registerValidations(validator.New(), map[string]validator.Func{"": customValidations["timestatus"]})
	assert.Error(t, err)
}
