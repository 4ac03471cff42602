package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sharath018/expo-event-service/internal/event"
	"github.com/sharath018/expo-event-service/middleware"
)

func sampleEvents() []event.EventSummary {
	start := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)
	return []event.EventSummary{
		{
			ID: 7, Name: "İzmir Fuarı", URL: "izmir-expo", LocationType: event.LocationPhysical,
			Status: event.StatusReleased, TimeStatus: event.TimeUpcoming, TenantActive: true,
			GeneralStartDate: &start, GeneralEndDate: &end,
		},
		{ID: 8, Name: "Draft", URL: "draft", LocationType: event.LocationOnline, Status: event.StatusDraft},
	}
}

func fixedExporter() *EventExporter {
	return &EventExporter{now: func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }}
}

func TestExport_Excel(t *testing.T) {
	file, err := fixedExporter().Export(FormatExcel, sampleEvents())
	require.NoError(t, err)
	assert.Equal(t, "events_report_20240601_120000.xlsx", file.Filename)
	assert.Equal(t, mimeExcel, file.ContentType)

	f, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, eventHeaders, rows[0])
	assert.Equal(t, "7", rows[1][0])
	assert.Equal(t, "İzmir Fuarı", rows[1][1])
	assert.Equal(t, "2024-09-01 10:00", rows[1][7])
	assert.Equal(t, "false", rows[2][6])
}

func TestExport_CSV(t *testing.T) {
	file, err := fixedExporter().Export(FormatCSV, sampleEvents())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"8", "Draft", "draft", "ONLINE", "DRAFT", "", "false", "", ""}, records[2])
}

func TestExport_PDF(t *testing.T) {
	file, err := fixedExporter().Export(FormatPDF, sampleEvents())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
	assert.Equal(t, mimePDF, file.ContentType)
}

func TestExport_UnknownFormat(t *testing.T) {
	_, err := fixedExporter().Export("docx", nil)
	assert.Error(t, err)
	assert.False(t, IsFormat("docx"))
}

type mockLister struct{ mock.Mock }

func (m *mockLister) QueryEvents(ctx context.Context, language string, req event.EventQueryRequest, userID string, organizationID uint) ([]event.EventSummary, error) {
	args := m.Called(ctx, language, req, userID, organizationID)
	events, _ := args.Get(0).([]event.EventSummary)
	return events, args.Error(1)
}

func newExportRouter(lister EventLister) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		middleware.SetAccessContext(c, middleware.AccessContext{UserID: "u-1", OrganizationID: 10, Language: "tr"})
		c.Next()
	})
	h := NewHandler(lister, fixedExporter(), nil)
	r.GET("/events/export", h.ExportEvents)
	return r
}

func TestHandler_ExportEvents(t *testing.T) {
	lister := &mockLister{}
	want := event.EventQueryRequest{
		Search:      "expo",
		StatusList:  []event.TimeStatus{event.TimeUpcoming, event.TimeOngoing},
		OrderColumn: "name",
		Direction:   "desc",
	}
	lister.On("QueryEvents", mock.Anything, "tr", want, "u-1", uint(10)).Return(sampleEvents(), nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/events/export?format=csv&search=expo&status_list=upcoming,ONGOING&order_column=name&direction=desc", nil)
	newExportRouter(lister).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "attachment; filename=events_report_20240601_120000.csv", w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "izmir-expo")
	lister.AssertExpectations(t)
}

func TestHandler_ExportEventsRejectsBadInput(t *testing.T) {
	r := newExportRouter(&mockLister{})

	for _, target := range []string{
		"/events/export?format=docx",
		"/events/export?status_list=SOMEDAY",
		"/events/export?order_column=secret",
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestHandler_ExportEventsMapsDependencyFailure(t *testing.T) {
	lister := &mockLister{}
	lister.On("QueryEvents", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &event.Error{Kind: event.ErrDependency, Code: event.CodeDependency, Message: "permission service unavailable"}).Once()

	w := httptest.NewRecorder()
	newExportRouter(lister).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/export?format=pdf", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
