package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/sharath018/expo-event-service/internal/event"
)

// Export formats
const (
	FormatExcel = "xlsx"
	FormatCSV   = "csv"
	FormatPDF   = "pdf"
)

const (
	mimeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeCSV   = "text/csv"
	mimePDF   = "application/pdf"

	cellDateLayout = "2006-01-02 15:04"
	sheetName      = "Events"
)

var eventHeaders = []string{"ID", "Name", "URL", "Location", "Status", "Time Status", "Tenant Active", "Start", "End"}

// File is a rendered export.
type File struct {
	Data        []byte
	Filename    string
	ContentType string
}

// EventExporter renders the event listing as a file.
type EventExporter struct {
	now func() time.Time
}

func NewEventExporter() *EventExporter {
	return &EventExporter{now: time.Now}
}

func IsFormat(format string) bool {
	switch format {
	case FormatExcel, FormatCSV, FormatPDF:
		return true
	}
	return false
}

func (e *EventExporter) Export(format string, events []event.EventSummary) (*File, error) {
	timestamp := e.now().Format("20060102_150405")

	var (
		data []byte
		mime string
		err  error
	)
	switch format {
	case FormatExcel:
		data, err = e.exportExcel(events)
		mime = mimeExcel
	case FormatCSV:
		data, err = e.exportCSV(events)
		mime = mimeCSV
	case FormatPDF:
		data, err = e.exportPDF(events)
		mime = mimePDF
	default:
		return nil, fmt.Errorf("unsupported format for events: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("export events as %s: %w", format, err)
	}

	return &File{
		Data:        data,
		Filename:    fmt.Sprintf("events_report_%s.%s", timestamp, format),
		ContentType: mime,
	}, nil
}

func eventRecord(ev event.EventSummary) []string {
	return []string{
		strconv.FormatUint(uint64(ev.ID), 10),
		ev.Name,
		ev.URL,
		string(ev.LocationType),
		string(ev.Status),
		string(ev.TimeStatus),
		strconv.FormatBool(ev.TenantActive),
		formatDate(ev.GeneralStartDate),
		formatDate(ev.GeneralEndDate),
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(cellDateLayout)
}

func (e *EventExporter) exportExcel(events []event.EventSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	for i, header := range eventHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, err
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(eventHeaders), 1)
	if err := f.SetCellStyle(sheetName, "A1", lastHeader, headerStyle); err != nil {
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(eventHeaders))
	if err := f.SetColWidth(sheetName, "B", lastCol, 20); err != nil {
		return nil, err
	}

	for r, ev := range events {
		row := r + 2
		for col, value := range eventRecord(ev) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			var v interface{} = value
			if col == 0 {
				v = ev.ID
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *EventExporter) exportCSV(events []event.EventSummary) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(eventHeaders); err != nil {
		return nil, err
	}
	for _, ev := range events {
		if err := writer.Write(eventRecord(ev)); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *EventExporter) exportPDF(events []event.EventSummary) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Events Report")
	pdf.Ln(14)

	widths := []float64{12, 60, 40, 22, 26, 24, 20, 36, 36}
	pdf.SetFont("Arial", "B", 9)
	for i, header := range eventHeaders {
		pdf.CellFormat(widths[i], 7, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, ev := range events {
		for i, value := range eventRecord(ev) {
			align := "L"
			if i == 0 || i == 6 {
				align = "C"
			}
			pdf.CellFormat(widths[i], 6, tr(truncate(value, 48)), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max-1])) + "…"
}
