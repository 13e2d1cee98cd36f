package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"weather-app-api/models"
)

// ExportColumns is the fixed projection shared by every encoder. The opaque
// weather payload is always excluded.
var ExportColumns = []string{
	"id", "location_name", "latitude", "longitude",
	"start_date", "end_date",
	"temperature", "humidity", "recorded_at",
	"created_at", "updated_at",
}

// PDFMaxRows caps the tabular PDF; the other encoders have no row limit.
const PDFMaxRows = 200

const (
	exportDateLayout = "2006-01-02"
	exportTimeLayout = time.RFC3339
)

// ExportRow is one reading projected onto ExportColumns. Pointer fields
// serialize as JSON null when absent; the text encoders render them as the
// empty string.
type ExportRow struct {
	ID           uint     `json:"id"`
	LocationName *string  `json:"location_name"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	StartDate    *string  `json:"start_date"`
	EndDate      *string  `json:"end_date"`
	Temperature  *float64 `json:"temperature"`
	Humidity     *float64 `json:"humidity"`
	RecordedAt   *string  `json:"recorded_at"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    *string  `json:"updated_at"`
}

func NewExportRow(rec models.WeatherHistory) ExportRow {
	return ExportRow{
		ID:           rec.ID,
		LocationName: rec.LocationName,
		Latitude:     rec.Latitude,
		Longitude:    rec.Longitude,
		StartDate:    formatDate(rec.StartDate),
		EndDate:      formatDate(rec.EndDate),
		Temperature:  rec.Temperature,
		Humidity:     rec.Humidity,
		RecordedAt:   formatTime(rec.RecordedAt),
		CreatedAt:    rec.CreatedAt.UTC().Format(exportTimeLayout),
		UpdatedAt:    formatTime(rec.UpdatedAt),
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(exportDateLayout)
	return &s
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(exportTimeLayout)
	return &s
}

// cells renders the row in column order, empty string for absent values.
func (r ExportRow) cells() []string {
	return []string{
		strconv.FormatUint(uint64(r.ID), 10),
		strOrEmpty(r.LocationName),
		floatOrEmpty(r.Latitude),
		floatOrEmpty(r.Longitude),
		strOrEmpty(r.StartDate),
		strOrEmpty(r.EndDate),
		floatOrEmpty(r.Temperature),
		floatOrEmpty(r.Humidity),
		strOrEmpty(r.RecordedAt),
		r.CreatedAt,
		strOrEmpty(r.UpdatedAt),
	}
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatOrEmpty(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

// ExportCSV writes a header row plus one line per reading.
func ExportCSV(rows []models.WeatherHistory) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(ExportColumns); err != nil {
		return nil, err
	}
	for _, rec := range rows {
		if err := writer.Write(NewExportRow(rec).cells()); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportJSON writes an array of objects keyed by column name; absent values
// are null.
func ExportJSON(rows []models.WeatherHistory) ([]byte, error) {
	out := make([]ExportRow, 0, len(rows))
	for _, rec := range rows {
		out = append(out, NewExportRow(rec))
	}
	return json.Marshal(out)
}

// ExportXML writes a weather_history root with one record element per
// reading and one entity-escaped tag per column.
func ExportXML(rows []models.WeatherHistory) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	buf.WriteString("<weather_history>\n")
	for _, rec := range rows {
		cells := NewExportRow(rec).cells()
		buf.WriteString("  <record>\n")
		for i, column := range ExportColumns {
			buf.WriteString("    <" + column + ">")
			if err := xml.EscapeText(&buf, []byte(cells[i])); err != nil {
				return nil, err
			}
			buf.WriteString("</" + column + ">\n")
		}
		buf.WriteString("  </record>\n")
	}
	buf.WriteString("</weather_history>\n")
	return buf.Bytes(), nil
}

var pdfColumnWidths = []float64{10, 42, 22, 22, 20, 20, 18, 18, 35, 35, 35}

// ExportPDF lays the readings out as a titled landscape table, repeating the
// header row on every page. Only the first PDFMaxRows readings are included;
// larger result sets get an explicit notice. Bulk exports belong to the text
// encoders.
func ExportPDF(rows []models.WeatherHistory, title string) ([]byte, error) {
	capped, truncated := capRows(rows, PDFMaxRows)

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	if truncated {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 6, fmt.Sprintf("Showing first %d rows", PDFMaxRows), "", 1, "L", false, 0, "")
	}

	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", 7)
		pdf.SetFillColor(242, 242, 242)
		for i, column := range ExportColumns {
			pdf.CellFormat(pdfColumnWidths[i], 6, column, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 7)
	}
	drawHeader()

	const rowHeight = 5.5
	const pageBreakAt = 195.0 // A4 landscape is 210mm tall
	for _, rec := range capped {
		if pdf.GetY()+rowHeight > pageBreakAt {
			pdf.AddPage()
			drawHeader()
		}
		for i, cell := range NewExportRow(rec).cells() {
			pdf.CellFormat(pdfColumnWidths[i], rowHeight, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func capRows(rows []models.WeatherHistory, max int) ([]models.WeatherHistory, bool) {
	if len(rows) > max {
		return rows[:max], true
	}
	return rows, false
}
