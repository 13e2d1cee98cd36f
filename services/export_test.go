package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"weather-app-api/models"
)

func ptrStr(s string) *string   { return &s }
func ptrF64(f float64) *float64 { return &f }

func sampleRows() []models.WeatherHistory {
	created := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	recorded := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	return []models.WeatherHistory{
		{
			ID:           2,
			LocationName: ptrStr("Paris"),
			Latitude:     ptrF64(48.85661),
			Longitude:    ptrF64(2.35222),
			StartDate:    &start,
			EndDate:      &end,
			Temperature:  ptrF64(4.5),
			Humidity:     ptrF64(81),
			RecordedAt:   &recorded,
			CreatedAt:    created,
		},
		{
			// Sparse record: only the required reading fields are set.
			ID:           1,
			LocationName: ptrStr("Reykjavik"),
			Temperature:  ptrF64(-2.25),
			Humidity:     ptrF64(70),
			RecordedAt:   &recorded,
			CreatedAt:    created,
		},
	}
}

func TestExportCSV(t *testing.T) {
	content, err := ExportCSV(sampleRows())
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d csv records, want header + 2 rows", len(records))
	}

	header := strings.Join(records[0], ",")
	wantHeader := strings.Join(ExportColumns, ",")
	if header != wantHeader {
		t.Errorf("header = %q, want %q", header, wantHeader)
	}

	paris := records[1]
	if paris[1] != "Paris" || paris[2] != "48.85661" || paris[4] != "2024-01-01" {
		t.Errorf("unexpected first row: %v", paris)
	}
	reykjavik := records[2]
	for _, idx := range []int{2, 3, 4, 5, 10} { // lat, lon, dates, updated_at absent
		if reykjavik[idx] != "" {
			t.Errorf("sparse row column %d = %q, want empty", idx, reykjavik[idx])
		}
	}
	if reykjavik[6] != "-2.25" {
		t.Errorf("temperature cell = %q, want -2.25", reykjavik[6])
	}
}

func TestExportJSONNullsAndOrder(t *testing.T) {
	content, err := ExportJSON(sampleRows())
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	var decoded []map[string]interface{}
	if err := json.Unmarshal(content, &decoded); err != nil {
		t.Fatalf("parse json: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("got %d objects, want 2", len(decoded))
	}

	sparse := decoded[1]
	for _, key := range []string{"latitude", "longitude", "start_date", "end_date", "updated_at"} {
		val, present := sparse[key]
		if !present {
			t.Errorf("key %q missing from sparse object", key)
			continue
		}
		if val != nil {
			t.Errorf("sparse %q = %v, want null", key, val)
		}
	}
	if sparse["location_name"] != "Reykjavik" {
		t.Errorf("location_name = %v", sparse["location_name"])
	}
	if decoded[0]["recorded_at"] != "2024-01-15T08:00:00Z" {
		t.Errorf("recorded_at = %v, want RFC3339 UTC", decoded[0]["recorded_at"])
	}
}

func TestExportJSONEmptyResult(t *testing.T) {
	content, err := ExportJSON(nil)
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	if string(content) != "[]" {
		t.Errorf("empty export = %q, want []", content)
	}
}

func TestExportXMLStructureAndEscaping(t *testing.T) {
	rows := sampleRows()
	rows[0].LocationName = ptrStr(`A&B <"quoted">`)

	content, err := ExportXML(rows)
	if err != nil {
		t.Fatalf("ExportXML: %v", err)
	}
	out := string(content)

	if !strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Errorf("missing xml declaration: %.60s", out)
	}
	if strings.Count(out, "<record>") != 2 {
		t.Errorf("got %d record elements, want 2", strings.Count(out, "<record>"))
	}
	if !strings.Contains(out, "A&amp;B &lt;&#34;quoted&#34;&gt;") {
		t.Errorf("special characters not escaped: %s", out)
	}
	if !strings.Contains(out, "<temperature>4.5</temperature>") {
		t.Errorf("temperature element missing: %s", out)
	}
	// Absent values become empty elements, not omitted ones.
	if !strings.Contains(out, "<latitude></latitude>") {
		t.Errorf("empty latitude element missing for sparse row")
	}
}

func TestExportPDFProducesDocument(t *testing.T) {
	content, err := ExportPDF(sampleRows(), "Weather History Export")
	if err != nil {
		t.Fatalf("ExportPDF: %v", err)
	}
	if !bytes.HasPrefix(content, []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF: %.8q", content)
	}
	if len(content) < 500 {
		t.Errorf("suspiciously small pdf: %d bytes", len(content))
	}
}

func TestCapRows(t *testing.T) {
	rows := make([]models.WeatherHistory, PDFMaxRows+1)

	capped, truncated := capRows(rows[:PDFMaxRows], PDFMaxRows)
	if truncated || len(capped) != PDFMaxRows {
		t.Errorf("at-limit slice should not truncate: len=%d truncated=%v", len(capped), truncated)
	}

	capped, truncated = capRows(rows, PDFMaxRows)
	if !truncated || len(capped) != PDFMaxRows {
		t.Errorf("over-limit slice should truncate to %d: len=%d truncated=%v", PDFMaxRows, len(capped), truncated)
	}
}
