package exports

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/xuri/excelize/v2"

	"garagedesk/models"
	"garagedesk/reconcile"
)

func progressPtr(v int) *int { return &v }

func TestRowSheetDataMarksOrigins(t *testing.T) {
	rows := []reconcile.MergedRow{
		{Row: models.WorkItemRow{ID: 1, Description: "oil change", Status: models.StatusCompleted, Progress: progressPtr(100)}, Origin: reconcile.OriginRemote},
		{Row: models.WorkItemRow{ID: 2, Description: "brakes", Status: models.StatusStarted}, Origin: reconcile.OriginLocal},
	}
	data := rowSheetData(models.KindWorkDetail, rows)
	if len(data) != 2 {
		t.Fatalf("rows = %d, want 2", len(data))
	}
	if data[0][8] != "confirmed" || data[1][8] != "draft" {
		t.Fatalf("origins = %q %q", data[0][8], data[1][8])
	}
	if data[0][6] != "100" || data[1][6] != "" {
		t.Fatalf("progress columns = %q %q", data[0][6], data[1][6])
	}
}

func TestWriteExcelRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	headers := rowSheetHeaders(models.KindSpareRequest)
	data := [][]string{{"3", "BRK-330", "2", "45.50", "pending", "", "draft"}}

	writeExcel(rec, "requests-JC-1001.xlsx", "Rows", headers, data)

	if ct := rec.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("content type = %q", ct)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("Rows", "B2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if got != "BRK-330" {
		t.Fatalf("B2 = %q, want BRK-330", got)
	}
	header, err := f.GetCellValue("Rows", "A1")
	if err != nil || header != "ID" {
		t.Fatalf("A1 = %q err %v", header, err)
	}
}
