package exports

import (
	"bytes"
	"testing"
	"time"

	"garagedesk/models"
	"garagedesk/worksession"
)

func TestRenderJobCardPDF_GeneratesPDF(t *testing.T) {
	t.Parallel()

	pdf, err := renderJobCardPDF(
		models.JobCard{
			JobCardNo:      "JC-1001",
			PlateNumber:    "AA-12345",
			CustomerName:   "T. Bekele",
			RepairCategory: "Engine",
		},
		worksession.Summary{ParentStatus: models.StatusStarted, AverageProgress: 47, Total: 3},
		time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("renderJobCardPDF returned error: %v", err)
	}
	if len(pdf) == 0 {
		t.Fatalf("expected non-empty pdf bytes")
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output is not a pdf, starts with %q", pdf[:4])
	}
}

func TestRenderJobCardPDF_RequiresPlate(t *testing.T) {
	t.Parallel()

	if _, err := renderJobCardPDF(models.JobCard{JobCardNo: "JC-1"}, worksession.Summary{}, time.Now()); err == nil {
		t.Fatal("expected error for missing plate number")
	}
}
