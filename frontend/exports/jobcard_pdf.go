package exports

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/jung-kurt/gofpdf"

	"garagedesk/models"
	"garagedesk/worksession"
)

// renderJobCardPDF lays out a printable job card sheet: customer and vehicle
// details, the current aggregates, and the plate number as a Code128 barcode
// the workshop scanners read at the gate.
func renderJobCardPDF(card models.JobCard, summary worksession.Summary, printedAt time.Time) ([]byte, error) {
	plate := strings.TrimSpace(card.PlateNumber)
	if plate == "" {
		return nil, fmt.Errorf("job card %s has no plate number", card.JobCardNo)
	}

	barcodePNG, err := renderCode128PNG(plate, 1200, 260)
	if err != nil {
		return nil, fmt.Errorf("render plate barcode: %w", err)
	}

	customer := strings.TrimSpace(card.CustomerName)
	if customer == "" {
		customer = "Unknown Customer"
	}
	category := strings.TrimSpace(card.RepairCategory)
	if category == "" {
		category = "General Repair"
	}

	pdf := gofpdf.New("L", "mm", "A5", "")
	pdf.SetTitle("Job Card "+card.JobCardNo, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 30)
	pdf.CellFormat(0, 14, "JOB CARD "+card.JobCardNo, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, "Customer: "+customer, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 7, "Category: "+category, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Status: %s    Progress: %d%%    Rows: %d",
		summary.ParentStatus, summary.AverageProgress, summary.Total), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 7, "Printed: "+printedAt.Format("02/01/2006"), "", 1, "C", false, 0, "")

	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	imageName := "plate-barcode-" + card.JobCardNo
	pdf.RegisterImageOptionsReader(imageName, opt, bytes.NewReader(barcodePNG))
	pageW, _ := pdf.GetPageSize()
	imgW := 140.0
	imgH := 32.0
	x := (pageW - imgW) / 2
	y := 70.0
	pdf.ImageOptions(imageName, x, y, imgW, imgH, false, opt, 0, "")

	pdf.SetY(y + imgH + 4)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, plate, "", 1, "C", false, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func renderCode128PNG(value string, width, height int) ([]byte, error) {
	code, err := code128.Encode(value)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, err
	}
	normalized := toNRGBA(scaled)
	var barcodePNG bytes.Buffer
	if err := png.Encode(&barcodePNG, normalized); err != nil {
		return nil, err
	}
	return barcodePNG.Bytes(), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return dst
}
