package exports

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/xuri/excelize/v2"

	"garagedesk/models"
	"garagedesk/reconcile"
)

func rowSheetHeaders(kind models.RowKind) []string {
	if kind == models.KindWorkDetail {
		return []string{"ID", "Description", "Assignee", "Time In", "Time Out", "Status", "Progress", "Remark", "Origin"}
	}
	return []string{"ID", "Part Number", "Quantity", "Unit Price", "Status", "Remark", "Origin"}
}

func rowSheetData(kind models.RowKind, rows []reconcile.MergedRow) [][]string {
	data := make([][]string, 0, len(rows))
	for _, mr := range rows {
		origin := "confirmed"
		if mr.Origin == reconcile.OriginLocal {
			origin = "draft"
		}
		row := mr.Row
		if kind == models.KindWorkDetail {
			progress := ""
			if row.HasProgress() {
				progress = strconv.Itoa(*row.Progress)
			}
			data = append(data, []string{
				strconv.FormatInt(row.ID, 10), row.Description, row.Assignee,
				row.TimeIn, row.TimeOut, row.Status, progress, row.Remark, origin,
			})
			continue
		}
		data = append(data, []string{
			strconv.FormatInt(row.ID, 10), row.PartNumber,
			strconv.FormatInt(row.Quantity, 10), fmt.Sprintf("%.2f", row.UnitPrice),
			row.Status, row.Remark, origin,
		})
	}
	return data
}

// writeExcel streams a one-sheet workbook with a bold header row.
func writeExcel(w http.ResponseWriter, filename, sheetName string, headers []string, data [][]string) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		http.Error(w, "failed to create sheet", http.StatusInternalServerError)
		return
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		http.Error(w, "failed to create header style", http.StatusInternalServerError)
		return
	}

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", string(rune('A'+i)))
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, row := range data {
		for colIdx, value := range row {
			cell := fmt.Sprintf("%s%d", string(rune('A'+colIdx)), rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range headers {
		col := string(rune('A' + i))
		f.SetColWidth(sheetName, col, col, 16)
	}

	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	if err := f.Write(w); err != nil {
		http.Error(w, "failed to write workbook", http.StatusInternalServerError)
		return
	}
}
