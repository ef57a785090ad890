// Package exports produces the desk's printable and spreadsheet outputs: the
// job card PDF with the plate barcode, and Excel/CSV dumps of a job's merged
// rows.
package exports

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"garagedesk/infrastructure/backend"
	"garagedesk/models"
	"garagedesk/worksession"
)

// Deps holds the session managers the export handlers read from.
type Deps struct {
	API        *backend.Client
	WorkOrders *worksession.Manager
	Requests   *worksession.Manager
	Changes    *worksession.Manager
}

func (d *Deps) manager(segment string) (*worksession.Manager, models.RowKind, bool) {
	switch segment {
	case "workorders":
		return d.WorkOrders, models.KindWorkDetail, true
	case "requests":
		return d.Requests, models.KindSpareRequest, true
	case "changes":
		return d.Changes, models.KindSpareChange, true
	default:
		return nil, "", false
	}
}

func (d *Deps) session(r *http.Request, mgr *worksession.Manager, jobCardNo string) *worksession.Session {
	if s, ok := mgr.Lookup(jobCardNo); ok {
		return s
	}
	card := models.JobCard{JobCardNo: jobCardNo}
	if cards, err := d.API.JobCards(r.Context()); err == nil {
		for _, c := range cards {
			if c.JobCardNo == jobCardNo {
				card = c
				break
			}
		}
	}
	s := mgr.Session(card)
	if err := s.RefreshRemote(r.Context()); err != nil {
		slog.Warn("export refresh failed, exporting cached rows",
			slog.String("job_card_no", jobCardNo), slog.Any("err", err))
	}
	return s
}

// PageQueryHandler renders the export picker: one line per job card with its
// download links.
func (d *Deps) PageQueryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flash := r.URL.Query().Get("status")
		cards, err := d.API.JobCards(r.Context())
		if err != nil {
			slog.Error("job card list failed", slog.Any("err", err))
			flash = "Backend unreachable; export links limited to open jobs"
			for _, s := range d.WorkOrders.Sessions() {
				cards = append(cards, s.Card())
			}
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := ExportsPage(cards, flash).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render exports page", http.StatusInternalServerError)
			return
		}
	}
}

// RowsExportHandler streams one job's merged rows as xlsx, or CSV with
// ?format=csv. Draft rows are included and marked by origin.
func (d *Deps) RowsExportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		segment := chi.URLParam(r, "kind")
		jobCardNo := chi.URLParam(r, "jobCardNo")
		mgr, kind, ok := d.manager(segment)
		if !ok || jobCardNo == "" {
			http.NotFound(w, r)
			return
		}

		s := d.session(r, mgr, jobCardNo)
		rows := s.Rows(r.Context())
		headers := rowSheetHeaders(kind)
		data := rowSheetData(kind, rows)
		base := segment + "-" + url.PathEscape(jobCardNo)

		if r.URL.Query().Get("format") == "csv" {
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", "attachment; filename="+base+".csv")
			writer := csv.NewWriter(w)
			defer writer.Flush()
			if err := writer.Write(headers); err != nil {
				return
			}
			for _, row := range data {
				if err := writer.Write(row); err != nil {
					return
				}
			}
			return
		}

		writeExcel(w, base+".xlsx", "Rows", headers, data)
	}
}

// JobCardPDFHandler streams the printable job card with the plate barcode.
func (d *Deps) JobCardPDFHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobCardNo := chi.URLParam(r, "jobCardNo")
		if jobCardNo == "" {
			http.NotFound(w, r)
			return
		}

		s := d.session(r, d.WorkOrders, jobCardNo)
		pdfBytes, err := renderJobCardPDF(s.Card(), s.Summarize(r.Context()), time.Now())
		if err != nil {
			slog.Error("job card pdf failed", slog.String("job_card_no", jobCardNo), slog.Any("err", err))
			http.Error(w, "failed to render job card pdf", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", "inline; filename=jobcard-"+url.PathEscape(jobCardNo)+".pdf")
		w.Header().Set("Content-Length", strconv.Itoa(len(pdfBytes)))
		_, _ = w.Write(pdfBytes)
	}
}
