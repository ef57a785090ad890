package http

import (
	"github.com/go-chi/chi/v5"

	"garagedesk/frontend/catalog"
	"garagedesk/frontend/help"
	"garagedesk/frontend/jobcards"
	settingspage "garagedesk/frontend/settings"
	"garagedesk/frontend/workorders"
)

// RegisterJobCardRoutes registers the job card list and help screens.
func (s *Server) RegisterJobCardRoutes(r chi.Router) {
	r.Get("/jobcards", jobcards.ListPageQueryHandler(s.API, s.WorkOrders))
	r.Get("/help", help.HelpPageQueryHandler())
}

// RegisterWorkOrderRoutes registers the work detail screen for a job card.
func (s *Server) RegisterWorkOrderRoutes(r chi.Router) {
	r.Route("/workorders/{jobCardNo}", func(r chi.Router) {
		r.Get("/", workorders.PageQueryHandler(s.WorkOrders, s.API))
		r.Post("/rows", workorders.AddRowCommandHandler(s.WorkOrders, s.API))
		r.Post("/rows/{id}", workorders.SaveDraftCommandHandler(s.WorkOrders, s.API))
		r.Post("/rows/{id}/delete", workorders.RemoveDraftCommandHandler(s.WorkOrders, s.API))
		r.Post("/submit", workorders.SubmitCommandHandler(s.WorkOrders, s.API))
		r.Post("/confirmed/{id}/edit", workorders.EditConfirmedCommandHandler(s.WorkOrders, s.API))
		r.Post("/confirmed/{id}", workorders.UpdateConfirmedCommandHandler(s.WorkOrders, s.API))
		r.Post("/confirmed/{id}/delete", workorders.DeleteConfirmedCommandHandler(s.WorkOrders, s.API))
	})
}

// RegisterSpareRoutes registers the spare request and spare change screens.
// kind is either requests or changes.
func (s *Server) RegisterSpareRoutes(r chi.Router) {
	sc := s.spareScreens()
	r.Route("/spares/{kind}/{jobCardNo}", func(r chi.Router) {
		r.Get("/", sc.PageQueryHandler())
		r.Post("/rows", sc.AddRowCommandHandler())
		r.Post("/rows/{id}", sc.SaveDraftCommandHandler())
		r.Post("/rows/{id}/delete", sc.RemoveDraftCommandHandler())
		r.Post("/submit", sc.SubmitCommandHandler())
		r.Post("/confirmed/{id}/edit", sc.EditConfirmedCommandHandler())
		r.Post("/confirmed/{id}", sc.UpdateConfirmedCommandHandler())
		r.Post("/confirmed/{id}/delete", sc.DeleteConfirmedCommandHandler())
	})
}

// RegisterCatalogRoutes registers the spare part catalog import screen.
func (s *Server) RegisterCatalogRoutes(r chi.Router) {
	r.Get("/catalog", catalog.ImportPageQueryHandler(s.DB))
	r.Post("/catalog/import", catalog.ImportCommandHandler(s.DB, s.Audit))
	r.Post("/catalog/delete/{id}", catalog.DeletePartCommandHandler(s.DB, s.Audit))
}

// RegisterExportRoutes registers the export index, row workbooks and card labels.
func (s *Server) RegisterExportRoutes(r chi.Router) {
	d := s.exportDeps()
	r.Get("/exports", d.PageQueryHandler())
	r.Get("/exports/rows/{kind}/{jobCardNo}.xlsx", d.RowsExportHandler())
	r.Get("/exports/jobcard/{jobCardNo}.pdf", d.JobCardPDFHandler())
}

// RegisterSettingsRoutes registers the desk settings screen.
func (s *Server) RegisterSettingsRoutes(r chi.Router) {
	r.Get("/settings", settingspage.PageQueryHandler(s.DB, s.Defaults))
	r.Post("/settings", settingspage.UpdateCommandHandler(s.DB, s.Defaults))
}
