package http

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"garagedesk/frontend/exports"
	"garagedesk/frontend/settings"
	"garagedesk/frontend/spares"
	"garagedesk/infrastructure/audit"
	"garagedesk/infrastructure/backend"
	"garagedesk/infrastructure/push"
	"garagedesk/infrastructure/sqlite"
	"garagedesk/worksession"
)

//go:embed assets/*
var assets embed.FS

var ShutdownTimeout = 2 * time.Second

// Server bundles dependencies and route wiring.
type Server struct {
	Addr   string
	ln     net.Listener
	server *http.Server
	router *chi.Mux

	DB         *sqlite.DB
	API        *backend.Client
	WorkOrders *worksession.Manager
	Requests   *worksession.Manager
	Changes    *worksession.Manager
	Hub        *push.Hub
	Audit      *audit.Service
	Defaults   settings.DeskSettings
}

// NewServer creates a new http server.
func NewServer(addr string, db *sqlite.DB, api *backend.Client, workOrders, requests, changes *worksession.Manager, hub *push.Hub, auditSvc *audit.Service, defaults settings.DeskSettings) *Server {
	s := &Server{
		Addr:       addr,
		router:     chi.NewRouter(),
		DB:         db,
		API:        api,
		WorkOrders: workOrders,
		Requests:   requests,
		Changes:    changes,
		Hub:        hub,
		Audit:      auditSvc,
		Defaults:   defaults,
		server: &http.Server{
			MaxHeaderBytes: 1 << 20,
		},
	}

	// Secure headers first.
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-XSS-Protection", "1; mode=block")
			next.ServeHTTP(w, r)
		})
	})

	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Compress(5))
	s.router.Use(s.CSRFMiddleware)

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/desk/jobcards", http.StatusSeeOther)
	})

	s.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if hub != nil {
		s.router.Get("/ws", hub.ServeWS)
	}

	// Serve assets from embedded FS.
	var assetsFS fs.FS = assets
	if sub, err := fs.Sub(assets, "assets"); err == nil {
		assetsFS = sub
	} else {
		slog.Error("assets subfs init failed; serving fallback fs", slog.Any("err", err))
	}
	s.router.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(assetsFS))))

	s.router.Route("/desk", func(r chi.Router) {
		s.RegisterJobCardRoutes(r)
		s.RegisterWorkOrderRoutes(r)
		s.RegisterSpareRoutes(r)
		s.RegisterCatalogRoutes(r)
		s.RegisterExportRoutes(r)
		s.RegisterSettingsRoutes(r)
	})

	s.server.Handler = s.router
	return s
}

func (s *Server) spareScreens() *spares.Screens {
	return &spares.Screens{
		Requests: s.Requests,
		Changes:  s.Changes,
		API:      s.API,
		DB:       s.DB,
	}
}

func (s *Server) exportDeps() *exports.Deps {
	return &exports.Deps{
		API:        s.API,
		WorkOrders: s.WorkOrders,
		Requests:   s.Requests,
		Changes:    s.Changes,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	var err error
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	go s.server.Serve(s.ln)
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if s.ln == nil {
		return fmt.Errorf("HTTP server has not been started or is already stopped")
	}
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %v", err)
	}
	s.ln = nil
	return nil
}
