package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"garagedesk/frontend/settings"
	"garagedesk/infrastructure/audit"
	"garagedesk/infrastructure/backend"
	"garagedesk/infrastructure/config"
	"garagedesk/infrastructure/credential"
	"garagedesk/infrastructure/draft"
	httpserver "garagedesk/infrastructure/http"
	"garagedesk/infrastructure/push"
	"garagedesk/infrastructure/rowcache"
	"garagedesk/infrastructure/sqlite"
	"garagedesk/models"
	"garagedesk/worksession"
)

func main() {
	cfg, err := config.Load(getenv("GARAGEDESK_CONFIG", "garagedesk.yml"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg.ListenAddr = getenv("APP_ADDR", cfg.ListenAddr)
	cfg.SQLitePath = getenv("SQLITE_PATH", cfg.SQLitePath)
	cfg.BackendBaseURL = getenv("BACKEND_URL", cfg.BackendBaseURL)
	cfg.CredentialPath = getenv("CREDENTIAL_PATH", cfg.CredentialPath)

	passphrase := os.Getenv("GARAGEDESK_PASSPHRASE")
	if passphrase == "" {
		log.Fatalf("GARAGEDESK_PASSPHRASE is required to unlock the backend token")
	}
	token, err := credential.LoadFile(cfg.CredentialPath, passphrase)
	if err != nil {
		log.Fatalf("unlock credential %s: %v (run seedtoken first)", cfg.CredentialPath, err)
	}

	db, err := sqlite.OpenDB(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := sqlite.ApplyMigrations(context.Background(), db); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	defaults := settings.DeskSettings{
		WorkOrderPollSeconds: cfg.WorkOrderPollSeconds,
		SparePollSeconds:     cfg.SparePollSeconds,
		PushEnabled:          true,
	}
	desk, err := settings.Load(context.Background(), db, defaults)
	if err != nil {
		slog.Warn("load desk settings failed, using defaults", slog.Any("err", err))
		desk = defaults
	}

	api := backend.New(cfg.BackendBaseURL, token, cfg.RequestTimeout())
	auditSvc := audit.NewService(db)
	drafts := draft.NewStore(db)

	hub := push.NewHub()
	var notify func(jobKey, kind string)
	if desk.PushEnabled {
		notify = hub.RowsChanged
	}

	workOrders := worksession.NewManager(models.KindWorkDetail, worksession.WorkOrderBackend{Client: api}, rowcache.New(), drafts, auditSvc, notify)
	requests := worksession.NewManager(models.KindSpareRequest, worksession.SpareBackend{Client: api}, rowcache.New(), drafts, auditSvc, notify)
	changes := worksession.NewManager(models.KindSpareChange, worksession.SpareBackend{Client: api}, rowcache.New(), drafts, auditSvc, notify)

	pollCtx, stopPolling := context.WithCancel(context.Background())
	defer stopPolling()
	go workOrders.Run(pollCtx, rowcache.IntervalDriver{Every: time.Duration(desk.WorkOrderPollSeconds) * time.Second})
	go requests.Run(pollCtx, rowcache.IntervalDriver{Every: time.Duration(desk.SparePollSeconds) * time.Second})
	go changes.Run(pollCtx, rowcache.IntervalDriver{Every: time.Duration(desk.SparePollSeconds) * time.Second})

	server := httpserver.NewServer(cfg.ListenAddr, db, api, workOrders, requests, changes, hub, auditSvc, defaults)
	if err := server.Start(); err != nil {
		log.Fatalf("start server: %v", err)
	}
	log.Printf("garagedesk listening on %s", cfg.ListenAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	stopPolling()
	if err := server.Stop(); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
