package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openvarco/varco/internal/auth"
	"github.com/openvarco/varco/internal/config"
	"github.com/openvarco/varco/internal/db"
	"github.com/openvarco/varco/internal/httpapi"
	"github.com/openvarco/varco/internal/varco/service"
	"github.com/openvarco/varco/internal/varco/store/sqlite"

	_ "modernc.org/sqlite"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "varco-server ", log.LstdFlags|log.LUTC)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB
	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		logger.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	if cfg.Env == "dev" {
		if err := db.SeedDev(ctx, conn, db.SeedDevOptions{Zones: cfg.Zones}); err != nil {
			logger.Printf("seed dev data: %v", err)
		}
	}

	writer := db.NewWorker(conn)
	defer writer.Close()

	// Stores
	recordStore := sqlite.NewAccessRecordStore(conn, writer)
	scannerStore := sqlite.NewScannerStore(conn, writer)

	// Services
	gen := service.NewCodeGenerator(recordStore, cfg.CodeLength, cfg.CodeMaxAttempts)
	accessSvc := service.NewAccessService(recordStore, gen, cfg.Zones)
	validationSvc := service.NewValidationService(recordStore)
	scannerSvc := service.NewScannerService(
		scannerStore,
		time.Duration(cfg.ScannerOnlineWindowSeconds)*time.Second,
	)

	// Operator auth
	authMgr, err := buildAuth(cfg)
	if err != nil {
		logger.Fatalf("operator auth: %v", err)
	}

	// Expiry reaper
	reaper := service.NewExpiryReaper(recordStore, service.ReaperConfig{
		IntervalSeconds: cfg.ReaperIntervalSeconds,
	}, logger)
	reaper.Start(ctx)
	defer reaper.Stop()

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:            logger,
		Addr:              cfg.HTTPAddr,
		AccessService:     accessSvc,
		ValidationService: validationSvc,
		ScannerService:    scannerSvc,
		Auth:              authMgr,
	})

	go func() {
		logger.Printf("listening on %s (zones=%v)", cfg.HTTPAddr, cfg.Zones)
		if err := srv.Start(); err != nil {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// buildAuth wires the operator credential. Production deployments set
// VARCO_ADMIN_PASSWORD_HASH; dev can supply a plain VARCO_ADMIN_PASSWORD
// that gets hashed at startup.
func buildAuth(cfg config.Config) (*auth.Manager, error) {
	ttl := time.Duration(cfg.SessionTTLMinutes) * time.Minute

	if cfg.AdminPasswordHash != "" {
		return auth.NewManager(cfg.AdminUser, []byte(cfg.AdminPasswordHash), ttl), nil
	}

	password := cfg.AdminPassword
	if password == "" {
		password = "admin123" // dev default, matches the seeded operator docs
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return auth.NewManager(cfg.AdminUser, hash, ttl), nil
}
