package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/brightwood-school/bwps-api/api/swagger"
	"github.com/brightwood-school/bwps-api/internal/handler"
	"github.com/brightwood-school/bwps-api/internal/repository"
	"github.com/brightwood-school/bwps-api/internal/router"
	"github.com/brightwood-school/bwps-api/internal/service"
	"github.com/brightwood-school/bwps-api/pkg/cache"
	"github.com/brightwood-school/bwps-api/pkg/config"
	"github.com/brightwood-school/bwps-api/pkg/database"
	"github.com/brightwood-school/bwps-api/pkg/logger"
	"github.com/brightwood-school/bwps-api/pkg/session"
	"github.com/brightwood-school/bwps-api/pkg/storage"
)

// @title Brightwood School API
// @version 1.0.0
// @description Backend for the Brightwood School website: admissions, notices, inquiries and the admin back office.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	codec := session.NewCodec(cfg.Session.Secret, cfg.Session.TTL, cfg.Session.Issuer)
	validate := service.NewValidator()
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, true)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	adminRepo := repository.NewAdminRepository(db)
	admissionRepo := repository.NewAdmissionRepository(db)
	noticeRepo := repository.NewNoticeRepository(db)
	inquiryRepo := repository.NewInquiryRepository(db)

	authSvc := service.NewAuthService(adminRepo, codec, validate, logr)
	adminSvc := service.NewAdminService(adminRepo, validate, logr)
	admissionSvc := service.NewAdmissionService(admissionRepo, cacheSvc, validate, logr,
		cfg.Admissions.NumberPrefix, cfg.Admissions.NumberRetries)
	noticeSvc := service.NewNoticeService(noticeRepo, validate, logr)
	inquirySvc := service.NewInquiryService(inquiryRepo, validate, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var exportHandler *handler.ExportHandler
	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportJobRepo := repository.NewExportJobRepository(db)
		exportSvc := service.NewExportService(exportJobRepo, admissionRepo, store, signer, validate, logr,
			service.ExportServiceConfig{
				Workers:      cfg.Exports.WorkerConcurrency,
				Retries:      cfg.Exports.WorkerRetries,
				ResultTTL:    cfg.Exports.SignedURLTTL,
				DownloadPath: cfg.APIPrefix + "/exports/download",
			})
		exportSvc.Start(ctx)
		defer exportSvc.Stop()
		go exportSvc.RunCleanupLoop(ctx, cfg.Exports.CleanupInterval)
		exportHandler = handler.NewExportHandler(exportSvc)
	}

	secureCookie := cfg.Env == config.EnvProduction
	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc, cfg.Session.CookieName, int(cfg.Session.TTL.Seconds()), secureCookie),
		Admins:     handler.NewAdminHandler(adminSvc),
		Admissions: handler.NewAdmissionHandler(admissionSvc),
		Notices:    handler.NewNoticeHandler(noticeSvc),
		Inquiries:  handler.NewInquiryHandler(inquirySvc),
		Exports:    exportHandler,
		Metrics:    handler.NewMetricsHandler(metricsSvc),
	}

	engine := router.New(cfg, logr, codec, metricsSvc, handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
