package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pdfadapter "credstamp/internal/adapter/driven/pdf"
	sqliteadapter "credstamp/internal/adapter/driven/sqlite"
	httphandler "credstamp/internal/adapter/driving/http"
	webhandler "credstamp/internal/adapter/driving/web"
	"credstamp/internal/application"
	"credstamp/internal/config"
	"credstamp/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"max_upload_mb", cfg.MaxUploadMB,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the history database unless disabled, and run migrations.
	var runStore driven.RunStore
	if cfg.DBPath != "" {
		db, err := sqliteadapter.NewDB(cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()

		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			return err
		}
		slog.Info("database ready", "path", cfg.DBPath)

		runStore = sqliteadapter.NewRunRepo(db)
	} else {
		slog.Info("run history disabled")
	}

	// 4. Wire the PDF editor adapter and the generation service.
	editor := pdfadapter.NewEditor()
	genSvc := application.NewGenerateService(editor, runStore, slog.Default())

	// 5. Register API and GUI routes, then apply middleware.
	mux := http.NewServeMux()

	apiHandler := httphandler.NewHandler(genSvc, runStore, cfg.MaxUploadBytes(), cfg.HistoryLimit, slog.Default())
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	webHandler := webhandler.NewHandler(genSvc, runStore, cfg.MaxUploadBytes(), cfg.HistoryLimit, slog.Default())
	webhandler.RegisterRoutes(mux, webHandler)

	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("credstamp started", "listen_addr", cfg.ListenAddr)

	// 6. Wait for shutdown signal, then drain.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
