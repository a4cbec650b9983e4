// CLAUDE:SUMMARY Entry point for the docsmith conversion service — chi router, SQLite observability, optional MCP stdio.
package main

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/pressops/docsmith/dbopen"
	"github.com/pressops/docsmith/mcpquic"
	"github.com/pressops/docsmith/observability"
	"github.com/pressops/docsmith/service"
	"github.com/pressops/docsmith/shield"
)

func main() {
	configPath := env("CONFIG", "docsmith.yaml")
	mcpTransport := env("MCP_TRANSPORT", "")
	logLevel := env("LOG_LEVEL", "info")

	// Logging.
	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	cfg, err := service.LoadConfigFile(configPath)
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	if listen := os.Getenv("LISTEN"); listen != "" {
		cfg.Listen = listen
	}

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Observability DB.
	obsDB, err := dbopen.Open(cfg.ObservabilityDB, dbopen.WithMkdirAll())
	if err != nil {
		slog.Error("observability db", "error", err)
		os.Exit(1)
	}
	defer obsDB.Close()
	if err := observability.Init(obsDB); err != nil {
		slog.Error("observability init", "error", err)
		os.Exit(1)
	}
	if err := shield.Init(obsDB); err != nil {
		slog.Error("shield init", "error", err)
		os.Exit(1)
	}

	events := observability.NewEventLogger(obsDB)
	metrics := observability.NewMetricsManager(obsDB, 100, 5*time.Second)
	defer metrics.Close()

	// Runtime health samples every minute, retention cleanup daily.
	go func() {
		runtimeTicker := time.NewTicker(time.Minute)
		cleanupTicker := time.NewTicker(24 * time.Hour)
		defer runtimeTicker.Stop()
		defer cleanupTicker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-runtimeTicker.C:
				metrics.RecordRuntime()
			case <-cleanupTicker.C:
				if err := observability.Cleanup(ctx, obsDB, observability.RetentionConfig{
					HTTPLogsDays: 30,
					EventsDays:   90,
					MetricsDays:  30,
				}); err != nil {
					slog.Warn("retention cleanup", "error", err)
				}
			}
		}
	}()

	// Conversion service.
	svc := service.New(cfg, logger,
		service.WithEvents(events),
		service.WithMetrics(metrics),
	)

	// Optional MCP QUIC, served alongside HTTP.
	if mcpTransport == "quic" {
		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "docsmith",
			Version: "1.0.0",
		}, nil)
		svc.RegisterMCP(mcpSrv)

		quicAddr := env("MCP_QUIC_ADDR", ":9444")
		certFile := env("TLS_CERT", "")
		keyFile := env("TLS_KEY", "")

		var tlsCfg *tls.Config
		if certFile != "" && keyFile != "" {
			tlsCfg, err = mcpquic.ServerTLSConfig(certFile, keyFile)
		} else {
			tlsCfg, err = mcpquic.SelfSignedTLSConfig()
		}
		if err != nil {
			slog.Error("MCP QUIC TLS", "error", err)
		} else {
			ql, qErr := mcpquic.NewListener(quicAddr, tlsCfg, mcpSrv, logger)
			if qErr != nil {
				slog.Error("MCP QUIC listener", "error", qErr)
			} else {
				go func() {
					slog.Info("MCP QUIC starting", "addr", quicAddr)
					if sErr := ql.Serve(ctx); sErr != nil && ctx.Err() == nil {
						slog.Error("MCP QUIC", "error", sErr)
					}
				}()
			}
		}
	}

	// Optional MCP stdio. Runs instead of HTTP: stdout belongs to the
	// protocol, so logs move to stderr.
	if mcpTransport == "stdio" {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
		slog.SetDefault(logger)

		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "docsmith",
			Version: "1.0.0",
		}, nil)
		svc.RegisterMCP(mcpSrv)

		slog.Info("MCP stdio starting")
		if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			slog.Error("MCP stdio", "error", err)
			os.Exit(1)
		}
		return
	}

	// Router.
	rl := shield.NewRateLimiter(obsDB)
	rl.StartReloader(ctx.Done())

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	for _, mw := range shield.DefaultStack(rl) {
		r.Use(mw)
	}
	r.Use(observability.RequestLogger(obsDB))
	svc.Register(r)

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      5 * time.Minute, // conversions stream large files
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
