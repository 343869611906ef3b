package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/dgnsrekt/trail_agent/internal/api"
	"github.com/dgnsrekt/trail_agent/internal/browser"
	"github.com/dgnsrekt/trail_agent/internal/cdp"
	"github.com/dgnsrekt/trail_agent/internal/config"
	"github.com/dgnsrekt/trail_agent/internal/events"
	"github.com/dgnsrekt/trail_agent/internal/nativemsg"
	"github.com/dgnsrekt/trail_agent/internal/netutil"
	"github.com/dgnsrekt/trail_agent/internal/router"
	"github.com/dgnsrekt/trail_agent/internal/storage"
	"github.com/dgnsrekt/trail_agent/internal/tabhistory"
	"github.com/dgnsrekt/trail_agent/internal/tracker"
	"github.com/dgnsrekt/trail_agent/internal/transport"
	"github.com/dgnsrekt/trail_agent/internal/urlnorm"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		_, _ = io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n")
		os.Exit(1)
	}

	slog.Info("tracker config loaded",
		"cdp_url", cfg.GetCDPURL(),
		"bind_addr", cfg.APIBindAddr,
		"data_dir", cfg.DataDir,
		"ingest_base_url", cfg.IngestBaseURL,
		"bridge_command", cfg.BridgeCommand,
		"tab_url_filter", cfg.TabURLFilter,
		"launch_browser", cfg.LaunchBrowser,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var launcher *browser.Launcher
	if cfg.LaunchBrowser {
		launcher = browser.NewLauncher(browser.Config{
			CDPAddress: cfg.CDPAddress,
			CDPPort:    cfg.CDPPort,
			StartURL:   cfg.BrowserStartURL,
			ProfileDir: cfg.ProfileDir,
		})
		if err := launcher.Launch(ctx); err != nil {
			slog.Error("browser launch failed", "error", err)
			os.Exit(1)
		}
		defer launcher.Stop()
	}

	norm := urlnorm.New(cfg.TrackingParamsAdd, cfg.TrackingParamsKeep)
	tabs := tabhistory.NewHolder()
	broker := events.NewBroker()

	writer := storage.NewVisitWriter(cfg.DataDir, cfg.VisitLogBufferSize, cfg.VisitLogMaxSizeMB)
	defer func() {
		if err := writer.Close(); err != nil {
			slog.Warn("visit log close failed", "error", err)
		}
	}()

	httpClient := transport.NewHTTPClient(cfg.IngestBaseURL, nil)
	var sender router.Sender
	transportState := func() string { return "http" }
	if cfg.BridgeCommand != "" {
		native := transport.NewNativeClient(
			transport.ExecDialer(cfg.BridgeCommand),
			cfg.TransportAttempts,
			cfg.TransportBackoff,
		)
		fallback := transport.NewFallbackSender(native, httpClient)
		defer func() { _ = fallback.Close() }()
		sender = fallback
		transportState = func() string { return native.State().String() }
	} else {
		sender = httpClient
	}

	rt := router.New(tabs, sender)
	svc := tracker.New(cfg, tabs, rt, broker, writer, sender)
	svc.SetTransportStateFunc(transportState)

	cdpClient := cdp.NewClient(cfg, norm, tabs, svc.OnVisit)
	if err := cdpClient.Connect(ctx); err != nil {
		slog.Error("failed to connect to browser", "cdp_url", cfg.GetCDPURL(), "error", err)
		slog.Info("Make sure Chromium is running with remote debugging enabled")
		os.Exit(1)
	}
	defer func() { _ = cdpClient.Close() }()
	svc.SetAttachedTabsFunc(cdpClient.GetTabCount)

	bindAddr, err := netutil.SelectBindAddr(cfg.APIBindAddr, cfg.APIBindFallbacks, cfg.APIAutoFallback)
	if err != nil {
		slog.Error("failed to select bind address", "preferred", cfg.APIBindAddr, "error", err)
		os.Exit(1)
	}

	if cfg.PortFile != "" {
		writePortFile(cfg.PortFile, bindAddr)
	}

	srv := &http.Server{Addr: bindAddr, Handler: api.NewServer(svc)}
	go func() {
		slog.Info("tracker listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("tracker server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutdown signal received")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("tracker shutdown failed", "error", err)
	}
	slog.Info("tracker stopped")
}

// writePortFile publishes the bound API port for bridge discovery.
func writePortFile(path, bindAddr string) {
	_, portStr, err := net.SplitHostPort(bindAddr)
	if err != nil {
		slog.Warn("bind address unparseable, skipping port file", "addr", bindAddr, "error", err)
		return
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		slog.Warn("bind port unparseable, skipping port file", "addr", bindAddr, "error", err)
		return
	}
	if err := nativemsg.WritePort(path, port); err != nil {
		slog.Warn("port file write failed", "path", path, "error", err)
		return
	}
	slog.Info("port file written", "path", path, "port", port)
}

func setupLogger(level, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
