package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgnsrekt/trail_agent/internal/bridge"
	"gopkg.in/natefinch/lumberjack.v2"
)

// The bridge speaks the native-messaging protocol on stdio, so logs go to a
// rotating file only; a single stray byte on stdout corrupts the framing.
func main() {
	setupLogger()

	host := bridge.NewHost(os.Getenv("BRIDGE_PORT_FILE"), nil)
	if err := host.Serve(os.Stdin, os.Stdout); err != nil {
		slog.Error("bridge exited with error", "error", err)
		os.Exit(1)
	}
}

func setupLogger() {
	logFile := os.Getenv("BRIDGE_LOG_FILE")
	if logFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		logFile = filepath.Join(home, ".trail_agent", "bridge.log")
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		// Fall back to stderr-only logging.
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
		return
	}

	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     14,
		Compress:   true,
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{Level: slog.LevelDebug})))
}
