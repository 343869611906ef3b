package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the navigation tracker.
type Config struct {
	// CDP connection settings
	CDPAddress string
	CDPPort    int

	// Local API settings
	APIBindAddr      string
	APIBindFallbacks []string
	APIAutoFallback  bool

	// Visit log settings
	DataDir            string
	VisitLogBufferSize int
	VisitLogMaxSizeMB  int

	// Ingestion host forwarding
	IngestBaseURL     string
	IngestEndpoint    string
	BridgeCommand     string
	PortFile          string
	TransportAttempts int
	TransportBackoff  time.Duration

	// Tracking behavior
	TabURLFilter       string
	TrackingParamsAdd  []string
	TrackingParamsKeep []string

	// Browser launch
	LaunchBrowser   bool
	BrowserStartURL string
	ProfileDir      string

	// Logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables and optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		CDPAddress:         getEnvOrDefault("CHROMIUM_CDP_ADDRESS", "127.0.0.1"),
		CDPPort:            getEnvIntOrDefault("CHROMIUM_CDP_PORT", 9222),
		APIBindAddr:        getEnvOrDefault("TRACKER_API_BIND_ADDR", "127.0.0.1:8931"),
		APIBindFallbacks:   getEnvListOrDefault("TRACKER_API_BIND_FALLBACKS", []string{"127.0.0.1:8932", "127.0.0.1:8933"}),
		APIAutoFallback:    getEnvBoolOrDefault("TRACKER_API_AUTO_FALLBACK", true),
		DataDir:            getEnvOrDefault("TRACKER_DATA_DIR", "./visit_data"),
		VisitLogBufferSize: getEnvIntOrDefault("TRACKER_VISIT_BUFFER_SIZE", 1000),
		VisitLogMaxSizeMB:  getEnvIntOrDefault("TRACKER_VISIT_MAX_FILE_SIZE_MB", 50),
		IngestBaseURL:      getEnvOrDefault("TRACKER_INGEST_BASE_URL", "http://localhost:5000"),
		IngestEndpoint:     getEnvOrDefault("TRACKER_INGEST_ENDPOINT", "/visit"),
		BridgeCommand:      getEnvOrDefault("TRACKER_BRIDGE_COMMAND", ""),
		PortFile:           getEnvOrDefault("TRACKER_PORT_FILE", ""),
		TransportAttempts:  getEnvIntOrDefault("TRACKER_TRANSPORT_ATTEMPTS", 3),
		TransportBackoff:   getEnvDurationOrDefault("TRACKER_TRANSPORT_BACKOFF", 2*time.Second),
		TabURLFilter:       getEnvOrDefault("TRACKER_TAB_URL_FILTER", ""),
		TrackingParamsAdd:  getEnvListOrDefault("TRACKER_PARAMS_ADD", nil),
		TrackingParamsKeep: getEnvListOrDefault("TRACKER_PARAMS_KEEP", nil),
		LaunchBrowser:      getEnvBoolOrDefault("TRACKER_LAUNCH_BROWSER", false),
		BrowserStartURL:    getEnvOrDefault("TRACKER_BROWSER_START_URL", "about:blank"),
		ProfileDir:         getEnvOrDefault("TRACKER_PROFILE_DIR", "./browser_profile"),
		LogLevel:           getEnvOrDefault("TRACKER_LOG_LEVEL", "info"),
		LogFile:            getEnvOrDefault("TRACKER_LOG_FILE", "logs/tracker.log"),
	}

	return cfg, nil
}

// GetCDPURL returns the full CDP HTTP endpoint used by chromedp remote allocator.
func (c *Config) GetCDPURL() string {
	return fmt.Sprintf("http://%s:%d", c.CDPAddress, c.CDPPort)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
