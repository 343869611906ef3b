package nativemsg

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// DefaultPort is used when no port file exists yet.
const DefaultPort = 5000

type portRecord struct {
	Port int `json:"port"`
}

// DefaultPortFile returns the shared port-file path under the user's home
// directory. The bridge reads it; the tracker writes it after binding.
func DefaultPortFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Warn("home directory lookup failed, using cwd port file", "error", err)
		return ".trail_agent/port.json"
	}
	return filepath.Join(home, ".trail_agent", "port.json")
}

// ReadPort reads the ingestion port from path, falling back to DefaultPort on
// any failure. Discovery must never block message forwarding.
func ReadPort(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("port file read failed", "path", path, "error", err)
		}
		return DefaultPort
	}

	var rec portRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		slog.Warn("port file malformed", "path", path, "error", err)
		return DefaultPort
	}
	if rec.Port <= 0 || rec.Port > 65535 {
		return DefaultPort
	}
	return rec.Port
}

// WritePort records port at path, creating the parent directory as needed.
func WritePort(path string, port int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("port file: mkdir: %w", err)
	}
	data, err := json.Marshal(portRecord{Port: port})
	if err != nil {
		return fmt.Errorf("port file: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("port file: write: %w", err)
	}
	return nil
}
