// Package storage appends accepted visit records to date-organized JSONL
// files. This is a local audit trail, not the knowledge base itself; the
// structured stores live behind the ingestion host.
package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgnsrekt/trail_agent/internal/types"
	"gopkg.in/natefinch/lumberjack.v2"
)

// VisitWriter handles async writing of visit records. Writes are queued on a
// buffered channel and flushed by a single goroutine; a full buffer drops the
// record rather than blocking the event path.
type VisitWriter struct {
	baseDir   string
	maxSizeMB int

	writeCh chan types.VisitPayload
	done    chan struct{}
	wg      sync.WaitGroup

	mu          sync.Mutex
	currentDate string
	logger      *lumberjack.Logger
}

// NewVisitWriter creates a writer rooted at baseDir and starts its write loop.
func NewVisitWriter(baseDir string, bufferSize, maxSizeMB int) *VisitWriter {
	w := &VisitWriter{
		baseDir:   baseDir,
		maxSizeMB: maxSizeMB,
		writeCh:   make(chan types.VisitPayload, bufferSize),
		done:      make(chan struct{}),
	}

	w.wg.Add(1)
	go w.writeLoop()

	return w
}

// Write queues a visit for async writing.
func (w *VisitWriter) Write(visit types.VisitPayload) error {
	select {
	case w.writeCh <- visit:
		return nil
	case <-w.done:
		return fmt.Errorf("visit writer is closed")
	default:
		slog.Warn("visit log buffer full, dropping record", "url", visit.URL)
		return fmt.Errorf("buffer full")
	}
}

// Close shuts down the writer and flushes pending records.
func (w *VisitWriter) Close() error {
	close(w.done)

	timeout := time.After(5 * time.Second)
	for {
		select {
		case visit := <-w.writeCh:
			w.writeRecord(visit)
		case <-timeout:
			slog.Warn("visit writer close timeout, some records may be lost")
			goto done
		default:
			goto done
		}
	}

done:
	w.wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.logger != nil {
		return w.logger.Close()
	}
	return nil
}

func (w *VisitWriter) writeLoop() {
	defer w.wg.Done()

	for {
		select {
		case visit := <-w.writeCh:
			w.writeRecord(visit)
		case <-w.done:
			return
		}
	}
}

func (w *VisitWriter) writeRecord(visit types.VisitPayload) {
	data, err := json.Marshal(visit)
	if err != nil {
		slog.Error("failed to marshal visit", "error", err, "url", visit.URL)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	currentDate := time.Now().UTC().Format("2006-01-02")
	if currentDate != w.currentDate || w.logger == nil {
		w.rotateForDate(currentDate)
	}
	if w.logger == nil {
		return
	}

	if _, err := w.logger.Write(append(data, '\n')); err != nil {
		slog.Error("failed to write visit", "error", err)
	}
}

func (w *VisitWriter) rotateForDate(date string) {
	if w.logger != nil {
		if err := w.logger.Close(); err != nil {
			slog.Debug("visit log close on rotate failed", "error", err)
		}
	}

	dir := filepath.Join(w.baseDir, date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Error("failed to create visit log directory", "error", err, "dir", dir)
		w.logger = nil
		return
	}

	w.logger = &lumberjack.Logger{
		Filename: filepath.Join(dir, "visits.jsonl"),
		MaxSize:  w.maxSizeMB,
	}
	w.currentDate = date
}
