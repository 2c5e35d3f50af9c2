package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/surveyintake/envelope-ingest-backend/interfaces"
)

// FileSink implements a record sink appending CSV rows to files in a local
// directory: records.csv for decoded records and failures.csv for error
// records.
type FileSink struct {
	baseDir     string
	log         *slog.Logger
	locationURI string

	// Serializes appends so concurrent requests never interleave rows.
	mu sync.Mutex
}

// NewFileSink creates a file sink rooted at baseDir, creating the directory
// if needed.
func NewFileSink(baseDir string, log *slog.Logger) (*FileSink, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sink directory: %w", err)
	}

	return &FileSink{
		baseDir:     baseDir,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", baseDir),
	}, nil
}

// AppendRecord appends a decoded record as one CSV row in the fixed column
// order.
func (s *FileSink) AppendRecord(ctx context.Context, rec interfaces.PlaintextRecord, receivedAt time.Time) error {
	row := newRecordRow(rec, receivedAt)
	if err := s.appendRow("records.csv", row.columns()); err != nil {
		return err
	}

	s.log.Debug("Appended record to file sink",
		slog.String("clientID", rec.ClientID),
		slog.String("receivedAt", row.ReceivedAt))
	return nil
}

// AppendFailure appends an error record carrying only the timestamp and the
// error message.
func (s *FileSink) AppendFailure(ctx context.Context, receivedAt time.Time, message string) error {
	return s.appendRow("failures.csv", []string{receivedAt.UTC().Format(time.RFC3339Nano), message})
}

func (s *FileSink) appendRow(filename string, columns []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.baseDir, filename)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush row: %w", err)
	}
	return nil
}

// Available checks the sink directory still exists.
func (s *FileSink) Available(ctx context.Context) bool {
	_, err := os.Stat(s.baseDir)
	if err != nil {
		s.log.Debug("File sink unavailable", "err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this sink.
func (s *FileSink) Name() string {
	return fmt.Sprintf("file-%s", filepath.Base(s.baseDir))
}

// LocationURI returns the URI that identifies this sink.
func (s *FileSink) LocationURI() string {
	return s.locationURI
}
