package storage

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
	_ "modernc.org/sqlite"

	"github.com/surveyintake/envelope-ingest-backend/interfaces"
)

// SQLiteSink implements a record sink appending rows to a local SQLite
// database: a records table for decoded records and a failures table for
// error records.
//
// When a master key is configured, the meta, answers, and sequence columns
// are sealed at rest with XChaCha20-Poly1305 under a key derived from it;
// the remaining columns stay queryable in the clear.
type SQLiteSink struct {
	db          *sql.DB
	masterKey   []byte
	log         *slog.Logger
	locationURI string
}

// NewSQLiteSink opens (or creates) the database at dbPath and ensures the
// schema exists. A non-empty masterKey enables at-rest sealing of the JSON
// payload columns.
func NewSQLiteSink(dbPath, masterKey string, log *slog.Logger) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteSink{
		db:          db,
		log:         log,
		locationURI: fmt.Sprintf("sqlite://%s", dbPath),
	}
	if masterKey != "" {
		derived := sha256.Sum256([]byte(masterKey))
		s.masterKey = derived[:]
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteSink) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		received_at TEXT NOT NULL,
		client_id TEXT NOT NULL DEFAULT '',
		timestamp TEXT NOT NULL DEFAULT '',
		meta BLOB,
		answers BLOB,
		sequence BLOB,
		pointer REAL NOT NULL DEFAULT 0,
		smart_score REAL NOT NULL DEFAULT 0,
		confidence_score REAL NOT NULL DEFAULT 0,
		test_ping TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS failures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		received_at TEXT NOT NULL,
		error TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_records_received ON records(received_at);
	CREATE INDEX IF NOT EXISTS idx_records_client ON records(client_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// AppendRecord inserts a decoded record as one row in the fixed column order.
func (s *SQLiteSink) AppendRecord(ctx context.Context, rec interfaces.PlaintextRecord, receivedAt time.Time) error {
	row := newRecordRow(rec, receivedAt)

	meta, err := s.seal([]byte(row.Meta))
	if err != nil {
		return fmt.Errorf("failed to seal meta: %w", err)
	}
	answers, err := s.seal([]byte(row.Answers))
	if err != nil {
		return fmt.Errorf("failed to seal answers: %w", err)
	}
	sequence, err := s.seal([]byte(row.Sequence))
	if err != nil {
		return fmt.Errorf("failed to seal sequence: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (received_at, client_id, timestamp, meta, answers, sequence,
			pointer, smart_score, confidence_score, test_ping)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ReceivedAt, row.ClientID, row.Timestamp, meta, answers, sequence,
		row.Pointer, row.SmartScore, row.ConfidenceScore, row.TestPing,
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	s.log.Debug("Appended record to sqlite sink",
		slog.String("clientID", rec.ClientID),
		slog.String("receivedAt", row.ReceivedAt))
	return nil
}

// AppendFailure inserts an error record.
func (s *SQLiteSink) AppendFailure(ctx context.Context, receivedAt time.Time, message string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO failures (received_at, error) VALUES (?, ?)`,
		receivedAt.UTC().Format(time.RFC3339Nano), message,
	)
	if err != nil {
		return fmt.Errorf("failed to insert failure: %w", err)
	}
	return nil
}

// seal encrypts column data under the master key when sealing is enabled,
// prepending the random nonce. Without a master key the data passes through.
func (s *SQLiteSink) seal(data []byte) ([]byte, error) {
	if s.masterKey == nil {
		return data, nil
	}

	aead, err := chacha20poly1305.NewX(s.masterKey)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return append(nonce, aead.Seal(nil, nonce, data, nil)...), nil
}

// open decrypts a sealed column value. Used by operators exporting rows, and
// by tests.
func (s *SQLiteSink) open(sealed []byte) ([]byte, error) {
	if s.masterKey == nil {
		return sealed, nil
	}
	if len(sealed) < chacha20poly1305.NonceSizeX {
		return nil, errors.New("sealed value too short")
	}

	aead, err := chacha20poly1305.NewX(s.masterKey)
	if err != nil {
		return nil, err
	}

	nonce := sealed[:chacha20poly1305.NonceSizeX]
	return aead.Open(nil, nonce, sealed[chacha20poly1305.NonceSizeX:], nil)
}

// Available checks the database connection still works.
func (s *SQLiteSink) Available(ctx context.Context) bool {
	if err := s.db.PingContext(ctx); err != nil {
		s.log.Debug("SQLite sink unavailable", "err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this sink.
func (s *SQLiteSink) Name() string {
	return "sqlite"
}

// LocationURI returns the URI that identifies this sink.
func (s *SQLiteSink) LocationURI() string {
	return s.locationURI
}
