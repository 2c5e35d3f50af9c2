package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSQLiteSinkAppendRecord(t *testing.T) {
	sink, err := NewSQLiteSink(filepath.Join(t.TempDir(), "records.db"), "", testLogger())
	require.NoError(t, err)
	defer sink.Close()

	receivedAt := time.Date(2026, 8, 25, 10, 0, 1, 0, time.UTC)
	require.NoError(t, sink.AppendRecord(context.Background(), testRecord(), receivedAt))

	var clientID, timestamp string
	var meta, answers []byte
	var pointer float64
	row := sink.db.QueryRow(`SELECT client_id, timestamp, meta, answers, pointer FROM records`)
	require.NoError(t, row.Scan(&clientID, &timestamp, &meta, &answers, &pointer))
	require.Equal(t, "client-1", clientID)
	require.Equal(t, "2026-08-25T10:00:00Z", timestamp)
	require.JSONEq(t, `{"lang":"en"}`, string(meta))
	require.JSONEq(t, `{"q1":"yes"}`, string(answers))
	require.Equal(t, float64(3), pointer)
}

func TestSQLiteSinkSealedColumns(t *testing.T) {
	sink, err := NewSQLiteSink(filepath.Join(t.TempDir(), "records.db"), "master-key", testLogger())
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.AppendRecord(context.Background(), testRecord(), time.Now()))

	var meta []byte
	require.NoError(t, sink.db.QueryRow(`SELECT meta FROM records`).Scan(&meta))

	// Stored bytes must not be the plaintext JSON.
	require.NotEqual(t, `{"lang":"en"}`, string(meta))

	opened, err := sink.open(meta)
	require.NoError(t, err)
	require.JSONEq(t, `{"lang":"en"}`, string(opened))
}

func TestSQLiteSinkSealWrongKey(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "records.db")
	sink, err := NewSQLiteSink(dbPath, "key-one", testLogger())
	require.NoError(t, err)
	sealed, err := sink.seal([]byte(`{"a":1}`))
	require.NoError(t, err)
	sink.Close()

	other, err := NewSQLiteSink(dbPath, "key-two", testLogger())
	require.NoError(t, err)
	defer other.Close()

	_, err = other.open(sealed)
	require.Error(t, err)
}

func TestSQLiteSinkAppendFailure(t *testing.T) {
	sink, err := NewSQLiteSink(filepath.Join(t.TempDir(), "records.db"), "", testLogger())
	require.NoError(t, err)
	defer sink.Close()

	receivedAt := time.Date(2026, 8, 25, 11, 0, 0, 0, time.UTC)
	require.NoError(t, sink.AppendFailure(context.Background(), receivedAt, "bad envelope"))

	var stored, message string
	require.NoError(t, sink.db.QueryRow(`SELECT received_at, error FROM failures`).Scan(&stored, &message))
	require.Equal(t, "2026-08-25T11:00:00Z", stored)
	require.Equal(t, "bad envelope", message)
}

func TestSQLiteSinkAvailable(t *testing.T) {
	sink, err := NewSQLiteSink(filepath.Join(t.TempDir(), "records.db"), "", testLogger())
	require.NoError(t, err)
	require.True(t, sink.Available(context.Background()))

	sink.Close()
	require.False(t, sink.Available(context.Background()))
}
