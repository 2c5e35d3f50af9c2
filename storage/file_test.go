package storage

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/surveyintake/envelope-ingest-backend/interfaces"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRecord() interfaces.PlaintextRecord {
	return interfaces.PlaintextRecord{
		ClientID:        "client-1",
		Timestamp:       "2026-08-25T10:00:00Z",
		Meta:            map[string]any{"lang": "en"},
		Answers:         map[string]any{"q1": "yes"},
		Pointer:         3,
		SmartScore:      0.5,
		ConfidenceScore: 0.9,
	}
}

func TestFileSinkAppendRecord(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir, testLogger())
	require.NoError(t, err)

	receivedAt := time.Date(2026, 8, 25, 10, 0, 1, 0, time.UTC)
	require.NoError(t, sink.AppendRecord(context.Background(), testRecord(), receivedAt))
	require.NoError(t, sink.AppendRecord(context.Background(), testRecord(), receivedAt.Add(time.Second)))

	f, err := os.Open(filepath.Join(dir, "records.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	row := rows[0]
	require.Len(t, row, 10)
	require.Equal(t, "2026-08-25T10:00:01Z", row[0])
	require.Equal(t, "client-1", row[1])
	require.Equal(t, "2026-08-25T10:00:00Z", row[2])
	require.JSONEq(t, `{"lang":"en"}`, row[3])
	require.JSONEq(t, `{"q1":"yes"}`, row[4])
	require.Equal(t, "", row[5])
	require.Equal(t, "3", row[6])
	require.Equal(t, "0.5", row[7])
	require.Equal(t, "0.9", row[8])
	require.Equal(t, "", row[9])
}

func TestFileSinkTestPingMarker(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir, testLogger())
	require.NoError(t, err)

	rec := testRecord()
	rec.TestPing = true
	require.NoError(t, sink.AppendRecord(context.Background(), rec, time.Now()))

	f, err := os.Open(filepath.Join(dir, "records.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Equal(t, "ping", rows[0][9])
}

func TestFileSinkAppendFailure(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir, testLogger())
	require.NoError(t, err)

	receivedAt := time.Date(2026, 8, 25, 11, 0, 0, 0, time.UTC)
	require.NoError(t, sink.AppendFailure(context.Background(), receivedAt, "decryption failed"))

	f, err := os.Open(filepath.Join(dir, "failures.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, []string{"2026-08-25T11:00:00Z", "decryption failed"}, rows[0])
}

func TestFileSinkAvailable(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir, testLogger())
	require.NoError(t, err)
	require.True(t, sink.Available(context.Background()))

	require.NoError(t, os.RemoveAll(dir))
	require.False(t, sink.Available(context.Background()))
}
