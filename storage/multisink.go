package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/surveyintake/envelope-ingest-backend/interfaces"
)

// MultiSink fans appends out to multiple underlying sinks. An append succeeds
// when at least one backend accepted the row; per-backend failures are logged
// and do not block the others.
type MultiSink struct {
	sinks []interfaces.RecordSink
	log   *slog.Logger
}

// NewMultiSink creates a fan-out sink over the given backends.
func NewMultiSink(sinks []interfaces.RecordSink, log *slog.Logger) (*MultiSink, error) {
	if len(sinks) == 0 {
		return nil, fmt.Errorf("%w: no sinks provided", interfaces.ErrInvalidSinkLocation)
	}
	return &MultiSink{sinks: sinks, log: log}, nil
}

// AppendRecord appends the record to every available backend.
func (m *MultiSink) AppendRecord(ctx context.Context, rec interfaces.PlaintextRecord, receivedAt time.Time) error {
	return m.fanOut(ctx, "record", func(s interfaces.RecordSink) error {
		return s.AppendRecord(ctx, rec, receivedAt)
	})
}

// AppendFailure appends the error record to every available backend.
func (m *MultiSink) AppendFailure(ctx context.Context, receivedAt time.Time, message string) error {
	return m.fanOut(ctx, "failure", func(s interfaces.RecordSink) error {
		return s.AppendFailure(ctx, receivedAt, message)
	})
}

func (m *MultiSink) fanOut(ctx context.Context, kind string, appendTo func(interfaces.RecordSink) error) error {
	var succeeded int
	for _, s := range m.sinks {
		if !s.Available(ctx) {
			m.log.Warn("Skipping unavailable sink",
				slog.String("sink", s.Name()),
				slog.String("kind", kind))
			continue
		}

		if err := appendTo(s); err != nil {
			m.log.Error("Failed to append to sink",
				slog.String("sink", s.Name()),
				slog.String("kind", kind),
				"err", err)
			continue
		}
		succeeded++
	}

	if succeeded == 0 {
		return fmt.Errorf("%w: all %d sinks failed", interfaces.ErrSinkUnavailable, len(m.sinks))
	}
	return nil
}

// Available reports whether at least one backend is accessible.
func (m *MultiSink) Available(ctx context.Context) bool {
	for _, s := range m.sinks {
		if s.Available(ctx) {
			return true
		}
	}
	return false
}

// Name returns a unique identifier for this sink.
func (m *MultiSink) Name() string {
	return "multi-sink"
}

// LocationURI returns the combined URIs of all backends.
func (m *MultiSink) LocationURI() string {
	uris := make([]string, 0, len(m.sinks))
	for _, s := range m.sinks {
		uris = append(uris, s.LocationURI())
	}
	return strings.Join(uris, ",")
}
