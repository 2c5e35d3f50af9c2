package storage

import (
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/surveyintake/envelope-ingest-backend/interfaces"
)

// Factory creates record sinks from location URIs.
type Factory struct {
	log *slog.Logger
}

// NewFactory creates a sink factory.
func NewFactory(log *slog.Logger) *Factory {
	return &Factory{log: log}
}

// SinkFor creates a record sink for the given location.
//
// Supported URI formats:
//   - file:///var/lib/ingest/records
//   - sqlite:///var/lib/ingest/records.db?key=master-key
//   - s3://access:secret@bucket/prefix?region=us-east-1&endpoint=http://minio:9000
//   - ipfs://127.0.0.1:5001/
func (f *Factory) SinkFor(location interfaces.SinkLocation) (interfaces.RecordSink, error) {
	switch location.Scheme {
	case "file":
		return NewFileSink(location.Host+location.Path, f.log)

	case "sqlite":
		dbPath := location.Host + location.Path
		if dbPath == "" {
			return nil, fmt.Errorf("%w: missing database path", interfaces.ErrInvalidSinkLocation)
		}
		return NewSQLiteSink(dbPath, location.GetParam("key"), f.log)

	case "s3":
		if location.Host == "" {
			return nil, fmt.Errorf("%w: missing bucket name", interfaces.ErrInvalidSinkLocation)
		}
		region := location.GetParam("region")
		if region == "" {
			region = "us-east-1"
		}
		var accessKey, secretKey string
		if location.Auth != "" {
			parts := strings.SplitN(location.Auth, ":", 2)
			accessKey = parts[0]
			if len(parts) == 2 {
				secretKey = parts[1]
			}
		}
		prefix := strings.TrimPrefix(location.Path, "/")
		return NewS3Sink(location.Host, prefix, region, location.GetParam("endpoint"), accessKey, secretKey, f.log)

	case "ipfs":
		host, port, err := net.SplitHostPort(location.Host)
		if err != nil {
			host = location.Host
			port = "5001"
		}
		return NewIPFSSink(host, port, f.log)

	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", interfaces.ErrInvalidSinkLocation, location.Scheme)
	}
}

// CreateMultiSink creates a fan-out sink over all given locations. A single
// location yields the underlying sink directly.
func (f *Factory) CreateMultiSink(locations []interfaces.SinkLocation) (interfaces.RecordSink, error) {
	if len(locations) == 0 {
		return nil, fmt.Errorf("%w: no sink locations provided", interfaces.ErrInvalidSinkLocation)
	}

	sinks := make([]interfaces.RecordSink, 0, len(locations))
	for _, loc := range locations {
		sink, err := f.SinkFor(loc)
		if err != nil {
			return nil, fmt.Errorf("failed to create sink for %s: %w", loc.String(), err)
		}
		sinks = append(sinks, sink)
	}

	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return NewMultiSink(sinks, f.log)
}
