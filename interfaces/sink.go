package interfaces

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"
)

var (
	// ErrSinkUnavailable is returned when a record sink is not accessible.
	// This could be due to network issues, authentication failures, or
	// service outages.
	ErrSinkUnavailable = errors.New("record sink unavailable")

	// ErrInvalidSinkLocation is returned when a sink location URI is
	// malformed or names an unsupported scheme.
	ErrInvalidSinkLocation = errors.New("invalid sink location URI")
)

// SinkLocation represents a URI identifying a record sink backend.
type SinkLocation struct {
	Raw    string     // Original URI
	Scheme string     // Protocol
	Host   string     // Hostname
	Path   string     // Resource path
	Query  url.Values // Query parameters
	Auth   string     // Authentication info
}

// NewSinkLocation parses and validates a sink location URI.
// Supported schemes: file://, sqlite://, s3://, ipfs://
func NewSinkLocation(uri string) (SinkLocation, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return SinkLocation{}, fmt.Errorf("%w: %v", ErrInvalidSinkLocation, err)
	}

	switch parsed.Scheme {
	case "file", "sqlite", "s3", "ipfs":
	default:
		return SinkLocation{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidSinkLocation, parsed.Scheme)
	}

	var auth string
	if parsed.User != nil {
		auth = parsed.User.String()
	}

	return SinkLocation{
		Raw:    uri,
		Scheme: parsed.Scheme,
		Host:   parsed.Host,
		Path:   parsed.Path,
		Query:  parsed.Query(),
		Auth:   auth,
	}, nil
}

// String returns the original URI string.
func (loc SinkLocation) String() string { return loc.Raw }

// GetParam returns a query parameter value.
func (loc SinkLocation) GetParam(name string) string { return loc.Query.Get(name) }

// RecordSink receives decoded records, append-only. The column order for
// tabular sinks is fixed: receivedAt, clientId, timestamp, meta, answers,
// sequence, pointer, smartScore, confidenceScore, testPing-marker.
//
// Ordering across requests is not required to be linearizable; each append is
// an independent operation.
type RecordSink interface {
	// AppendRecord appends a successfully decoded record.
	AppendRecord(ctx context.Context, rec PlaintextRecord, receivedAt time.Time) error

	// AppendFailure appends an error record carrying only a timestamp and a
	// message, keeping operational failures visible without blocking the
	// response path.
	AppendFailure(ctx context.Context, receivedAt time.Time, message string) error

	// Available checks if the sink is accessible.
	Available(ctx context.Context) bool

	// Name returns an identifier for logging.
	Name() string

	// LocationURI returns the URI identifying this sink.
	LocationURI() string
}

// SinkFactory creates record sinks from location URIs.
type SinkFactory interface {
	// SinkFor creates a sink from a URI.
	SinkFor(location SinkLocation) (RecordSink, error)

	// CreateMultiSink creates a fan-out sink appending to every backend.
	CreateMultiSink(locations []SinkLocation) (RecordSink, error)
}
