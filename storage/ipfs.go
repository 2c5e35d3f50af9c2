package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	shell "github.com/ipfs/go-ipfs-api"

	"github.com/surveyintake/envelope-ingest-backend/interfaces"
)

// IPFSSink implements an archival record sink writing each appended record as
// a JSON object to an IPFS node. Every append produces a new content
// identifier which is logged; retrieval is by CID.
type IPFSSink struct {
	shell       *shell.Shell
	host        string
	port        string
	log         *slog.Logger
	locationURI string
}

// NewIPFSSink creates an IPFS record sink connected to the node at host:port.
func NewIPFSSink(host, port string, log *slog.Logger) (*IPFSSink, error) {
	apiURL := fmt.Sprintf("%s:%s", host, port)

	return &IPFSSink{
		shell:       shell.NewShell(apiURL),
		host:        host,
		port:        port,
		log:         log,
		locationURI: fmt.Sprintf("ipfs://%s/", apiURL),
	}, nil
}

// AppendRecord adds the record row as a JSON object to IPFS.
func (s *IPFSSink) AppendRecord(ctx context.Context, rec interfaces.PlaintextRecord, receivedAt time.Time) error {
	row := newRecordRow(rec, receivedAt)
	return s.addJSON("record", row)
}

// AppendFailure adds an error record as a JSON object to IPFS.
func (s *IPFSSink) AppendFailure(ctx context.Context, receivedAt time.Time, message string) error {
	return s.addJSON("failure", map[string]string{
		"receivedAt": receivedAt.UTC().Format(time.RFC3339Nano),
		"error":      message,
	})
}

func (s *IPFSSink) addJSON(kind string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", kind, err)
	}

	if !s.shell.IsUp() {
		s.log.Warn("IPFS node unavailable",
			slog.String("host", s.host),
			slog.String("port", s.port))
		return interfaces.ErrSinkUnavailable
	}

	cid, err := s.shell.Add(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrSinkUnavailable, err)
	}

	s.log.Debug("Stored object in IPFS sink",
		slog.String("kind", kind),
		slog.String("cid", cid),
		slog.Int("size", len(data)))
	return nil
}

// Available checks the IPFS node responds.
func (s *IPFSSink) Available(ctx context.Context) bool {
	return s.shell.IsUp()
}

// Name returns a unique identifier for this sink.
func (s *IPFSSink) Name() string {
	return fmt.Sprintf("ipfs-%s-%s", s.host, s.port)
}

// LocationURI returns the URI that identifies this sink.
func (s *IPFSSink) LocationURI() string {
	return s.locationURI
}
