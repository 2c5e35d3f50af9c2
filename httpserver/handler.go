package httpserver

import (
	"crypto/rsa"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/surveyintake/envelope-ingest-backend/envelope"
	"github.com/surveyintake/envelope-ingest-backend/interfaces"
	"github.com/surveyintake/envelope-ingest-backend/metrics"
)

// maxBodySize is the maximum allowed request body size (1MB). Envelopes are
// small; anything larger is rejected before JSON decoding.
const maxBodySize = 1024 * 1024

// Handler processes envelope ingest requests. It runs the decryption
// validation pipeline on submitted envelopes, appends the recovered records to
// the configured sink, and serves the wrapping public key to clients.
type Handler struct {
	pipeline     *envelope.Pipeline
	privateKey   *rsa.PrivateKey
	publicKeyPEM string
	sink         interfaces.RecordSink
	log          *slog.Logger
}

// NewHandler creates an envelope handler. privateKey may be nil when the
// service is deployed without key material; every envelope then fails with a
// configuration error rather than at startup.
func NewHandler(pipeline *envelope.Pipeline, privateKey *rsa.PrivateKey, publicKeyPEM string, sink interfaces.RecordSink, log *slog.Logger) *Handler {
	return &Handler{
		pipeline:     pipeline,
		privateKey:   privateKey,
		publicKeyPEM: publicKeyPEM,
		sink:         sink,
		log:          log,
	}
}

// HandleEnvelope processes a submitted envelope: decode the JSON body, run
// the pipeline, and append the record. Client-attributable failures map to
// 400, everything else to 500. A failed request is also appended to the sink
// as an error record, best effort.
func (h *Handler) HandleEnvelope(w http.ResponseWriter, r *http.Request) {
	receivedAt := time.Now()
	start := receivedAt

	var env envelope.Envelope
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(&env); err != nil {
		h.rejectEnvelope(w, r, receivedAt, &envelope.InputError{Reason: "request body is not valid JSON"})
		return
	}

	rec, err := h.pipeline.Process(env, h.privateKey)
	metrics.ObserveProcessDuration(time.Since(start))
	if err != nil {
		h.rejectEnvelope(w, r, receivedAt, err)
		return
	}

	if err := h.sink.AppendRecord(r.Context(), rec, receivedAt); err != nil {
		h.log.Error("Failed to append record to sink",
			slog.String("sink", h.sink.Name()),
			slog.String("clientID", rec.ClientID),
			"err", err)
		metrics.RecordRejected("sink")
		h.writeJSONError(w, http.StatusInternalServerError, "failed to store record")
		return
	}

	metrics.RecordAccepted()
	h.log.Info("Envelope accepted",
		slog.String("clientID", rec.ClientID),
		slog.Bool("testPing", rec.TestPing),
		slog.Duration("duration", time.Since(start)))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// rejectEnvelope maps a pipeline error to its response status, records the
// rejection, and appends an error record to the sink. Sink failures never
// mask the original error in the response.
func (h *Handler) rejectEnvelope(w http.ResponseWriter, r *http.Request, receivedAt time.Time, err error) {
	status := envelope.HTTPStatus(err)
	kind := envelope.Kind(err)
	metrics.RecordRejected(kind)

	logLevel := h.log.Warn
	if status >= http.StatusInternalServerError {
		logLevel = h.log.Error
	}
	logLevel("Envelope rejected",
		slog.String("kind", kind),
		slog.Int("status", status),
		"err", err)

	if sinkErr := h.sink.AppendFailure(r.Context(), receivedAt, err.Error()); sinkErr != nil {
		h.log.Error("Failed to append error record to sink",
			slog.String("sink", h.sink.Name()),
			"err", sinkErr)
	}

	h.writeJSONError(w, status, err.Error())
}

// HandlePublicKey serves the wrapping public key in PEM form so clients can
// encrypt envelopes without out-of-band key distribution.
func (h *Handler) HandlePublicKey(w http.ResponseWriter, r *http.Request) {
	if h.publicKeyPEM == "" {
		h.log.Error("Public key requested but not configured")
		h.writeJSONError(w, http.StatusInternalServerError, "public key is not configured")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"publicKey": h.publicKeyPEM})
}

func (h *Handler) writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
