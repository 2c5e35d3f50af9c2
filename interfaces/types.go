package interfaces

import (
	"encoding/json"
)

// PlaintextRecord is the structured survey record recovered by the decryption
// pipeline. Every field is optional on the wire: a well-formed JSON object is
// never rejected for missing fields, and absent fields forward to the sink as
// their blank equivalents (empty string, empty JSON text, zero, false).
type PlaintextRecord struct {
	// ClientID identifies the submitting client session.
	ClientID string `json:"clientId"`

	// Timestamp is the client-reported submission time, passed through verbatim.
	Timestamp string `json:"timestamp"`

	// Meta carries free-form client metadata.
	Meta map[string]any `json:"meta"`

	// Answers maps question identifiers to answer values.
	Answers map[string]any `json:"answers"`

	// Sequence is the client's navigation history; either a JSON object or
	// array, kept raw since both shapes appear in the wild.
	Sequence json.RawMessage `json:"sequence"`

	// Pointer is the client's current position in the survey.
	Pointer float64 `json:"pointer"`

	// SmartScore and ConfidenceScore are client-computed scores.
	SmartScore      float64 `json:"smartScore"`
	ConfidenceScore float64 `json:"confidenceScore"`

	// TestPing marks connectivity-test submissions that carry no answers.
	TestPing bool `json:"testPing"`
}

// MetaJSON renders the meta field as compact JSON text, blank when absent.
func (r PlaintextRecord) MetaJSON() string {
	return objectJSON(r.Meta)
}

// AnswersJSON renders the answers field as compact JSON text, blank when absent.
func (r PlaintextRecord) AnswersJSON() string {
	return objectJSON(r.Answers)
}

// SequenceJSON renders the sequence field as JSON text, blank when absent.
func (r PlaintextRecord) SequenceJSON() string {
	if len(r.Sequence) == 0 || string(r.Sequence) == "null" {
		return ""
	}
	return string(r.Sequence)
}

// TestPingMarker is the sink column value marking test submissions.
// Regular records forward a blank marker.
func (r PlaintextRecord) TestPingMarker() string {
	if r.TestPing {
		return "ping"
	}
	return ""
}

func objectJSON(m map[string]any) string {
	if m == nil {
		return ""
	}
	text, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(text)
}
