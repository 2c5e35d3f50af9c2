package storage

import (
	"strconv"
	"time"

	"github.com/surveyintake/envelope-ingest-backend/interfaces"
)

// recordRow is the flattened sink representation of a decoded record. The
// field order matches the fixed column order every sink must preserve:
// receivedAt, clientId, timestamp, meta, answers, sequence, pointer,
// smartScore, confidenceScore, testPing-marker.
type recordRow struct {
	ReceivedAt      string  `json:"receivedAt"`
	ClientID        string  `json:"clientId"`
	Timestamp       string  `json:"timestamp"`
	Meta            string  `json:"meta"`
	Answers         string  `json:"answers"`
	Sequence        string  `json:"sequence"`
	Pointer         float64 `json:"pointer"`
	SmartScore      float64 `json:"smartScore"`
	ConfidenceScore float64 `json:"confidenceScore"`
	TestPing        string  `json:"testPing"`
}

func newRecordRow(rec interfaces.PlaintextRecord, receivedAt time.Time) recordRow {
	return recordRow{
		ReceivedAt:      receivedAt.UTC().Format(time.RFC3339Nano),
		ClientID:        rec.ClientID,
		Timestamp:       rec.Timestamp,
		Meta:            rec.MetaJSON(),
		Answers:         rec.AnswersJSON(),
		Sequence:        rec.SequenceJSON(),
		Pointer:         rec.Pointer,
		SmartScore:      rec.SmartScore,
		ConfidenceScore: rec.ConfidenceScore,
		TestPing:        rec.TestPingMarker(),
	}
}

// columns renders the row as strings in the fixed column order.
func (r recordRow) columns() []string {
	return []string{
		r.ReceivedAt,
		r.ClientID,
		r.Timestamp,
		r.Meta,
		r.Answers,
		r.Sequence,
		formatFloat(r.Pointer),
		formatFloat(r.SmartScore),
		formatFloat(r.ConfidenceScore),
		r.TestPing,
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
