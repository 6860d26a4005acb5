package vitals

import (
	"github.com/crimson-sun/vitals/internal/model"
)

// Record kinds.
const (
	KindSummary        = model.KindSummary
	KindException      = model.KindException
	KindExceptionGroup = model.KindExceptionGroup
	KindTimeline       = model.KindTimeline
)

// Record is one telemetry row. Which fields matter depends on Kind;
// summary counters are pointers because a backend null must stay
// distinguishable from zero.
type Record struct {
	Kind string

	// Summary counters.
	TotalRequests      *int64
	FailedRequests     *int64
	TotalExceptions    *int64
	TotalDependencies  *int64
	FailedDependencies *int64
	AvgResponseTime    *float64
	P95ResponseTime    *float64
	SuccessRate        *float64

	// Exception group fields.
	Type          string
	ProblemID     string
	Operation     string
	Count         *int64
	SampleMessage string

	// Timeline fields.
	Timestamp string // RFC 3339
}

// Business carries the optional business counters. A nil field means the
// source was unavailable; the report prints N/A for it.
type Business struct {
	Offers     *int64
	Heartbeats *int64
	Upsells    *int64
}

func toModelRecords(records []Record) []model.Record {
	out := make([]model.Record, len(records))
	for i, r := range records {
		out[i] = model.Record{
			DataType:           r.Kind,
			TotalRequests:      r.TotalRequests,
			FailedRequests:     r.FailedRequests,
			TotalExceptions:    r.TotalExceptions,
			TotalDependencies:  r.TotalDependencies,
			FailedDependencies: r.FailedDependencies,
			AvgResponseTime:    r.AvgResponseTime,
			P95ResponseTime:    r.P95ResponseTime,
			SuccessRate:        r.SuccessRate,
			Type:               r.Type,
			ProblemID:          r.ProblemID,
			Operation:          r.Operation,
			Count:              r.Count,
			SampleMessage:      r.SampleMessage,
			Timestamp:          r.Timestamp,
		}
	}
	return out
}

func toModelBusiness(b Business) model.BusinessMetrics {
	var m model.BusinessMetrics
	if b.Offers != nil {
		m.Offers = model.Count(*b.Offers)
	}
	if b.Heartbeats != nil {
		m.Heartbeats = model.Count(*b.Heartbeats)
	}
	if b.Upsells != nil {
		m.Upsells = model.Count(*b.Upsells)
	}
	return m
}
