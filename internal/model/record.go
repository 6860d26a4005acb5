package model

// Record kinds, matching the DataType tag the telemetry backend attaches
// to every row of its union query.
const (
	KindSummary        = "Summary"
	KindException      = "Exception"
	KindExceptionGroup = "ExceptionGroup"
	KindTimeline       = "Timeline"
)

// Record is one row of the telemetry response — the intermediate type
// produced by connectors and consumed by the aggregator. Which fields are
// populated depends on DataType; everything else stays at its zero value.
// Summary counters are pointers because the backend emits null for columns
// it could not compute, and null must stay distinguishable from zero.
type Record struct {
	DataType string `json:"DataType"`

	// Summary fields.
	TotalRequests      *int64   `json:"TotalRequests,omitempty"`
	FailedRequests     *int64   `json:"FailedRequests,omitempty"`
	TotalExceptions    *int64   `json:"TotalExceptions,omitempty"`
	TotalDependencies  *int64   `json:"TotalDependencies,omitempty"`
	FailedDependencies *int64   `json:"FailedDependencies,omitempty"`
	AvgResponseTime    *float64 `json:"AvgResponseTime,omitempty"`
	P95ResponseTime    *float64 `json:"P95ResponseTime,omitempty"`
	SuccessRate        *float64 `json:"SuccessRate,omitempty"`

	// Exception detail and group fields. Column names follow the backend's
	// casing exactly so rows zip into Records without a translation table.
	Timestamp     string `json:"timestamp,omitempty"` // RFC 3339
	Type          string `json:"type,omitempty"`
	OuterMessage  string `json:"outerMessage,omitempty"`
	ProblemID     string `json:"problemId,omitempty"`
	Operation     string `json:"operation_Name,omitempty"`
	Role          string `json:"cloud_RoleName,omitempty"`
	SeverityLevel *int   `json:"severityLevel,omitempty"`

	// Group and timeline fields.
	Count            *int64 `json:"Count,omitempty"`
	LatestOccurrence string `json:"LatestOccurrence,omitempty"`
	SampleMessage    string `json:"SampleMessage,omitempty"`
}
