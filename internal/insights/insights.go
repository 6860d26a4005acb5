// Package insights reduces raw telemetry records into the summary counters,
// ranked problems, and hourly timeline the report formatter consumes.
package insights

import (
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/crimson-sun/vitals/internal/model"
)

// maxDescription bounds the display length of a problem description.
const maxDescription = 80

// Summary carries the backend-computed aggregate counters verbatim.
// Available is false when the record set held no well-formed Summary row;
// counters are then meaningless and must render as unknown, not zero.
type Summary struct {
	TotalRequests      int64
	FailedRequests     int64
	TotalExceptions    int64
	TotalDependencies  int64
	FailedDependencies int64
	AvgResponseTime    float64
	P95ResponseTime    float64
	SuccessRate        float64
	Available          bool
}

// Problem is one top-occurring failure group selected for display.
type Problem struct {
	Rank        int
	Count       int64
	ProblemID   string
	Type        string
	Operation   string
	Description string
}

// Bucket is one hour of the exception timeline.
type Bucket struct {
	Hour  time.Time
	Count int64
}

// Aggregate is the reduced form of one telemetry fetch.
type Aggregate struct {
	Summary  Summary
	Problems []Problem
	Timeline []Bucket
	Degraded bool
}

// Build reduces records into an Aggregate, keeping at most topN problems.
// Backend-computed totals and percentiles pass through untouched; groups
// are re-ranked only to guard against an unsorted response, with ties
// keeping backend order.
func Build(records []model.Record, topN int) Aggregate {
	if topN <= 0 {
		topN = 5
	}

	agg := Aggregate{
		Summary:  buildSummary(records),
		Problems: buildProblems(records, topN),
		Timeline: buildTimeline(records),
	}
	agg.Degraded = !agg.Summary.Available
	return agg
}

// buildSummary finds the first Summary record and passes its counters
// through. A record missing any core counter counts as malformed and the
// whole summary degrades to unavailable.
func buildSummary(records []model.Record) Summary {
	for _, rec := range records {
		if rec.DataType != model.KindSummary {
			continue
		}
		if rec.TotalExceptions == nil || rec.TotalRequests == nil ||
			rec.TotalDependencies == nil || rec.FailedDependencies == nil ||
			rec.P95ResponseTime == nil {
			return Summary{}
		}
		s := Summary{
			TotalRequests:      *rec.TotalRequests,
			TotalExceptions:    *rec.TotalExceptions,
			TotalDependencies:  *rec.TotalDependencies,
			FailedDependencies: *rec.FailedDependencies,
			P95ResponseTime:    *rec.P95ResponseTime,
			Available:          true,
		}
		if rec.FailedRequests != nil {
			s.FailedRequests = *rec.FailedRequests
		}
		if rec.AvgResponseTime != nil {
			s.AvgResponseTime = *rec.AvgResponseTime
		}
		if rec.SuccessRate != nil {
			s.SuccessRate = *rec.SuccessRate
		}
		return s
	}
	return Summary{}
}

func buildProblems(records []model.Record, topN int) []Problem {
	var problems []Problem
	for _, rec := range records {
		if rec.DataType != model.KindExceptionGroup {
			continue
		}
		var count int64
		if rec.Count != nil {
			count = *rec.Count
		}
		problems = append(problems, Problem{
			Count:       count,
			ProblemID:   rec.ProblemID,
			Type:        rec.Type,
			Operation:   rec.Operation,
			Description: Describe(rec.SampleMessage),
		})
	}

	sort.SliceStable(problems, func(i, j int) bool {
		return problems[i].Count > problems[j].Count
	})
	if len(problems) > topN {
		problems = problems[:topN]
	}
	for i := range problems {
		problems[i].Rank = i + 1
	}
	return problems
}

func buildTimeline(records []model.Record) []Bucket {
	var buckets []Bucket
	for _, rec := range records {
		if rec.DataType != model.KindTimeline {
			continue
		}
		ts, err := time.Parse(time.RFC3339, rec.Timestamp)
		if err != nil {
			continue
		}
		var count int64
		if rec.Count != nil {
			count = *rec.Count
		}
		buckets = append(buckets, Bucket{Hour: ts, Count: count})
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Hour.Before(buckets[j].Hour)
	})
	return buckets
}

// Describe derives a short display description from a group's sample
// message: control characters stripped, bounded length, and the
// exception-class prefix before " - " or ": " dropped.
func Describe(msg string) string {
	msg = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, msg)
	msg = strings.TrimSpace(msg)

	if utf8.RuneCountInString(msg) > maxDescription {
		runes := []rune(msg)
		msg = string(runes[:maxDescription-3]) + "..."
	}

	if i := strings.Index(msg, " - "); i >= 0 {
		msg = msg[i+3:]
	} else if i := strings.Index(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}

	if msg == "" {
		return "(no sample message)"
	}
	return msg
}
