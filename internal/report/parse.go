package report

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnparsable signals that no core metric field could be recovered from
// the text. The renderer falls back to plain-text passthrough; the report
// still reaches the channel.
var ErrUnparsable = errors.New("report: no recognizable metric fields")

// Value is one extracted numeric field. Text preserves the literal as it
// appeared ("2,500.5K"); Num is the scaled magnitude.
type Value struct {
	Num   float64
	Text  string
	Found bool
}

// MetricSet holds the core four-tuple from the metrics line (dependencies
// carry their failed count alongside).
type MetricSet struct {
	Exceptions         Value
	Requests           Value
	SuccessRate        Value
	Dependencies       Value
	FailedDependencies Value
	P95                Value
}

// found counts the recovered core metric fields. SuccessRate is a tolerated
// extension, not a core field.
func (m MetricSet) found() int {
	n := 0
	for _, v := range []Value{m.Exceptions, m.Requests, m.Dependencies, m.FailedDependencies, m.P95} {
		if v.Found {
			n++
		}
	}
	return n
}

// BusinessSet holds the optional business three-tuple.
type BusinessSet struct {
	Offers     Value
	Heartbeats Value
	Upsells    Value
}

// Found reports whether any business field was recovered.
func (b BusinessSet) Found() bool {
	return b.Offers.Found || b.Heartbeats.Found || b.Upsells.Found
}

// Problem is one ranked issue recovered from the problems block.
type Problem struct {
	Rank        int
	Count       int64
	Description string
}

// Report is the structured form recovered from canonical report text.
type Report struct {
	Status   string // health glyph from the first line
	Date     string // date text from the first line, "" if absent
	Metrics  MetricSet
	Business BusinessSet
	Problems []Problem
	Action   string
	Raw      string
}

// One pattern per field: failing to find one field never blocks the others,
// and each extractor stays independently testable.
const magnitude = `([0-9][0-9,]*(?:\.[0-9]+)?)\s*([KMB])?`

var (
	exceptionsPat = regexp.MustCompile(`(?i)` + magnitude + `\s*exceptions?\b`)
	requestsPat   = regexp.MustCompile(`(?i)` + magnitude + `\s*requests?\b`)
	successPat    = regexp.MustCompile(`(?i)([0-9][0-9,]*(?:\.[0-9]+)?)%\s*success`)
	depsPat       = regexp.MustCompile(`(?i)` + magnitude + `\s*dependencies\b`)
	failedDepsPat = regexp.MustCompile(`(?i)\(\s*` + magnitude + `\s*failed\s*\)`)
	p95Pat        = regexp.MustCompile(`(?i)p95:?\s*([0-9][0-9,]*(?:\.[0-9]+)?)\s*ms`)

	offersPat     = regexp.MustCompile(`(?i)` + magnitude + `\s*offers?\b`)
	heartbeatsPat = regexp.MustCompile(`(?i)` + magnitude + `\s*(?:player\s*)?heartbeats?\b`)
	upsellsPat    = regexp.MustCompile(`(?i)` + magnitude + `\s*upsells?\b`)

	// Problem lines in order of specificity: bold count with multiplier,
	// bold count with dash, bare count.
	problemPats = []*regexp.Regexp{
		regexp.MustCompile(`^(\d+)\.\s*\*\*` + magnitude + `×?\*\*\s*[-–]?\s*(.+)`),
		regexp.MustCompile(`^(\d+)\.\s*\*\*` + magnitude + `\*\*\s*[-–]\s*(.+)`),
		regexp.MustCompile(`^(\d+)\.\s*` + magnitude + `×?\s*[-–]?\s*(.+)`),
	}

	problemsHeaderWords = []string{"top issues", "top problems", "top 5", "problems:", "issues:"}

	actionPrefixPat = regexp.MustCompile(`(?i)\*\*Action Required:?\*\*|Action Required:?|🚨`)
	allClearPat     = regexp.MustCompile(`(?i)no major issues`)
	digitPat        = regexp.MustCompile(`\d`)
	datePat         = regexp.MustCompile(`\s[-–]\s(.+)$`)
)

// Parse extracts structured fields from report text with tolerant,
// per-field pattern matching. It returns ErrUnparsable only when zero core
// metric fields are recoverable; anything else yields a partial Report.
func Parse(text string) (*Report, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	rep := &Report{
		Status:   parseStatus(lines),
		Date:     parseDate(lines),
		Problems: parseProblems(lines),
		Action:   parseAction(lines),
		Raw:      text,
	}

	if line, ok := findMetricsLine(lines); ok {
		rep.Metrics = MetricSet{
			Exceptions:         extract(exceptionsPat, line),
			Requests:           extract(requestsPat, line),
			SuccessRate:        extract(successPat, line),
			Dependencies:       extract(depsPat, line),
			FailedDependencies: extract(failedDepsPat, line),
			P95:                extract(p95Pat, line),
		}
	}
	if line, ok := findBusinessLine(lines); ok {
		rep.Business = BusinessSet{
			Offers:     extract(offersPat, line),
			Heartbeats: extract(heartbeatsPat, line),
			Upsells:    extract(upsellsPat, line),
		}
	}

	if rep.Metrics.found() == 0 {
		return nil, ErrUnparsable
	}
	return rep, nil
}

// extract runs a single field pattern and scales the matched magnitude.
func extract(pat *regexp.Regexp, line string) Value {
	m := pat.FindStringSubmatch(line)
	if m == nil {
		return Value{}
	}
	literal := m[1]
	suffix := ""
	if len(m) > 2 {
		suffix = m[2]
	}
	return Value{
		Num:   scale(literal, suffix),
		Text:  literal + suffix,
		Found: true,
	}
}

// scale converts a thousands-separated literal plus an optional K/M/B
// suffix into its magnitude: "2,500.5" + "K" → 2500500.
func scale(literal, suffix string) float64 {
	n, err := strconv.ParseFloat(strings.ReplaceAll(literal, ",", ""), 64)
	if err != nil {
		return 0
	}
	switch strings.ToUpper(suffix) {
	case "K":
		n *= 1e3
	case "M":
		n *= 1e6
	case "B":
		n *= 1e9
	}
	return n
}

func parseStatus(lines []string) string {
	if len(lines) == 0 {
		return StatusWarning
	}
	first := lines[0]
	switch {
	case strings.Contains(first, StatusCritical):
		return StatusCritical
	case strings.Contains(first, StatusHealthy), strings.Contains(first, "🟢"):
		return StatusHealthy
	default:
		return StatusWarning
	}
}

func parseDate(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	if m := datePat.FindStringSubmatch(lines[0]); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// findMetricsLine locates the core metrics line: the first line mentioning
// a metric unit with at least one digit, skipping the business line.
func findMetricsLine(lines []string) (string, bool) {
	for _, line := range lines {
		if isBusinessLine(line) {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "exception") || strings.Contains(lower, "request") ||
			strings.Contains(lower, "dependencies") || strings.Contains(lower, "p95") {
			if digitPat.MatchString(line) {
				return line, true
			}
		}
	}
	return "", false
}

func findBusinessLine(lines []string) (string, bool) {
	for _, line := range lines {
		if isBusinessLine(line) && digitPat.MatchString(line) {
			return line, true
		}
	}
	return "", false
}

func isBusinessLine(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "business") && strings.Contains(lower, "metric")
}

// parseProblems matches ranked-problem lines independently per line,
// preserving input order as rank order. The block ends at the first
// non-matching non-empty line once at least one problem was seen.
func parseProblems(lines []string) []Problem {
	var problems []Problem
	inBlock := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !inBlock {
			lower := strings.ToLower(trimmed)
			for _, word := range problemsHeaderWords {
				if strings.Contains(lower, word) {
					inBlock = true
					break
				}
			}
			continue
		}

		matched := false
		for _, pat := range problemPats {
			m := pat.FindStringSubmatch(trimmed)
			if m == nil {
				continue
			}
			problems = append(problems, Problem{
				Rank:        len(problems) + 1,
				Count:       int64(scale(m[2], m[3])),
				Description: strings.TrimSpace(m[4]),
			})
			matched = true
			break
		}

		if !matched && trimmed != "" && len(problems) > 0 {
			break
		}
	}
	return problems
}

// parseAction recovers the closing line: the alert variant with its
// prefix stripped, or the all-clear variant verbatim.
func parseAction(lines []string) string {
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), "action required") || strings.Contains(line, "🚨") {
			if action := strings.TrimSpace(actionPrefixPat.ReplaceAllString(line, "")); action != "" {
				return action
			}
		}
		if allClearPat.MatchString(line) {
			return strings.TrimSpace(line)
		}
	}
	return ""
}
