// Package appinsights fetches telemetry from the Application Insights
// REST API with a single union query covering summary counters, recent
// exceptions, exception groups, and the hourly timeline.
package appinsights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/crimson-sun/vitals/internal/connector"
	"github.com/crimson-sun/vitals/internal/connector/httpclient"
	"github.com/crimson-sun/vitals/internal/model"
	"github.com/crimson-sun/vitals/internal/window"
)

const defaultEndpoint = "https://api.applicationinsights.io"

func init() {
	connector.Register("appinsights", func() connector.Connector {
		return &Connector{}
	})
}

// Connector implements connector.Connector for the Application Insights
// query endpoint.
type Connector struct{}

// Response types (unexported). The API returns tables of columns and
// positional rows; rows zip into records by column name.

type queryResponse struct {
	Tables []table `json:"tables"`
}

type table struct {
	Name    string   `json:"name"`
	Columns []column `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

type column struct {
	Name string `json:"name"`
}

// buildQuery renders the union query for an explicit time range. Every
// sub-query carries its own range clause so the backend can prune each
// source table independently.
func buildQuery(win window.Window) string {
	rangeClause := fmt.Sprintf("timestamp between (datetime(%s) .. datetime(%s))",
		win.Start.UTC().Format(time.RFC3339), win.End.UTC().Format(time.RFC3339))

	return fmt.Sprintf(`
let summary = union requests, exceptions, dependencies, traces
| where %[1]s
| summarize
    TotalRequests = countif(itemType == 'request'),
    FailedRequests = countif(itemType == 'request' and success == false),
    TotalExceptions = countif(itemType == 'exception'),
    AvgResponseTime = avgif(duration, itemType == 'request'),
    P95ResponseTime = percentile(duration, 95),
    TotalDependencies = countif(itemType == 'dependency'),
    FailedDependencies = countif(itemType == 'dependency' and success == false)
| extend SuccessRate = iff(TotalRequests > 0, round(100.0 * (TotalRequests - FailedRequests) / TotalRequests, 2), 100.0)
| extend DataType = "Summary";
let exceptionDetails = exceptions
| where %[1]s
| project
    DataType = "Exception",
    timestamp,
    type,
    outerMessage,
    problemId,
    operation_Name,
    cloud_RoleName,
    severityLevel
| order by timestamp desc
| take 50;
let exceptionGroups = exceptions
| where %[1]s
| summarize
    Count = count(),
    LatestOccurrence = max(timestamp),
    SampleMessage = any(outerMessage)
    by problemId, type, operation_Name
| order by Count desc
| take 20
| extend DataType = "ExceptionGroup";
let exceptionTimeline = exceptions
| where %[1]s
| summarize
    Count = count()
    by bin(timestamp, 1h)
| order by timestamp asc
| extend DataType = "Timeline";
union summary, exceptionDetails, exceptionGroups, exceptionTimeline
`, rangeClause)
}

// Fetch runs the union query and zips the response rows into records.
func (c *Connector) Fetch(ctx context.Context, cfg connector.Config, win window.Window) (connector.Payload, error) {
	appID := cfg.Extra["app_id"]
	if appID == "" {
		return connector.Payload{}, fmt.Errorf("appinsights connector: missing required config key \"app_id\" in Extra")
	}

	baseURL := cfg.Endpoint
	if baseURL == "" {
		baseURL = defaultEndpoint
	}
	client := httpclient.New(baseURL, cfg.APIKey)
	path := "/v1/apps/" + appID + "/query"

	started := time.Now()

	var resp queryResponse
	err := client.PostJSON(ctx, path, map[string]string{"query": buildQuery(win)}, &resp)
	if err != nil {
		var apiErr *httpclient.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.StatusCode {
			case 401:
				return connector.Payload{}, fmt.Errorf("appinsights connector: authentication failed - token may be expired or invalid: %w", err)
			case 403:
				return connector.Payload{}, fmt.Errorf("appinsights connector: access denied - insufficient permissions: %w", err)
			}
		}
		return connector.Payload{}, fmt.Errorf("appinsights connector: %w", err)
	}

	records, err := zipRecords(resp)
	if err != nil {
		return connector.Payload{}, err
	}

	return connector.Payload{Records: records, Elapsed: time.Since(started)}, nil
}

// zipRecords pairs each row's values with its table's column names. A
// response without a single table is structurally unusable.
func zipRecords(resp queryResponse) ([]model.Record, error) {
	if len(resp.Tables) == 0 {
		return nil, fmt.Errorf("appinsights connector: no tables in response: %w", connector.ErrBadShape)
	}
	tbl := resp.Tables[0]

	names := make([]string, len(tbl.Columns))
	for i, col := range tbl.Columns {
		if col.Name == "" {
			return nil, fmt.Errorf("appinsights connector: unnamed column %d: %w", i, connector.ErrBadShape)
		}
		names[i] = col.Name
	}

	records := make([]model.Record, 0, len(tbl.Rows))
	for i, row := range tbl.Rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("appinsights connector: row %d has %d values for %d columns: %w",
				i, len(row), len(names), connector.ErrBadShape)
		}
		m := make(map[string]any, len(names))
		for j, name := range names {
			if row[j] != nil {
				m[name] = row[j]
			}
		}

		// Round-trip through JSON so column names bind to Record fields
		// by tag, exactly as a pre-zipped response would.
		raw, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("appinsights connector: row %d: %w", i, err)
		}
		var rec model.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("appinsights connector: row %d: %w", i, connector.ErrBadShape)
		}
		records = append(records, rec)
	}
	return records, nil
}
