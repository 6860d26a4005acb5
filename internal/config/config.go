// Package config loads the bot's environment-driven configuration.
// Pipeline stages never read the environment themselves; everything they
// need arrives through constructors from the structs defined here.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds all vitals configuration.
type Config struct {
	Report    ReportConfig
	Connector ConnectorConfig
	Redshift  RedshiftConfig
	MySQL     MySQLConfig
	Slack     SlackConfig
	Output    OutputConfig
	Log       LogConfig
}

// ReportConfig controls formatting and rendering.
type ReportConfig struct {
	Title             string `env:"VITALS_TITLE" envDefault:"Player Health Status"`
	Locale            string `env:"VITALS_LOCALE" envDefault:"en"`
	Timezone          string `env:"VITALS_TIMEZONE" envDefault:"UTC"`
	TopProblems       int    `env:"VITALS_TOP_PROBLEMS" envDefault:"5"`
	WarningThreshold  int64  `env:"VITALS_THRESHOLD_WARNING" envDefault:"2000"`
	CriticalThreshold int64  `env:"VITALS_THRESHOLD_CRITICAL" envDefault:"5000"`
	PortalURL         string `env:"VITALS_PORTAL_URL" envDefault:"https://portal.azure.com"`
}

// ConnectorConfig holds telemetry source settings.
type ConnectorConfig struct {
	Provider   string `env:"VITALS_CONNECTOR" envDefault:"appinsights"`
	AppID      string `env:"VITALS_APP_ID"`
	Token      string `env:"VITALS_ACCESS_TOKEN"`
	Endpoint   string `env:"VITALS_ENDPOINT"`
	ReplayPath string `env:"VITALS_REPLAY_FILE"`
}

// RedshiftConfig holds the warehouse source settings. An empty Host
// disables the source; its business fields stay marked unavailable.
type RedshiftConfig struct {
	Host       string `env:"VITALS_REDSHIFT_HOST"`
	Port       int    `env:"VITALS_REDSHIFT_PORT" envDefault:"5439"`
	Database   string `env:"VITALS_REDSHIFT_DATABASE"`
	User       string `env:"VITALS_REDSHIFT_USER"`
	Password   string `env:"VITALS_REDSHIFT_PASSWORD"`
	CashierKey string `env:"VITALS_REDSHIFT_CASHIER_KEY" envDefault:"CashierName"`
}

// Enabled reports whether the Redshift source is configured at all.
func (c RedshiftConfig) Enabled() bool { return c.Host != "" }

// MySQLConfig holds the operational-database source settings. An empty
// Host disables the source.
type MySQLConfig struct {
	Host      string `env:"VITALS_MYSQL_HOST"`
	Port      int    `env:"VITALS_MYSQL_PORT" envDefault:"3306"`
	Database  string `env:"VITALS_MYSQL_DATABASE"`
	User      string `env:"VITALS_MYSQL_USER"`
	Password  string `env:"VITALS_MYSQL_PASSWORD"`
	MACPrefix string `env:"VITALS_MYSQL_MAC_PREFIX" envDefault:"70:0A"`
}

// Enabled reports whether the MySQL source is configured at all.
func (c MySQLConfig) Enabled() bool { return c.Host != "" }

// SlackConfig holds delivery settings for the Slack output.
type SlackConfig struct {
	Token    string `env:"VITALS_SLACK_TOKEN"`
	Channel  string `env:"VITALS_SLACK_CHANNEL" envDefault:"#int-app-insights"`
	Endpoint string `env:"VITALS_SLACK_ENDPOINT"`
}

// OutputConfig selects delivery targets.
type OutputConfig struct {
	Targets     []string `env:"VITALS_OUTPUTS" envSeparator:"," envDefault:"slack"`
	WebhookURL  string   `env:"VITALS_WEBHOOK_URL"`
	FilePath    string   `env:"VITALS_FILE_PATH" envDefault:"vitals_runs.ndjson"`
	FileMaxSize int64    `env:"VITALS_FILE_MAX_SIZE" envDefault:"0"`
}

// HasTarget reports whether the named output target is enabled.
func (c OutputConfig) HasTarget(name string) bool {
	for _, t := range c.Targets {
		if strings.EqualFold(strings.TrimSpace(t), name) {
			return true
		}
	}
	return false
}

// LogConfig holds operator logging settings.
type LogConfig struct {
	Level string `env:"VITALS_LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config and validates the keys
// required by the enabled connector and output targets.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements. Optional sources are only
// validated when partially configured: a fully absent source is a valid
// "unavailable" state, a half-configured one is an operator mistake.
func (c Config) Validate() error {
	switch c.Connector.Provider {
	case "appinsights":
		if c.Connector.AppID == "" {
			return fmt.Errorf("config: VITALS_APP_ID is required for the appinsights connector")
		}
		if c.Connector.Token == "" {
			return fmt.Errorf("config: VITALS_ACCESS_TOKEN is required for the appinsights connector")
		}
	case "file":
		if c.Connector.ReplayPath == "" {
			return fmt.Errorf("config: VITALS_REPLAY_FILE is required for the file connector")
		}
	}

	if c.Redshift.Enabled() {
		if c.Redshift.Database == "" || c.Redshift.User == "" || c.Redshift.Password == "" {
			return fmt.Errorf("config: redshift is partially configured; set VITALS_REDSHIFT_DATABASE, VITALS_REDSHIFT_USER and VITALS_REDSHIFT_PASSWORD or unset VITALS_REDSHIFT_HOST")
		}
	}
	if c.MySQL.Enabled() {
		if c.MySQL.Database == "" || c.MySQL.User == "" || c.MySQL.Password == "" {
			return fmt.Errorf("config: mysql is partially configured; set VITALS_MYSQL_DATABASE, VITALS_MYSQL_USER and VITALS_MYSQL_PASSWORD or unset VITALS_MYSQL_HOST")
		}
	}

	if c.Output.HasTarget("slack") && c.Slack.Token == "" {
		return fmt.Errorf("config: VITALS_SLACK_TOKEN is required when the slack output is enabled")
	}
	if c.Output.HasTarget("webhook") && c.Output.WebhookURL == "" {
		return fmt.Errorf("config: VITALS_WEBHOOK_URL is required when the webhook output is enabled")
	}
	if c.Report.TopProblems <= 0 {
		return fmt.Errorf("config: VITALS_TOP_PROBLEMS must be positive, got %d", c.Report.TopProblems)
	}
	return nil
}
