// Package heartbeat sources the unique-player heartbeat count from the
// operational MySQL database.
package heartbeat

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/crimson-sun/vitals/internal/model"
	"github.com/crimson-sun/vitals/internal/window"
)

const heartbeatTable = "lift.Heartbeat"

// Config holds connection settings and the device MAC prefix that scopes
// the count to this hardware generation.
type Config struct {
	Host      string
	Port      int
	Database  string
	User      string
	Password  string
	MACPrefix string
}

// Source implements business.Source over the operational database.
type Source struct {
	cfg Config
}

// New creates a Source with the given settings.
func New(cfg Config) *Source {
	return &Source{cfg: cfg}
}

// Name implements business.Source.
func (s *Source) Name() string { return "mysql" }

// Fetch counts distinct players that sent a heartbeat inside the window.
func (s *Source) Fetch(ctx context.Context, win window.Window) (model.BusinessMetrics, error) {
	db, err := sql.Open("mysql", s.dsn())
	if err != nil {
		return model.BusinessMetrics{}, fmt.Errorf("heartbeat source: open: %w", err)
	}
	defer db.Close()

	var players int64
	err = db.QueryRowContext(ctx, heartbeatsQuery(win), s.cfg.MACPrefix+"%").Scan(&players)
	if err != nil {
		return model.BusinessMetrics{}, fmt.Errorf("heartbeat source: %w", err)
	}

	return model.BusinessMetrics{Heartbeats: model.Count(players)}, nil
}

func (s *Source) dsn() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?timeout=10s",
		s.cfg.User, s.cfg.Password, s.cfg.Host, s.cfg.Port, s.cfg.Database)
}

// heartbeatsQuery counts unique players over the window's interval.
func heartbeatsQuery(win window.Window) string {
	return fmt.Sprintf(`SELECT COUNT(DISTINCT playerKey) FROM %s
WHERE macAddress LIKE ?
  AND timestamp >= NOW() - %s`, heartbeatTable, win.MySQLInterval())
}
