// Package redshift sources offer and upsell counts from the warehouse.
package redshift

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5"

	"github.com/crimson-sun/vitals/internal/model"
	"github.com/crimson-sun/vitals/internal/window"
)

// Offer rows live in a firehose table plus a quarterly archive; both must
// be counted.
const (
	firehoseTable = "warehouse.public.firehose_offer9"
	archiveTable  = "warehouse.public.offer_2025_q4"
)

// Config holds warehouse connection settings and the cashier-key filter
// that scopes counts to this product.
type Config struct {
	Host       string
	Port       int
	Database   string
	User       string
	Password   string
	CashierKey string
}

// Source implements business.Source over the Redshift warehouse.
type Source struct {
	cfg Config
}

// New creates a Source with the given settings.
func New(cfg Config) *Source {
	return &Source{cfg: cfg}
}

// Name implements business.Source.
func (s *Source) Name() string { return "redshift" }

// Fetch counts offers and upsells over the window's interval. One
// connection per run; the bot is a one-shot batch process, pooling would
// buy nothing.
func (s *Source) Fetch(ctx context.Context, win window.Window) (model.BusinessMetrics, error) {
	conn, err := pgx.Connect(ctx, s.dsn())
	if err != nil {
		return model.BusinessMetrics{}, fmt.Errorf("redshift source: connect: %w", err)
	}
	defer conn.Close(ctx)

	cashier := "%" + s.cfg.CashierKey + "%"

	var offers int64
	if err := conn.QueryRow(ctx, offersQuery(win), cashier).Scan(&offers); err != nil {
		return model.BusinessMetrics{}, fmt.Errorf("redshift source: offers: %w", err)
	}

	var upsells int64
	if err := conn.QueryRow(ctx, upsellsQuery(win), cashier).Scan(&upsells); err != nil {
		return model.BusinessMetrics{}, fmt.Errorf("redshift source: upsells: %w", err)
	}

	return model.BusinessMetrics{
		Offers:  model.Count(offers),
		Upsells: model.Count(upsells),
	}, nil
}

// dsn renders the connection string. Redshift speaks an older protocol
// dialect, so the simple query protocol is forced.
func (s *Source) dsn() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?connect_timeout=10&default_query_exec_mode=simple_protocol",
		url.QueryEscape(s.cfg.User), url.QueryEscape(s.cfg.Password), s.cfg.Host, s.cfg.Port, s.cfg.Database)
}

// offersQuery counts offers across both offer tables for the window.
// The interval fragment is generated, never user input.
func offersQuery(win window.Window) string {
	return fmt.Sprintf(`SELECT COUNT(*) FROM (
    SELECT playercode FROM %[1]s
    WHERE createdat >= GETDATE() - %[3]s
      AND cashierkey LIKE $1
    UNION ALL
    SELECT playercode FROM %[2]s
    WHERE createdat >= GETDATE() - %[3]s
      AND cashierkey LIKE $1
) AS combined`, firehoseTable, archiveTable, win.RedshiftInterval())
}

// upsellsQuery counts offers that had lift added.
func upsellsQuery(win window.Window) string {
	return fmt.Sprintf(`SELECT COUNT(*) FROM (
    SELECT playercode FROM %[1]s
    WHERE createdat >= GETDATE() - %[3]s
      AND cashierkey LIKE $1
      AND liftadded = true
    UNION ALL
    SELECT playercode FROM %[2]s
    WHERE createdat >= GETDATE() - %[3]s
      AND cashierkey LIKE $1
      AND liftadded = true
) AS combined`, firehoseTable, archiveTable, win.RedshiftInterval())
}
