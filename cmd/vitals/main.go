package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"

	"github.com/crimson-sun/vitals/internal/business"
	"github.com/crimson-sun/vitals/internal/business/heartbeat"
	"github.com/crimson-sun/vitals/internal/business/redshift"
	"github.com/crimson-sun/vitals/internal/config"
	"github.com/crimson-sun/vitals/internal/connector"
	"github.com/crimson-sun/vitals/internal/insights"
	"github.com/crimson-sun/vitals/internal/logging"
	"github.com/crimson-sun/vitals/internal/output"
	"github.com/crimson-sun/vitals/internal/output/file"
	"github.com/crimson-sun/vitals/internal/output/multi"
	"github.com/crimson-sun/vitals/internal/output/slack"
	"github.com/crimson-sun/vitals/internal/output/stdout"
	"github.com/crimson-sun/vitals/internal/output/webhook"
	"github.com/crimson-sun/vitals/internal/pipeline"
	"github.com/crimson-sun/vitals/internal/render"
	"github.com/crimson-sun/vitals/internal/report"
	"github.com/crimson-sun/vitals/internal/window"

	// Register connector implementations.
	_ "github.com/crimson-sun/vitals/internal/connector/appinsights"
	_ "github.com/crimson-sun/vitals/internal/connector/file"
)

func main() {
	var (
		dateFlag   = flag.String("date", "", "run date as YYYY-MM-DD (default: today)")
		replayFlag = flag.String("replay", "", "replay an archived fetch artifact instead of querying the backend")
		printFlag  = flag.Bool("print", false, "format the report to stdout and skip delivery")
		dryRunFlag = flag.Bool("dry-run", false, "render the full message but deliver to stdout only")
		blocksFlag = flag.Bool("blocks", false, "stdout emits rendered blocks JSON instead of report text")
	)
	flag.Parse()

	// Optional; real deployments set the environment directly.
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vitals: %v\n", err)
		os.Exit(1)
	}

	// Machine-readable log lines when stdout carries report data.
	stdoutActive := *printFlag || *dryRunFlag || cfg.Output.HasTarget("stdout")
	logging.Init(stdoutActive, logging.ParseLevel(cfg.Log.Level))

	loc, err := time.LoadLocation(cfg.Report.Timezone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vitals: bad timezone %q: %v\n", cfg.Report.Timezone, err)
		os.Exit(1)
	}

	runDate := time.Now().In(loc)
	if *dateFlag != "" {
		d, err := time.ParseInLocation("2006-01-02", *dateFlag, loc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vitals: bad -date %q: %v\n", *dateFlag, err)
			os.Exit(1)
		}
		runDate = d
	}

	if *replayFlag != "" {
		cfg.Connector.Provider = "file"
		cfg.Connector.ReplayPath = *replayFlag
	}

	ctor, err := connector.Get(cfg.Connector.Provider)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vitals: %v\n", err)
		os.Exit(1)
	}

	locale := language.Make(cfg.Report.Locale)

	formatter := report.NewFormatter(
		report.WithTitle(cfg.Report.Title),
		report.WithLocale(locale),
		report.WithThresholds(cfg.Report.WarningThreshold, cfg.Report.CriticalThreshold),
		report.WithTopN(cfg.Report.TopProblems),
	)

	if *printFlag {
		runPrint(ctor(), cfg, formatter, runDate)
		return
	}

	renderer := render.NewRenderer(
		render.WithTitle(cfg.Report.Title),
		render.WithPortalURL(cfg.Report.PortalURL),
		render.WithLocale(locale),
		render.WithTopN(cfg.Report.TopProblems),
	)

	out, err := buildOutputs(cfg, *dryRunFlag, *blocksFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vitals: %v\n", err)
		os.Exit(1)
	}

	p := pipeline.New(ctor(), connectorConfig(cfg), formatter, renderer, out,
		pipeline.WithTopN(cfg.Report.TopProblems),
		pipeline.WithBusinessSources(businessSources(cfg)...),
	)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "\nreceived %v, shutting down...\n", sig)
		cancel()
	}()

	res, err := p.Run(ctx, runDate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vitals: %v\n", err)
		os.Exit(1)
	}
	if res.Status == pipeline.StatusFailed {
		os.Exit(1)
	}
}

// runPrint formats the report and prints it, skipping render and delivery.
func runPrint(conn connector.Connector, cfg config.Config, formatter *report.Formatter, runDate time.Time) {
	win := window.Resolve(runDate)
	payload, err := conn.Fetch(context.Background(), connectorConfig(cfg), win)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vitals: %v\n", err)
		os.Exit(1)
	}
	agg := insights.Build(payload.Records, cfg.Report.TopProblems)
	biz := business.Collect(context.Background(), win, businessSources(cfg)...)
	fmt.Println(formatter.Format(agg, biz.Metrics, runDate))
}

// connectorConfig maps the loaded config onto the connector contract.
func connectorConfig(cfg config.Config) connector.Config {
	return connector.Config{
		Provider: cfg.Connector.Provider,
		APIKey:   cfg.Connector.Token,
		Endpoint: cfg.Connector.Endpoint,
		Extra: map[string]string{
			"app_id": cfg.Connector.AppID,
			"path":   cfg.Connector.ReplayPath,
		},
	}
}

// businessSources builds the configured optional sources. An unconfigured
// source is simply absent; its metrics stay unavailable.
func businessSources(cfg config.Config) []business.Source {
	var sources []business.Source
	if cfg.Redshift.Enabled() {
		sources = append(sources, redshift.New(redshift.Config{
			Host:       cfg.Redshift.Host,
			Port:       cfg.Redshift.Port,
			Database:   cfg.Redshift.Database,
			User:       cfg.Redshift.User,
			Password:   cfg.Redshift.Password,
			CashierKey: cfg.Redshift.CashierKey,
		}))
	}
	if cfg.MySQL.Enabled() {
		sources = append(sources, heartbeat.New(heartbeat.Config{
			Host:      cfg.MySQL.Host,
			Port:      cfg.MySQL.Port,
			Database:  cfg.MySQL.Database,
			User:      cfg.MySQL.User,
			Password:  cfg.MySQL.Password,
			MACPrefix: cfg.MySQL.MACPrefix,
		}))
	}
	return sources
}

// buildOutputs assembles the delivery fan-out from the configured targets.
// A dry run replaces the whole set with stdout.
func buildOutputs(cfg config.Config, dryRun, blocks bool) (output.Output, error) {
	if dryRun {
		return stdout.New(blocks, false), nil
	}

	var outs []output.Output
	for _, target := range cfg.Output.Targets {
		switch strings.ToLower(strings.TrimSpace(target)) {
		case "slack":
			opts := []slack.Option{}
			if cfg.Slack.Endpoint != "" {
				opts = append(opts, slack.WithEndpoint(cfg.Slack.Endpoint))
			}
			outs = append(outs, slack.New(cfg.Slack.Token, cfg.Slack.Channel, opts...))
		case "webhook":
			outs = append(outs, webhook.New(cfg.Output.WebhookURL))
		case "stdout":
			outs = append(outs, stdout.New(blocks, false))
		case "file":
			f, err := file.New(cfg.Output.FilePath, file.WithMaxSize(cfg.Output.FileMaxSize))
			if err != nil {
				return nil, err
			}
			outs = append(outs, f)
		default:
			return nil, fmt.Errorf("unknown output target %q", target)
		}
	}
	if len(outs) == 1 {
		return outs[0], nil
	}
	return multi.New(outs...), nil
}
