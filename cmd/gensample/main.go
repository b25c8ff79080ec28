// Command gensample draws a reproducible sample of the raw flight export for
// smoke runs. It uses the same loader and schema check as the pipeline, so a
// sample that writes successfully is a valid smoke input.
//
// Usage:
//
//	go run ./cmd/gensample --config config.toml
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/pflag"

	"github.com/couchcryptid/flight-delay-eda/internal/config"
	"github.com/couchcryptid/flight-delay-eda/internal/domain"
	"github.com/couchcryptid/flight-delay-eda/internal/observability"
	"github.com/couchcryptid/flight-delay-eda/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		slog.Error("gensample failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("gensample", pflag.ExitOnError)
	cfgPath := flags.String("config", config.DefaultPath, "configuration file")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load(*cfgPath, flags)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	metrics := observability.NewMetrics()

	sample, err := pipeline.NewSampler(cfg, pipeline.NewLoader(logger, metrics), logger, metrics).Write()
	if err != nil {
		return err
	}

	printCarriers(sample)
	return nil
}

// printCarriers shows how the sample spreads across carriers.
func printCarriers(ds *domain.Dataset) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Carrier", "Flights"})
	for _, c := range domain.CountBy(ds, domain.ColCarrier) {
		t.AppendRow(table.Row{c.Key, c.N})
	}
	t.AppendFooter(table.Row{"Total", ds.Len()})
	t.Render()
}
