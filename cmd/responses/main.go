// Command responses computes the response functions and trade sign
// correlators listed in a TOML sweep file, one year aggregate per ticker
// pair, lag grid and shift.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"lobstat/internal/app"
	"lobstat/internal/config"
	"lobstat/internal/operations"
	"lobstat/pkg/contracts"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to config.yaml")
	sweepPath := flag.String("sweep", "", "path to the sweep file (required)")
	workers := flag.Int("workers", 0, "concurrent units (default: run.workers)")
	reconstruct := flag.Bool("reconstruct", false, "reconstruct every business day of the sweep's tickers first")
	export := flag.String("export", "", "optional .xlsx or .csv export of the year aggregates")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return 0
	}

	if *sweepPath == "" {
		fmt.Fprintln(os.Stderr, "responses: -sweep is required")
		flag.Usage()
		return 2
	}

	ctx, stop := app.SignalContext(context.Background())
	defer stop()

	a, err := app.NewApplication(ctx, app.Options{ConfigPath: *configPath, Workers: *workers})
	if err != nil {
		slog.Error("failed to start", slog.String("error", err.Error()))
		return 1
	}
	defer a.Close(context.Background())

	if err := a.Files.ValidateSweepFile(*sweepPath); err != nil {
		a.Logger.Error("invalid sweep file", slog.String("error", err.Error()))
		return 2
	}
	sweep, err := config.LoadSweep(*sweepPath)
	if err != nil {
		a.Logger.Error("invalid sweep file", slog.String("error", err.Error()))
		return 2
	}

	if *reconstruct {
		source := sweep.Source
		if source == "" {
			source = a.Config.Run.Source
		}
		dates, err := app.Dates(sweep.Year, a.Config.Run.Holidays, "", "")
		if err != nil {
			a.Logger.Error("invalid holidays", slog.String("error", err.Error()))
			return 2
		}
		report := a.Run(ctx, "reconstruct", app.ReconstructUnits(source, sweep.Tickers, dates))
		// missing days are expected; the year aggregates skip them
		failed := len(report.Failures()) - report.FailuresByKind()[operations.ErrorKindMissingInput]
		if failed > 0 {
			a.Logger.Warn("reconstruction had failures", slog.Int("failed", failed))
		}
		if ctx.Err() != nil {
			return 1
		}
	}

	units, err := app.ResponseUnits(sweep.Expand())
	if err != nil {
		a.Logger.Error("invalid sweep job", slog.String("error", err.Error()))
		return 2
	}
	a.Logger.Info("sweep loaded",
		slog.String("sweep", *sweepPath),
		slog.Int("year", sweep.Year),
		slog.Int("tickers", len(sweep.Tickers)),
		slog.Int("units", len(units)))

	report := a.Run(ctx, "responses", units)
	if *export != "" {
		if err := a.ExportArtifacts(ctx, report, *export); err != nil {
			a.Logger.Error("export failed", slog.String("error", err.Error()))
			return 1
		}
	}
	if err := report.Err(); err != nil {
		a.Logger.Error("sweep incomplete", slog.String("error", err.Error()))
		return 1
	}
	return 0
}
