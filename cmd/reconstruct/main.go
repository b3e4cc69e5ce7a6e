// Command reconstruct rebuilds the best bid/ask and the signed trades of
// every (ticker, day) and stores the per-day series used by the response
// sweeps.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"lobstat/internal/app"
	"lobstat/internal/feed"
	"lobstat/pkg/contracts"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to config.yaml (defaults to ./config.yaml or ./configs/config.yaml)")
	tickerList := flag.String("tickers", "", "comma-separated tickers, e.g. AAPL,MSFT")
	year := flag.Int("year", time.Now().Year()-1, "year to reconstruct")
	from := flag.String("from", "", "first date, YYYY-MM-DD (default: start of year)")
	to := flag.String("to", "", "last date, YYYY-MM-DD (default: end of year)")
	source := flag.String("source", "", "itch or taq (default: run.source)")
	workers := flag.Int("workers", 0, "concurrent units (default: run.workers)")
	dataDir := flag.String("data", "", "data root (default: paths.data_dir)")
	export := flag.String("export", "", "optional .xlsx or .csv export of the written series")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return 0
	}

	tickers, err := app.ParseTickers(*tickerList)
	if err != nil {
		fmt.Fprintln(os.Stderr, "reconstruct:", err)
		flag.Usage()
		return 2
	}

	ctx, stop := app.SignalContext(context.Background())
	defer stop()

	a, err := app.NewApplication(ctx, app.Options{
		ConfigPath: *configPath,
		Workers:    *workers,
		Source:     *source,
		DataDir:    *dataDir,
	})
	if err != nil {
		slog.Error("failed to start", slog.String("error", err.Error()))
		return 1
	}
	defer a.Close(context.Background())

	dates, err := app.Dates(*year, a.Config.Run.Holidays, *from, *to)
	if err != nil {
		a.Logger.Error("invalid date range", slog.String("error", err.Error()))
		return 2
	}

	kind := feed.KindQuotes
	if a.Config.Run.Source == "itch" {
		kind = feed.KindOrders
	}
	n, err := a.Files.CountDayFiles(a.Config.Paths.DataDir, a.Config.Run.Source, *year, string(kind))
	if err != nil {
		a.Logger.Error("failed to scan data directory", slog.String("error", err.Error()))
		return 1
	}
	a.Logger.Info("reconstruction scheduled",
		slog.Int("tickers", len(tickers)),
		slog.Int("dates", len(dates)),
		slog.Int("day_files_in_year", n))

	report := a.Run(ctx, "reconstruct", app.ReconstructUnits(a.Config.Run.Source, tickers, dates))
	if *export != "" {
		if err := a.ExportArtifacts(ctx, report, *export); err != nil {
			a.Logger.Error("export failed", slog.String("error", err.Error()))
			return 1
		}
	}
	if err := report.Err(); err != nil {
		a.Logger.Error("reconstruction incomplete", slog.String("error", err.Error()))
		return 1
	}
	return 0
}
