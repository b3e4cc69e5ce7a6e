// Command spreadstats reports, per ticker, the average number of quotes
// and trades per day and the average quoted spread over a year of TAQ
// files, narrowest spread first.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"lobstat/internal/app"
	"lobstat/pkg/contracts"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to config.yaml")
	tickerList := flag.String("tickers", "", "comma-separated tickers")
	year := flag.Int("year", time.Now().Year()-1, "year to summarise")
	workers := flag.Int("workers", 0, "concurrent units (default: run.workers)")
	out := flag.String("out", "", "report file, .csv or .xlsx (default: spreads_<year>.csv)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return 0
	}

	tickers, err := app.ParseTickers(*tickerList)
	if err != nil {
		fmt.Fprintln(os.Stderr, "spreadstats:", err)
		flag.Usage()
		return 2
	}
	if *out == "" {
		*out = fmt.Sprintf("spreads_%d.csv", *year)
	}

	ctx, stop := app.SignalContext(context.Background())
	defer stop()

	a, err := app.NewApplication(ctx, app.Options{ConfigPath: *configPath, Workers: *workers, Source: "taq"})
	if err != nil {
		slog.Error("failed to start", slog.String("error", err.Error()))
		return 1
	}
	defer a.Close(context.Background())

	report := a.Run(ctx, "statistics", app.StatisticsUnits(tickers, *year))
	if err := a.ExportStatistics(ctx, report, *out, *year); err != nil {
		a.Logger.Error("export failed", slog.String("error", err.Error()))
		return 1
	}
	if err := report.Err(); err != nil {
		a.Logger.Error("statistics incomplete", slog.String("error", err.Error()))
		return 1
	}
	return 0
}
