package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"lobstat/internal/exporter"
	"lobstat/internal/operations"
	"lobstat/internal/statistics"
	"lobstat/internal/validation"
	"lobstat/pkg/contracts/domain"
)

// YearStatistics collects the year statistics of the succeeded units of a
// report, narrowest average spread first.
func YearStatistics(report *operations.Report) []statistics.YearStats {
	var years []statistics.YearStats
	for _, res := range report.Results {
		if res.Status == operations.StatusSucceeded && res.Outcome.Year != nil {
			years = append(years, *res.Outcome.Year)
		}
	}
	statistics.SortBySpread(years)
	return years
}

// ExportStatistics writes the year statistics of report to path, as CSV or
// as a workbook depending on its extension. Relative paths are resolved
// below the reports directory.
func (a *Application) ExportStatistics(ctx context.Context, report *operations.Report, path string, year int) error {
	format, err := validation.ReportFormat(path)
	if err != nil {
		return err
	}
	years := YearStatistics(report)
	path = a.reportPath(path)

	switch format {
	case "csv":
		err = exporter.NewCSVWriter("").WriteStatistics(path, years)
	default:
		wb := exporter.NewWorkbook()
		defer wb.Close()
		if err = wb.AddStatistics(fmt.Sprintf("spreads %d", year), years); err == nil {
			err = wb.SaveAs(path)
		}
	}
	if err != nil {
		return fmt.Errorf("export statistics: %w", err)
	}

	a.Logger.InfoContext(ctx, "statistics exported",
		slog.String("path", path),
		slog.Int("tickers", len(years)))
	return nil
}

// ExportArtifacts writes the artifacts produced by the succeeded units of
// report. A .xlsx path gets one sheet per artifact; a .csv path is used as
// a name prefix for one file per artifact.
func (a *Application) ExportArtifacts(ctx context.Context, report *operations.Report, path string) error {
	format, err := validation.ReportFormat(path)
	if err != nil {
		return err
	}
	path = a.reportPath(path)

	var keys []domain.ArtifactKey
	for _, res := range report.Results {
		if res.Status == operations.StatusSucceeded {
			keys = append(keys, res.Outcome.Artifacts...)
		}
	}

	var wb *exporter.Workbook
	if format == "xlsx" {
		wb = exporter.NewWorkbook()
		defer wb.Close()
	}
	csv := exporter.NewCSVWriter("")
	prefix := strings.TrimSuffix(path, filepath.Ext(path))

	for _, key := range keys {
		artifact, found, err := a.Store.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("export %s: %w", key, err)
		}
		if !found {
			a.Logger.WarnContext(ctx, "artifact vanished before export", slog.String("key", key.String()))
			continue
		}
		if wb != nil {
			if err := wb.AddArtifact(artifact); err != nil {
				return fmt.Errorf("export %s: %w", key, err)
			}
			continue
		}
		name := prefix + "_" + strings.ReplaceAll(key.Path(), "/", "_") + ".csv"
		if err := csv.WriteArtifact(name, artifact); err != nil {
			return fmt.Errorf("export %s: %w", key, err)
		}
	}

	if wb != nil && len(keys) > 0 {
		if err := wb.SaveAs(path); err != nil {
			return fmt.Errorf("export artifacts: %w", err)
		}
	}
	a.Logger.InfoContext(ctx, "artifacts exported",
		slog.String("path", path),
		slog.Int("artifacts", len(keys)))
	return nil
}

func (a *Application) reportPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(a.Config.Paths.ReportsDir(), path)
}
