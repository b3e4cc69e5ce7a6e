package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// ErrNotFound is wrapped when a required path is absent.
	ErrNotFound = errors.New("path does not exist")
	// ErrWrongType is wrapped when a path is a file where a directory is
	// expected, or the reverse.
	ErrWrongType = errors.New("wrong path type")
)

// FileValidator checks the locations commands read from and write to.
// Failures are logged on the validator's logger and returned.
type FileValidator struct {
	logger *slog.Logger
}

func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger.With(slog.String("component", "file_validator"))}
}

// expect stats path and checks it is a directory (dir=true) or a regular file.
func (v *FileValidator) expect(path string, dir bool) error {
	what := "file"
	if dir {
		what = "directory"
	}
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		err = fmt.Errorf("%s %s: %w", what, path, ErrNotFound)
	case err != nil:
		err = fmt.Errorf("stat %s: %w", path, err)
	case info.IsDir() != dir:
		err = fmt.Errorf("%s is not a %s: %w", path, what, ErrWrongType)
	default:
		return nil
	}
	v.logger.Error("path check failed", slog.String("path", path), slog.String("error", err.Error()))
	return err
}

// ValidateInputDirectory checks that the data root is an existing directory.
func (v *FileValidator) ValidateInputDirectory(dir string) error {
	return v.expect(dir, true)
}

// CountDayFiles counts the <kind> day files, plain or gzipped, of one
// venue-year below root. A missing year counts zero.
func (v *FileValidator) CountDayFiles(root, venue string, year int, kind string) (int, error) {
	dir := filepath.Join(root, venue, strconv.Itoa(year))
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		v.logger.Warn("no day files for year", slog.String("directory", dir), slog.String("kind", kind))
		return 0, nil
	}

	n := 0
	for _, pattern := range []string{"*_" + kind + ".csv", "*_" + kind + ".csv.gz"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return 0, fmt.Errorf("list %s files in %s: %w", kind, dir, err)
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
				n++
			}
		}
	}
	v.logger.Debug("day files counted", slog.String("directory", dir), slog.String("kind", kind), slog.Int("count", n))
	return n, nil
}

// ValidateOutputDirectory creates dir if needed and proves it writable with
// a probe file.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		v.logger.Error("output directory is not writable", slog.String("directory", dir), slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	probe.Close()
	return os.Remove(probe.Name())
}

// ValidateFile checks that path is a regular file that can be opened.
func (v *FileValidator) ValidateFile(path string) error {
	if err := v.expect(path, false); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return f.Close()
}

// ValidateSweepFile checks that path is a readable .toml file.
func (v *FileValidator) ValidateSweepFile(path string) error {
	if ext := filepath.Ext(path); !strings.EqualFold(ext, ".toml") {
		return fmt.Errorf("sweep file %s must have a .toml extension, got %q", path, ext)
	}
	return v.ValidateFile(path)
}

// ReportFormat returns "csv" or "xlsx" from the extension of path.
func ReportFormat(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "csv" || ext == "xlsx" {
		return ext, nil
	}
	return "", fmt.Errorf("report %s: extension must be .csv or .xlsx", path)
}
