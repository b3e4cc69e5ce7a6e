package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileValidator_ValidateInputDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "AAPL_2008-01-02_quotes.csv")
	require.NoError(t, os.WriteFile(file, []byte("time,bid,ask\n"), 0o644))

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "directory", path: dir},
		{name: "missing", path: filepath.Join(dir, "nope"), wantErr: ErrNotFound},
		{name: "file", path: file, wantErr: ErrWrongType},
	}
	v := NewFileValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateInputDirectory(tt.path)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFileValidator_CountDayFiles(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "taq", "2008")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested_quotes.csv"), 0o755))
	for _, name := range []string{
		"AAPL_2008-01-02_quotes.csv",
		"AAPL_2008-01-03_quotes.csv.gz",
		"AAPL_2008-01-02_trades.csv",
		"notes.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	v := NewFileValidator(nil)
	n, err := v.CountDayFiles(root, "taq", 2008, "quotes")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = v.CountDayFiles(root, "taq", 2008, "trades")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = v.CountDayFiles(root, "itch", 2008, "orders")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil)
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, v.ValidateOutputDirectory(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file must be removed")
}

func TestFileValidator_ValidateSweepFile(t *testing.T) {
	dir := t.TempDir()
	sweep := filepath.Join(dir, "sweep.toml")
	other := filepath.Join(dir, "sweep.yaml")
	require.NoError(t, os.WriteFile(sweep, []byte("year = 2008\n"), 0o644))
	require.NoError(t, os.WriteFile(other, []byte("year: 2008\n"), 0o644))

	v := NewFileValidator(nil)
	assert.NoError(t, v.ValidateSweepFile(sweep))
	assert.ErrorContains(t, v.ValidateSweepFile(other), ".toml extension")
	assert.ErrorIs(t, v.ValidateSweepFile(filepath.Join(dir, "missing.toml")), ErrNotFound)

	asDir := filepath.Join(dir, "dir.toml")
	require.NoError(t, os.Mkdir(asDir, 0o755))
	assert.ErrorIs(t, v.ValidateSweepFile(asDir), ErrWrongType)
}

func TestReportFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"out/spreads.csv", "csv", false},
		{"out/spreads.XLSX", "xlsx", false},
		{"out/spreads.xls", "", true},
		{"out/spreads", "", true},
	}
	for _, tt := range tests {
		got, err := ReportFormat(tt.path)
		if tt.wantErr {
			assert.Error(t, err, tt.path)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
