package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// utf8BOM lets Excel detect the encoding of exported reports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes reports below a reports directory. Absolute paths are
// used as given.
type CSVWriter struct {
	reportsDir string
}

func NewCSVWriter(reportsDir string) *CSVWriter {
	return &CSVWriter{reportsDir: reportsDir}
}

// WriteOptions describes a whole report written in one call.
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool
}

// WriteCSV replaces filePath with the header and records of opts.
func (w *CSVWriter) WriteCSV(filePath string, opts WriteOptions) error {
	s, err := w.open(filePath, opts.Headers, opts.BOMPrefix)
	if err != nil {
		return err
	}
	for i, rec := range opts.Records {
		if err := s.WriteRecord(rec); err != nil {
			s.file.Close()
			return fmt.Errorf("write record %d of %s: %w", i, s.file.Name(), err)
		}
	}
	return s.Close()
}

// StreamWriter writes a report one record at a time.
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter truncates filePath and writes headers, if any.
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string) (*StreamWriter, error) {
	return w.open(filePath, headers, false)
}

func (w *CSVWriter) open(filePath string, headers []string, bom bool) (*StreamWriter, error) {
	path := filePath
	if !filepath.IsAbs(path) && w.reportsDir != "" {
		path = filepath.Join(w.reportsDir, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create report %s: %w", path, err)
	}
	if bom {
		if _, err := f.Write(utf8BOM); err != nil {
			f.Close()
			return nil, fmt.Errorf("write BOM to %s: %w", path, err)
		}
	}
	s := &StreamWriter{file: f, writer: csv.NewWriter(f)}
	if len(headers) > 0 {
		if err := s.writer.Write(headers); err != nil {
			f.Close()
			return nil, fmt.Errorf("write header of %s: %w", path, err)
		}
	}
	return s, nil
}

func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes buffered records and closes the file.
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
