package feed

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrMissingColumn is returned when a day file lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// column names a field and the header spellings accepted for it.
type column struct {
	name     string
	aliases  []string
	optional bool
}

// openDayFile opens path, transparently decompressing ".gz" files.
func openDayFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	return &gzipFile{Reader: gz, file: f}, nil
}

type gzipFile struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	err := g.Reader.Close()
	if cerr := g.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// readTable reads a headed CSV and returns, for every data row, the values
// of cols in order. Absent optional columns yield empty strings.
func readTable(r io.Reader, cols []column) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}

	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = -1
		for _, name := range append([]string{c.name}, c.aliases...) {
			if p, ok := pos[name]; ok {
				idx[i] = p
				break
			}
		}
		if idx[i] < 0 && !c.optional {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, c.name)
		}
	}

	var rows [][]string
	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		row := make([]string, len(cols))
		for i, p := range idx {
			if p >= 0 && p < len(rec) {
				row[i] = rec[p]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
