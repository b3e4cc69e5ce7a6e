package artifacts

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"lobstat/pkg/contracts"
	"lobstat/pkg/contracts/domain"
)

// ErrCorrupt is returned when a stored artifact cannot be decoded.
var ErrCorrupt = errors.New("corrupt artifact")

// Table is a column-labelled numeric table.
type Table struct {
	Columns []string
	Rows    [][]float64
}

// NewTable creates a table with the given columns.
func NewTable(columns ...string) Table {
	return Table{Columns: columns}
}

// Append adds one row. It panics if the row width is wrong.
func (t *Table) Append(values ...float64) {
	if len(values) != len(t.Columns) {
		panic(fmt.Sprintf("artifacts: row has %d values, table has %d columns", len(values), len(t.Columns)))
	}
	t.Rows = append(t.Rows, values)
}

// Column returns the values of the named column.
func (t Table) Column(name string) ([]float64, bool) {
	for i, c := range t.Columns {
		if c == name {
			out := make([]float64, len(t.Rows))
			for r, row := range t.Rows {
				out[r] = row[i]
			}
			return out, true
		}
	}
	return nil, false
}

// Meta is stored next to every table.
type Meta struct {
	Key       domain.ArtifactKey `json:"key"`
	Format    string             `json:"format"`
	Producer  string             `json:"producer"`
	RunID     string             `json:"run_id,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	Rows      int                `json:"rows"`
	Attrs     map[string]string  `json:"attrs,omitempty"`
}

// Artifact is a table with its metadata.
type Artifact struct {
	Meta  Meta
	Table Table
}

// New creates an artifact for key.
func New(key domain.ArtifactKey, table Table) *Artifact {
	return &Artifact{
		Meta: Meta{
			Key:       key,
			Format:    contracts.DataFormatVersion,
			Producer:  contracts.GetVersionString(),
			CreatedAt: time.Now().UTC(),
			Rows:      len(table.Rows),
		},
		Table: table,
	}
}

// EncodeTable writes t as CSV. NaN is written as "NaN".
func EncodeTable(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			rec[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodeTable reads a CSV written by EncodeTable.
func DecodeTable(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return Table{}, fmt.Errorf("%w: read header: %v", ErrCorrupt, err)
	}
	t := Table{Columns: append([]string(nil), header...)}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		row := make([]float64, len(rec))
		for i, s := range rec {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return Table{}, fmt.Errorf("%w: row %d: %v", ErrCorrupt, len(t.Rows)+1, err)
			}
			row[i] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func encode(a *Artifact) (table, meta []byte, err error) {
	var buf bytes.Buffer
	if err := EncodeTable(&buf, a.Table); err != nil {
		return nil, nil, err
	}
	a.Meta.Rows = len(a.Table.Rows)
	meta, err = json.MarshalIndent(a.Meta, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("marshal meta: %w", err)
	}
	return buf.Bytes(), meta, nil
}

func decode(table, meta []byte) (*Artifact, error) {
	a := &Artifact{}
	if err := json.Unmarshal(meta, &a.Meta); err != nil {
		return nil, fmt.Errorf("%w: meta: %v", ErrCorrupt, err)
	}
	if a.Meta.Format != "" && a.Meta.Format != contracts.DataFormatVersion {
		return nil, fmt.Errorf("%w: format %s, want %s", ErrCorrupt, a.Meta.Format, contracts.DataFormatVersion)
	}
	t, err := DecodeTable(bytes.NewReader(table))
	if err != nil {
		return nil, err
	}
	a.Table = t
	return a, nil
}
