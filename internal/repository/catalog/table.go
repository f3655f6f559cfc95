package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
)

const utf8BOM = "\ufeff"

// record is one CSV row addressed by column name.
type record struct {
	line   int
	cols   map[string]int
	fields []string
}

func (r record) str(col string) string {
	return strings.TrimSpace(r.fields[r.cols[col]])
}

func (r record) float(col string) (float64, error) {
	v, err := strconv.ParseFloat(r.str(col), 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: column %s: %w", r.line, col, err)
	}
	return v, nil
}

func (r record) int(col string) (int64, error) {
	v, err := strconv.ParseInt(r.str(col), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: column %s: %w", r.line, col, err)
	}
	return v, nil
}

// schema names the CSV columns a table needs. Header names are matched
// case-insensitively; aliases map an alternative header to its canonical name.
type schema struct {
	columns []string
	aliases map[string]string
}

// readTable decodes a source table. Files ending in .parquet are read with the
// row type's parquet tags; everything else is parsed as CSV with a header row.
func readTable[T any](path string, s schema, decode func(record) (T, error)) ([]T, error) {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		rows, err := parquet.ReadFile[T](path)
		if err != nil {
			return nil, fmt.Errorf("read parquet: %w", err)
		}
		return rows, nil
	}
	return readCSV(path, s, decode)
}

func readCSV[T any](path string, s schema, decode func(record) (T, error)) ([]T, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err //nolint:wrapcheck // *PathError already names the file
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for alias, canonical := range s.aliases {
		if _, ok := cols[canonical]; ok {
			continue
		}
		if i, ok := cols[alias]; ok {
			cols[canonical] = i
		}
	}
	for _, c := range s.columns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	var rows []T
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := r.FieldPos(0)
		row, err := decode(record{line: line, cols: cols, fields: fields})
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
