package models

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/spf13/cast"
)

// Table is an immutable column-oriented table. Column names are normalized
// at build time and duplicates get a numeric suffix. All query operations
// read row positions as dense uint32 indexes, which keeps them compatible
// with the roaring row sets used by filters and group-bys.
type Table struct {
	columns []*Column
	byName  map[string]*Column
	rows    int
}

// NewTable builds a table from a CSV-shaped header and records. Every
// record must have exactly one cell per header field.
func NewTable(header []string, records [][]string) (*Table, error) {
	names := dedupeNames(header)

	cells := make([][]string, len(names))
	for i := range cells {
		cells[i] = make([]string, len(records))
	}
	for r, record := range records {
		if len(record) != len(names) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", r+1, len(record), len(names))
		}
		for c, cell := range record {
			cells[c][r] = cell
		}
	}

	t := &Table{
		columns: make([]*Column, 0, len(names)),
		byName:  make(map[string]*Column, len(names)),
		rows:    len(records),
	}
	for i, name := range names {
		col := NewColumn(name, cells[i])
		t.columns = append(t.columns, col)
		t.byName[name] = col
	}
	return t, nil
}

// NewTableFromMaps builds a table from a list of JSON objects, the shape
// CKAN datastore responses use. Columns are the union of all record keys
// in sorted order; missing keys become nulls.
func NewTableFromMaps(records []map[string]any) (*Table, error) {
	seen := make(map[string]bool)
	var keys []string
	for _, record := range records {
		for key := range record {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	sort.Strings(keys)

	rows := make([][]string, len(records))
	for r, record := range records {
		row := make([]string, len(keys))
		for c, key := range keys {
			if v, ok := record[key]; ok && v != nil {
				cell, err := cast.ToStringE(v)
				if err != nil {
					return nil, fmt.Errorf("record %d field %q: %w", r+1, key, err)
				}
				row[c] = cell
			}
		}
		rows[r] = row
	}
	return NewTable(keys, rows)
}

// dedupeNames normalizes header names and suffixes duplicates (_2, _3 ...).
func dedupeNames(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]int, len(header))
	for i, raw := range header {
		name := NormalizeName(raw)
		if n, ok := used[name]; ok {
			used[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		}
		used[name] = 1
		names[i] = name
	}
	return names
}

func (t *Table) Rows() int {
	return t.rows
}

func (t *Table) Header() []string {
	header := make([]string, len(t.columns))
	for i, col := range t.columns {
		header[i] = col.Name()
	}
	return header
}

// Column returns the named column or ErrUnknownColumn.
func (t *Table) Column(name string) (*Column, error) {
	if col, ok := t.byName[name]; ok {
		return col, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
}

// Columns returns the columns in header order.
func (t *Table) Columns() []*Column {
	return t.columns
}

// Row materializes row i as raw cell text in header order.
func (t *Table) Row(i int) []string {
	row := make([]string, len(t.columns))
	for c, col := range t.columns {
		row[c] = col.Value(i)
	}
	return row
}

// RowsPage returns up to limit rows starting at offset. Out-of-range pages
// are empty, never an error.
func (t *Table) RowsPage(offset, limit int) [][]string {
	if offset < 0 {
		offset = 0
	}
	if offset >= t.rows || limit <= 0 {
		return [][]string{}
	}
	end := offset + limit
	if end > t.rows {
		end = t.rows
	}
	page := make([][]string, 0, end-offset)
	for i := offset; i < end; i++ {
		page = append(page, t.Row(i))
	}
	return page
}

// RowsAt materializes the rows at the given positions, up to limit when
// limit is positive. Positions iterate in ascending order, so the original
// row order is preserved.
func (t *Table) RowsAt(positions *roaring.Bitmap, limit int) [][]string {
	n := int(positions.GetCardinality())
	if limit > 0 && limit < n {
		n = limit
	}
	rows := make([][]string, 0, n)
	it := positions.Iterator()
	for it.HasNext() && len(rows) < n {
		rows = append(rows, t.Row(int(it.Next())))
	}
	return rows
}

// SearchResult carries one page of matches plus the total match count.
type SearchResult struct {
	Rows  [][]string `json:"rows"`
	Total int        `json:"total"`
}

// Search finds rows whose cell in column contains query, case-insensitive.
// Null cells never match. A non-positive limit returns every match.
func (t *Table) Search(column, query string, limit int) (*SearchResult, error) {
	col, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	matches := col.MatchSubstring(query)
	return &SearchResult{
		Rows:  t.RowsAt(matches, limit),
		Total: int(matches.GetCardinality()),
	}, nil
}

// FilterEq returns the positions whose cell in column equals value exactly.
func (t *Table) FilterEq(column, value string) (*roaring.Bitmap, error) {
	col, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	return col.Bitmap(value), nil
}

// ColumnSchema describes one column for the schema endpoint.
type ColumnSchema struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Nulls int    `json:"nulls"`
}

func (t *Table) Schema() []ColumnSchema {
	schema := make([]ColumnSchema, len(t.columns))
	for i, col := range t.columns {
		schema[i] = ColumnSchema{
			Name:  col.Name(),
			Kind:  col.Kind().String(),
			Nulls: col.NullCount(),
		}
	}
	return schema
}

// WriteCSV writes the header and the given rows as CSV.
func (t *Table) WriteCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
