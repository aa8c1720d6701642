package models

import (
	"strings"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/spf13/cast"
)

type ColumnKind uint8

const (
	KindText ColumnKind = iota
	KindNumber
	KindTime
)

func (k ColumnKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindTime:
		return "time"
	default:
		return "text"
	}
}

// Date layouts accepted during kind inference. Chilean portals ship both
// ISO and day-first forms.
var timeLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

var nameReplacer = strings.NewReplacer(
	" ", "_",
	"á", "a",
	"é", "e",
	"í", "i",
	"ó", "o",
	"ú", "u",
	"ñ", "n",
)

// NormalizeName canonicalizes a column name: trimmed, lowercased, spaces
// to underscores, Spanish accents stripped.
func NormalizeName(name string) string {
	return nameReplacer.Replace(strings.ToLower(strings.TrimSpace(name)))
}

// Column is an immutable typed column. Raw cell text is kept verbatim;
// numeric and time values are parsed once at build time. Cells that fail
// to parse, and empty cells, are nulls. The value index is built lazily
// on first use and shared by filters, group-bys and searches.
type Column struct {
	name    string
	kind    ColumnKind
	cells   []string
	numbers []float64   // KindNumber only, zero at null positions
	times   []time.Time // KindTime only, zero at null positions
	layout  string      // KindTime only

	idxOnce sync.Once
	idx     map[string]*roaring.Bitmap
}

// NewColumn infers the column kind from its cells and parses values.
// A column is numeric when every non-empty cell parses as a float, a time
// column when every non-empty cell matches one accepted date layout.
func NewColumn(name string, cells []string) *Column {
	c := &Column{name: name, cells: cells}

	if numbers, ok := parseNumbers(cells); ok {
		c.kind = KindNumber
		c.numbers = numbers
		return c
	}
	if times, layout, ok := parseTimes(cells); ok {
		c.kind = KindTime
		c.times = times
		c.layout = layout
		return c
	}
	c.kind = KindText
	return c
}

func parseNumbers(cells []string) ([]float64, bool) {
	numbers := make([]float64, len(cells))
	for i, cell := range cells {
		if cell == "" {
			continue
		}
		v, err := cast.ToFloat64E(strings.TrimSpace(cell))
		if err != nil {
			return nil, false
		}
		numbers[i] = v
	}
	return numbers, true
}

func parseTimes(cells []string) ([]time.Time, string, bool) {
	layout := ""
	for _, cell := range cells {
		if cell == "" {
			continue
		}
		for _, l := range timeLayouts {
			if _, err := time.Parse(l, strings.TrimSpace(cell)); err == nil {
				layout = l
				break
			}
		}
		break // layout is fixed by the first non-empty cell
	}
	if layout == "" {
		return nil, "", false
	}

	times := make([]time.Time, len(cells))
	for i, cell := range cells {
		if cell == "" {
			continue
		}
		t, err := time.Parse(layout, strings.TrimSpace(cell))
		if err != nil {
			return nil, "", false
		}
		times[i] = t
	}
	return times, layout, true
}

func (c *Column) Name() string {
	return c.name
}

func (c *Column) Kind() ColumnKind {
	return c.kind
}

func (c *Column) Len() int {
	return len(c.cells)
}

// Value returns the raw cell text at row i.
func (c *Column) Value(i int) string {
	return c.cells[i]
}

func (c *Column) IsNull(i int) bool {
	return c.cells[i] == ""
}

func (c *Column) NullCount() int {
	n := 0
	for _, cell := range c.cells {
		if cell == "" {
			n++
		}
	}
	return n
}

// Number returns the parsed numeric value at row i. The second return is
// false for null cells and for non-numeric columns.
func (c *Column) Number(i int) (float64, bool) {
	if c.kind != KindNumber || c.cells[i] == "" {
		return 0, false
	}
	return c.numbers[i], true
}

// Time returns the parsed time at row i, false for nulls and non-time columns.
func (c *Column) Time(i int) (time.Time, bool) {
	if c.kind != KindTime || c.cells[i] == "" {
		return time.Time{}, false
	}
	return c.times[i], true
}

// SumOver sums the numeric values at the given row positions, skipping
// null cells the way pandas does.
func (c *Column) SumOver(positions *roaring.Bitmap) float64 {
	total := 0.0
	it := positions.Iterator()
	for it.HasNext() {
		i := it.Next()
		if v, ok := c.Number(int(i)); ok {
			total += v
		}
	}
	return total
}
