package models

import "math"

// ColumnSummary is one row of the per-column summary, the shape of
// pandas df.describe(include="all"). Numeric fields are pointers so text
// columns omit them from the JSON output.
type ColumnSummary struct {
	Column string   `json:"column"`
	Kind   string   `json:"kind"`
	Count  int      `json:"count"`
	Unique int      `json:"unique"`
	Top    string   `json:"top,omitempty"`
	Freq   int      `json:"freq,omitempty"`
	Mean   *float64 `json:"mean,omitempty"`
	Std    *float64 `json:"std,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
}

// Describe summarizes every column: non-null count, distinct count and the
// most frequent value for all kinds, plus mean, sample standard deviation,
// min and max for numeric columns.
func (t *Table) Describe() []ColumnSummary {
	out := make([]ColumnSummary, len(t.columns))
	for i, col := range t.columns {
		s := ColumnSummary{
			Column: col.Name(),
			Kind:   col.Kind().String(),
			Count:  col.Len() - col.NullCount(),
			Unique: col.Unique(),
		}
		s.Top, s.Freq = col.topValue()
		if col.Kind() == KindNumber {
			col.numericSummary(&s)
		}
		out[i] = s
	}
	return out
}

// topValue returns the most frequent non-empty value and its count.
// Ties resolve to the smallest value so the result is deterministic.
func (c *Column) topValue() (string, int) {
	top, freq := "", 0
	for value, bm := range c.index() {
		n := int(bm.GetCardinality())
		if n > freq || (n == freq && value < top) {
			top, freq = value, n
		}
	}
	return top, freq
}

func (c *Column) numericSummary(s *ColumnSummary) {
	count := 0
	sum := 0.0
	minV := math.Inf(1)
	maxV := math.Inf(-1)
	for i := range c.cells {
		v, ok := c.Number(i)
		if !ok {
			continue
		}
		count++
		sum += v
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	if count == 0 {
		return
	}

	mean := sum / float64(count)
	s.Mean = &mean
	s.Min = &minV
	s.Max = &maxV

	// Sample standard deviation (ddof=1), undefined below two values.
	if count < 2 {
		return
	}
	sq := 0.0
	for i := range c.cells {
		if v, ok := c.Number(i); ok {
			d := v - mean
			sq += d * d
		}
	}
	std := math.Sqrt(sq / float64(count-1))
	s.Std = &std
}
