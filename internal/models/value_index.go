package models

import (
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// index maps each distinct non-empty raw cell value to the bitmap of row
// positions holding it. Null cells are never indexed, which gives filters
// and group-bys their NaN-dropping behavior for free. Columns are immutable,
// so the lazy build is done once and cached.
func (c *Column) index() map[string]*roaring.Bitmap {
	c.idxOnce.Do(func() {
		idx := make(map[string]*roaring.Bitmap)
		for i, cell := range c.cells {
			if cell == "" {
				continue
			}
			bm, ok := idx[cell]
			if !ok {
				bm = roaring.New()
				idx[cell] = bm
			}
			bm.Add(uint32(i))
		}
		c.idx = idx
	})
	return c.idx
}

// Bitmap returns the row positions whose raw cell equals value exactly.
// Never nil; unknown values yield an empty bitmap.
func (c *Column) Bitmap(value string) *roaring.Bitmap {
	if bm, ok := c.index()[value]; ok {
		return bm
	}
	return roaring.New()
}

// Groups returns the distinct→positions map backing group-by operations.
// Callers must not mutate the bitmaps.
func (c *Column) Groups() map[string]*roaring.Bitmap {
	return c.index()
}

// Unique returns the number of distinct non-empty values.
func (c *Column) Unique() int {
	return len(c.index())
}

// MatchSubstring returns the rows whose cell contains query, ignoring
// case. Matching runs over the distinct values instead of every cell, so
// categorical columns resolve in a handful of comparisons.
func (c *Column) MatchSubstring(query string) *roaring.Bitmap {
	query = strings.ToLower(query)
	out := roaring.New()
	for value, bm := range c.index() {
		if strings.Contains(strings.ToLower(value), query) {
			out.Or(bm)
		}
	}
	return out
}
