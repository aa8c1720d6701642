package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/spf13/cast"
)

// GroupTotal is one group-by bucket: a distinct group value and the sum of
// the value column over its rows.
type GroupTotal struct {
	Key   string  `json:"key"`
	Total float64 `json:"total"`
}

// SeriesPoint is one bucket of a time-like series.
type SeriesPoint struct {
	Bucket string  `json:"bucket"`
	Total  float64 `json:"total"`
}

// GroupSum sums valueCol per distinct groupCol value, optionally restricted
// to the rows in scope (nil means all rows). Null group keys are dropped and
// null values contribute nothing, matching pandas groupby().sum(). Results
// come back in ascending key order.
func (t *Table) GroupSum(groupCol, valueCol string, scope *roaring.Bitmap) ([]GroupTotal, error) {
	gcol, err := t.Column(groupCol)
	if err != nil {
		return nil, err
	}
	vcol, err := t.numericColumn(valueCol)
	if err != nil {
		return nil, err
	}

	groups := gcol.Groups()
	totals := make([]GroupTotal, 0, len(groups))
	for key, bm := range groups {
		if scope != nil {
			bm = roaring.And(bm, scope)
			if bm.IsEmpty() {
				continue
			}
		}
		totals = append(totals, GroupTotal{Key: key, Total: vcol.SumOver(bm)})
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Key < totals[j].Key
	})
	return totals, nil
}

// Ranking is GroupSum ordered by total, largest first. Ties break on key.
func (t *Table) Ranking(groupCol, valueCol string) ([]GroupTotal, error) {
	totals, err := t.GroupSum(groupCol, valueCol, nil)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total > totals[j].Total
	})
	return totals, nil
}

// TopN returns the n largest groups of Ranking. Non-positive n means all.
func (t *Table) TopN(groupCol, valueCol string, n int) ([]GroupTotal, error) {
	totals, err := t.Ranking(groupCol, valueCol)
	if err != nil {
		return nil, err
	}
	if n > 0 && n < len(totals) {
		totals = totals[:n]
	}
	return totals, nil
}

// SeriesBy sums valueCol per bucketCol value in chronological bucket order:
// numeric buckets sort numerically, time buckets by parsed time, anything
// else lexically. scope optionally restricts the rows (nil means all).
func (t *Table) SeriesBy(bucketCol, valueCol string, scope *roaring.Bitmap) ([]SeriesPoint, error) {
	totals, err := t.GroupSum(bucketCol, valueCol, scope)
	if err != nil {
		return nil, err
	}
	bcol, _ := t.Column(bucketCol)

	points := make([]SeriesPoint, len(totals))
	for i, gt := range totals {
		points[i] = SeriesPoint{Bucket: gt.Key, Total: gt.Total}
	}
	sort.SliceStable(points, func(i, j int) bool {
		return bucketLess(bcol, points[i].Bucket, points[j].Bucket)
	})
	return points, nil
}

func bucketLess(col *Column, a, b string) bool {
	switch col.Kind() {
	case KindNumber:
		// Group keys are non-empty cells of a numeric column, so they parse.
		return cast.ToFloat64(strings.TrimSpace(a)) < cast.ToFloat64(strings.TrimSpace(b))
	case KindTime:
		ta, errA := time.Parse(col.layout, strings.TrimSpace(a))
		tb, errB := time.Parse(col.layout, strings.TrimSpace(b))
		if errA == nil && errB == nil {
			return ta.Before(tb)
		}
	}
	return a < b
}

func (t *Table) numericColumn(name string) (*Column, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if col.Kind() != KindNumber {
		return nil, fmt.Errorf("%w: %s", ErrNotNumeric, name)
	}
	return col, nil
}
