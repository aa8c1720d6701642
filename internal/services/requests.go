package services

import (
	"errors"
	"fmt"

	"github.com/gookit/validate"
)

var (
	// ErrValidation marks a request rejected before execution.
	ErrValidation = errors.New("invalid request")
	// ErrUpstream marks a failed fetch from a remote portal.
	ErrUpstream = errors.New("upstream fetch failed")
)

// RowsRequest is one page of the raw table view.
type RowsRequest struct {
	Dataset string `validate:"required"`
	Offset  int    `validate:"min:0"`
	Limit   int    `validate:"min:0"`
}

// SearchRequest is a substring search in one column. An empty query
// matches every non-null cell, which is what the export flow relies on.
type SearchRequest struct {
	Dataset string `validate:"required"`
	Column  string `validate:"required"`
	Query   string
	Limit   int `validate:"min:0"`
}

// AggregateRequest is a group-by-sum: totals of Value per distinct GroupBy.
type AggregateRequest struct {
	Dataset string `validate:"required"`
	GroupBy string `validate:"required"`
	Value   string `validate:"required"`
	N       int    `validate:"min:0"`
}

// SeriesRequest is a bucketed sum, optionally restricted to the rows where
// FilterColumn equals FilterValue exactly.
type SeriesRequest struct {
	Dataset      string `validate:"required"`
	Bucket       string `validate:"required"`
	Value        string `validate:"required"`
	FilterColumn string
	FilterValue  string
}

// ExportRequest is a CSV download: the whole dataset, or the rows matching
// a column search when Query is set.
type ExportRequest struct {
	Dataset string `validate:"required"`
	Column  string
	Query   string
}

// FetchRequest is the ad-hoc load of a remote source, the request body of
// POST /fetch.
type FetchRequest struct {
	Name        string `json:"name" validate:"required|alphaDash"`
	URL         string `json:"url" validate:"required|fullUrl"`
	RecordsPath string `json:"records_path"`
	Limit       int    `json:"limit" validate:"min:0"`
}

// TablePage is the JSON shape of both the rows and search endpoints.
// Total counts all matching rows, not just the returned page.
type TablePage struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
	Total  int        `json:"total"`
}

func validateRequest(req any) error {
	v := validate.Struct(req)
	if !v.Validate() {
		return fmt.Errorf("%w: %s", ErrValidation, v.Errors.One())
	}
	return nil
}
