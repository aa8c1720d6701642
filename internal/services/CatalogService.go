package services

import (
	"context"
	"fmt"

	"go.uber.org/atomic"

	"pdistats/internal/dataset/interfaces"
	"pdistats/internal/models"
	"pdistats/internal/structures"
)

// DefaultDataset is assumed when a request names no dataset.
const DefaultDataset = "pdi_estadisticas"

type CatalogServiceInterface interface {
	PutDataset(ds *models.Dataset)
	GetDataset(name string) (*models.Dataset, error)
	ListDatasets() []models.DatasetInfo
	DatasetCount() int
	TotalRows() int
	GetSnapshot() *models.CatalogSnapshot
	SetReady(ready bool)
	Ready() bool
	SetRefreshError(msg string)
	RefreshError() string

	Schema(dataset string) ([]models.ColumnSchema, error)
	Rows(req *RowsRequest) (*TablePage, error)
	Search(req *SearchRequest) (*TablePage, error)
	Summary(dataset string) ([]models.ColumnSummary, error)
	TopN(req *AggregateRequest) ([]models.GroupTotal, error)
	Ranking(req *AggregateRequest) ([]models.GroupTotal, error)
	Series(req *SeriesRequest) ([]models.SeriesPoint, error)
	ExportRows(req *ExportRequest) (*models.Table, [][]string, error)
	FetchDataset(ctx context.Context, req *FetchRequest) (*models.Dataset, error)
}

// CatalogService fronts the dataset store for controllers, scheduler and
// metrics. Query methods validate their request, resolve the dataset and
// delegate to the table.
type CatalogService struct {
	store        *models.DatasetStore
	conf         *structures.Config
	fetcher      interfaces.FetcherInterface
	ready        atomic.Bool
	refreshError atomic.String
}

func NewCatalogService(conf *structures.Config, fetcher interfaces.FetcherInterface) CatalogServiceInterface {
	return &CatalogService{
		store:   models.NewDatasetStore(),
		conf:    conf,
		fetcher: fetcher,
	}
}

func (cs *CatalogService) PutDataset(ds *models.Dataset) {
	cs.store.Put(ds)
}

func (cs *CatalogService) GetDataset(name string) (*models.Dataset, error) {
	if ds, ok := cs.store.Get(name); ok {
		return ds, nil
	}
	return nil, fmt.Errorf("%w: %s", models.ErrUnknownDataset, name)
}

func (cs *CatalogService) ListDatasets() []models.DatasetInfo {
	return cs.store.List()
}

func (cs *CatalogService) DatasetCount() int {
	return cs.store.Len()
}

func (cs *CatalogService) TotalRows() int {
	return cs.store.TotalRows()
}

func (cs *CatalogService) GetSnapshot() *models.CatalogSnapshot {
	return cs.store.Snapshot()
}

func (cs *CatalogService) SetReady(ready bool) {
	cs.ready.Store(ready)
}

func (cs *CatalogService) Ready() bool {
	return cs.ready.Load()
}

func (cs *CatalogService) SetRefreshError(msg string) {
	cs.refreshError.Store(msg)
}

func (cs *CatalogService) RefreshError() string {
	return cs.refreshError.Load()
}

func (cs *CatalogService) Schema(dataset string) ([]models.ColumnSchema, error) {
	ds, err := cs.GetDataset(dataset)
	if err != nil {
		return nil, err
	}
	return ds.Table.Schema(), nil
}

func (cs *CatalogService) Rows(req *RowsRequest) (*TablePage, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	ds, err := cs.GetDataset(req.Dataset)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = cs.conf.Catalog.PreviewRows
	}
	if max := cs.conf.Catalog.MaxSearchResults; limit > max {
		limit = max
	}

	t := ds.Table
	return &TablePage{
		Header: t.Header(),
		Rows:   t.RowsPage(req.Offset, limit),
		Total:  t.Rows(),
	}, nil
}

func (cs *CatalogService) Search(req *SearchRequest) (*TablePage, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	ds, err := cs.GetDataset(req.Dataset)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if max := cs.conf.Catalog.MaxSearchResults; limit <= 0 || limit > max {
		limit = max
	}

	result, err := ds.Table.Search(req.Column, req.Query, limit)
	if err != nil {
		return nil, err
	}
	return &TablePage{
		Header: ds.Table.Header(),
		Rows:   result.Rows,
		Total:  result.Total,
	}, nil
}

func (cs *CatalogService) Summary(dataset string) ([]models.ColumnSummary, error) {
	ds, err := cs.GetDataset(dataset)
	if err != nil {
		return nil, err
	}
	return ds.Table.Describe(), nil
}

func (cs *CatalogService) TopN(req *AggregateRequest) ([]models.GroupTotal, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	ds, err := cs.GetDataset(req.Dataset)
	if err != nil {
		return nil, err
	}

	n := req.N
	if n <= 0 {
		n = 10
	}
	return ds.Table.TopN(req.GroupBy, req.Value, n)
}

func (cs *CatalogService) Ranking(req *AggregateRequest) ([]models.GroupTotal, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	ds, err := cs.GetDataset(req.Dataset)
	if err != nil {
		return nil, err
	}
	return ds.Table.Ranking(req.GroupBy, req.Value)
}

func (cs *CatalogService) Series(req *SeriesRequest) ([]models.SeriesPoint, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	ds, err := cs.GetDataset(req.Dataset)
	if err != nil {
		return nil, err
	}

	t := ds.Table
	if req.FilterColumn == "" {
		return t.SeriesBy(req.Bucket, req.Value, nil)
	}
	scope, err := t.FilterEq(req.FilterColumn, req.FilterValue)
	if err != nil {
		return nil, err
	}
	return t.SeriesBy(req.Bucket, req.Value, scope)
}

// ExportRows materializes a CSV download: the full dataset for an empty
// query, null cells and all, otherwise the rows matching the column
// search. The search result limit does not apply; a download is complete.
func (cs *CatalogService) ExportRows(req *ExportRequest) (*models.Table, [][]string, error) {
	if err := validateRequest(req); err != nil {
		return nil, nil, err
	}
	ds, err := cs.GetDataset(req.Dataset)
	if err != nil {
		return nil, nil, err
	}

	t := ds.Table
	if req.Query == "" {
		return t, t.RowsPage(0, t.Rows()), nil
	}
	if req.Column == "" {
		return nil, nil, fmt.Errorf("%w: column is required when query is set", ErrValidation)
	}
	result, err := t.Search(req.Column, req.Query, 0)
	if err != nil {
		return nil, nil, err
	}
	return t, result.Rows, nil
}

// FetchDataset pulls a remote source on demand and registers it in the
// catalog, replacing any dataset with the same name.
func (cs *CatalogService) FetchDataset(ctx context.Context, req *FetchRequest) (*models.Dataset, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	src := structures.SourceConfig{
		Name:        req.Name,
		URL:         req.URL,
		RecordsPath: req.RecordsPath,
		Limit:       req.Limit,
	}
	table, err := cs.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, err)
	}

	ds := models.NewDataset(req.Name, models.SourceUpload, req.URL, table)
	cs.PutDataset(ds)
	return ds, nil
}
