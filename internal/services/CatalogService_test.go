package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdistats/internal/models"
	"pdistats/internal/services"
	"pdistats/internal/structures"
	"pdistats/internal/testutil"
)

func testConfig() *structures.Config {
	return &structures.Config{
		Catalog: structures.CatalogConfig{
			DataDir:          "data",
			PreviewRows:      3,
			MaxSearchResults: 4,
		},
	}
}

func newService(t *testing.T) (*services.CatalogService, *testutil.MockFetcher) {
	t.Helper()
	fetcher := &testutil.MockFetcher{}
	cs := services.NewCatalogService(testConfig(), fetcher).(*services.CatalogService)

	table, err := models.NewTable(
		[]string{"region", "delito", "ano", "cantidad"},
		[][]string{
			{"Metropolitana", "Robo", "2023", "120"},
			{"Valparaíso", "Hurto", "2023", "45"},
			{"Metropolitana", "Hurto", "2024", "60"},
			{"Biobío", "Robo", "2024", "15"},
			{"Maule", "Robo", "2024", "8"},
		},
	)
	require.NoError(t, err)
	cs.PutDataset(models.NewDataset(services.DefaultDataset, models.SourceLocal, "data/pdi_estadisticas.csv", table))
	return cs, fetcher
}

func TestCatalogService_GetDataset(t *testing.T) {
	cs, _ := newService(t)

	ds, err := cs.GetDataset(services.DefaultDataset)
	require.NoError(t, err)
	assert.Equal(t, services.DefaultDataset, ds.Name)

	_, err = cs.GetDataset("nope")
	assert.ErrorIs(t, err, models.ErrUnknownDataset)
}

func TestCatalogService_ReadyFlag(t *testing.T) {
	cs, _ := newService(t)
	assert.False(t, cs.Ready())
	cs.SetReady(true)
	assert.True(t, cs.Ready())
}

func TestCatalogService_RefreshError(t *testing.T) {
	cs, _ := newService(t)
	assert.Empty(t, cs.RefreshError())

	cs.SetRefreshError("robos: timeout")
	assert.Equal(t, "robos: timeout", cs.RefreshError())

	cs.SetRefreshError("")
	assert.Empty(t, cs.RefreshError())
}

func TestCatalogService_Schema(t *testing.T) {
	cs, _ := newService(t)

	schema, err := cs.Schema(services.DefaultDataset)
	require.NoError(t, err)
	require.Len(t, schema, 4)
	assert.Equal(t, "region", schema[0].Name)
	assert.Equal(t, "number", schema[3].Kind)

	_, err = cs.Schema("nope")
	assert.ErrorIs(t, err, models.ErrUnknownDataset)
}

func TestCatalogService_RowsDefaultsToPreview(t *testing.T) {
	cs, _ := newService(t)

	page, err := cs.Rows(&services.RowsRequest{Dataset: services.DefaultDataset})
	require.NoError(t, err)
	assert.Len(t, page.Rows, 3) // previewRows
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, []string{"region", "delito", "ano", "cantidad"}, page.Header)
}

func TestCatalogService_RowsCappedAtMax(t *testing.T) {
	cs, _ := newService(t)

	page, err := cs.Rows(&services.RowsRequest{Dataset: services.DefaultDataset, Limit: 999})
	require.NoError(t, err)
	assert.Len(t, page.Rows, 4) // maxSearchResults
}

func TestCatalogService_RowsOffset(t *testing.T) {
	cs, _ := newService(t)

	page, err := cs.Rows(&services.RowsRequest{Dataset: services.DefaultDataset, Offset: 4, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "Maule", page.Rows[0][0])
}

func TestCatalogService_RowsValidation(t *testing.T) {
	cs, _ := newService(t)

	_, err := cs.Rows(&services.RowsRequest{})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = cs.Rows(&services.RowsRequest{Dataset: services.DefaultDataset, Offset: -1})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestCatalogService_Search(t *testing.T) {
	cs, _ := newService(t)

	page, err := cs.Search(&services.SearchRequest{Dataset: services.DefaultDataset, Column: "delito", Query: "rob"})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Rows, 3)
}

func TestCatalogService_SearchCapsLimit(t *testing.T) {
	cs, _ := newService(t)

	page, err := cs.Search(&services.SearchRequest{Dataset: services.DefaultDataset, Column: "region", Query: "", Limit: 9999})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Len(t, page.Rows, 4) // capped at maxSearchResults
}

func TestCatalogService_SearchValidation(t *testing.T) {
	cs, _ := newService(t)

	_, err := cs.Search(&services.SearchRequest{Dataset: services.DefaultDataset})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = cs.Search(&services.SearchRequest{Dataset: services.DefaultDataset, Column: "comuna", Query: "x"})
	assert.ErrorIs(t, err, models.ErrUnknownColumn)
}

func TestCatalogService_Summary(t *testing.T) {
	cs, _ := newService(t)

	summaries, err := cs.Summary(services.DefaultDataset)
	require.NoError(t, err)
	require.Len(t, summaries, 4)
	assert.Equal(t, "region", summaries[0].Column)
	assert.Equal(t, 5, summaries[0].Count)
}

func TestCatalogService_TopNDefaultsToTen(t *testing.T) {
	cs, _ := newService(t)

	totals, err := cs.TopN(&services.AggregateRequest{Dataset: services.DefaultDataset, GroupBy: "delito", Value: "cantidad"})
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "Robo", totals[0].Key)
	assert.Equal(t, 143.0, totals[0].Total)
}

func TestCatalogService_TopNTruncates(t *testing.T) {
	cs, _ := newService(t)

	totals, err := cs.TopN(&services.AggregateRequest{Dataset: services.DefaultDataset, GroupBy: "region", Value: "cantidad", N: 2})
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "Metropolitana", totals[0].Key)
}

func TestCatalogService_Ranking(t *testing.T) {
	cs, _ := newService(t)

	totals, err := cs.Ranking(&services.AggregateRequest{Dataset: services.DefaultDataset, GroupBy: "region", Value: "cantidad"})
	require.NoError(t, err)
	require.Len(t, totals, 4)
	assert.Equal(t, "Metropolitana", totals[0].Key)
	assert.Equal(t, 180.0, totals[0].Total)
	assert.Equal(t, "Maule", totals[3].Key)
}

func TestCatalogService_RankingNotNumeric(t *testing.T) {
	cs, _ := newService(t)

	_, err := cs.Ranking(&services.AggregateRequest{Dataset: services.DefaultDataset, GroupBy: "region", Value: "delito"})
	assert.ErrorIs(t, err, models.ErrNotNumeric)
}

func TestCatalogService_Series(t *testing.T) {
	cs, _ := newService(t)

	points, err := cs.Series(&services.SeriesRequest{Dataset: services.DefaultDataset, Bucket: "ano", Value: "cantidad"})
	require.NoError(t, err)
	assert.Equal(t, []models.SeriesPoint{
		{Bucket: "2023", Total: 165},
		{Bucket: "2024", Total: 83},
	}, points)
}

func TestCatalogService_SeriesFiltered(t *testing.T) {
	cs, _ := newService(t)

	points, err := cs.Series(&services.SeriesRequest{
		Dataset:      services.DefaultDataset,
		Bucket:       "ano",
		Value:        "cantidad",
		FilterColumn: "delito",
		FilterValue:  "Robo",
	})
	require.NoError(t, err)
	assert.Equal(t, []models.SeriesPoint{
		{Bucket: "2023", Total: 120},
		{Bucket: "2024", Total: 23},
	}, points)
}

func TestCatalogService_SeriesUnknownFilterColumn(t *testing.T) {
	cs, _ := newService(t)

	_, err := cs.Series(&services.SeriesRequest{
		Dataset:      services.DefaultDataset,
		Bucket:       "ano",
		Value:        "cantidad",
		FilterColumn: "comuna",
		FilterValue:  "x",
	})
	assert.ErrorIs(t, err, models.ErrUnknownColumn)
}

func TestCatalogService_ExportRowsWholeDataset(t *testing.T) {
	cs, _ := newService(t)

	table, rows, err := cs.ExportRows(&services.ExportRequest{Dataset: services.DefaultDataset})
	require.NoError(t, err)
	assert.Equal(t, 5, len(rows)) // every row, no search cap
	assert.Equal(t, []string{"region", "delito", "ano", "cantidad"}, table.Header())
}

func TestCatalogService_ExportRowsFiltered(t *testing.T) {
	cs, _ := newService(t)

	_, rows, err := cs.ExportRows(&services.ExportRequest{Dataset: services.DefaultDataset, Column: "delito", Query: "hurto"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestCatalogService_ExportRowsQueryWithoutColumn(t *testing.T) {
	cs, _ := newService(t)

	_, _, err := cs.ExportRows(&services.ExportRequest{Dataset: services.DefaultDataset, Query: "hurto"})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestCatalogService_FetchDataset(t *testing.T) {
	cs, fetcher := newService(t)
	table, err := models.NewTable([]string{"region"}, [][]string{{"Los Lagos"}})
	require.NoError(t, err)
	fetcher.Tables = map[string]*models.Table{"nuevo": table}

	ds, err := cs.FetchDataset(context.Background(), &services.FetchRequest{
		Name: "nuevo",
		URL:  "https://datos.gob.cl/api/action/datastore_search?resource_id=x",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SourceUpload, ds.Source)
	assert.Equal(t, 1, ds.Table.Rows())

	// Registered in the catalog under its name.
	got, err := cs.GetDataset("nuevo")
	require.NoError(t, err)
	assert.Equal(t, ds.Version, got.Version)
}

func TestCatalogService_FetchDatasetUpstreamError(t *testing.T) {
	cs, fetcher := newService(t)
	fetcher.Err = errors.New("dial tcp: timeout")

	_, err := cs.FetchDataset(context.Background(), &services.FetchRequest{
		Name: "nuevo",
		URL:  "https://datos.gob.cl/x",
	})
	assert.ErrorIs(t, err, services.ErrUpstream)
}

func TestCatalogService_FetchDatasetValidation(t *testing.T) {
	cs, _ := newService(t)

	cases := []*services.FetchRequest{
		{URL: "https://datos.gob.cl/x"},             // missing name
		{Name: "nuevo"},                             // missing url
		{Name: "has spaces", URL: "https://x.cl/y"}, // not alphaDash
		{Name: "nuevo", URL: "not-a-url"},           // not a URL
	}
	for i, req := range cases {
		_, err := cs.FetchDataset(context.Background(), req)
		assert.ErrorIs(t, err, services.ErrValidation, "case %d", i)
	}
}

func TestCatalogService_GetSnapshotOnlyFetched(t *testing.T) {
	cs, fetcher := newService(t)
	table, err := models.NewTable([]string{"region"}, [][]string{{"Atacama"}})
	require.NoError(t, err)
	fetcher.Tables = map[string]*models.Table{"remoto": table}

	_, err = cs.FetchDataset(context.Background(), &services.FetchRequest{Name: "remoto", URL: "https://datos.gob.cl/x"})
	require.NoError(t, err)

	snap := cs.GetSnapshot()
	require.Len(t, snap.Datasets, 1)
	assert.Equal(t, "remoto", snap.Datasets[0].Name)
}

func TestCatalogService_Counts(t *testing.T) {
	cs, _ := newService(t)
	assert.Equal(t, 1, cs.DatasetCount())
	assert.Equal(t, 5, cs.TotalRows())

	infos := cs.ListDatasets()
	require.Len(t, infos, 1)
	assert.Equal(t, services.DefaultDataset, infos[0].Name)
}
