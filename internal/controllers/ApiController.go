package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"pdistats/internal/models"
	"pdistats/internal/providers"
	"pdistats/internal/services"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger  providers.Logger
	service services.CatalogServiceInterface
	cache   providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, service services.CatalogServiceInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		cache:   cache,
	}
}

func getDataset(r *http.Request) string {
	ds := r.URL.Query().Get("ds")
	if ds == "" {
		return services.DefaultDataset
	}
	return ds
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrUnknownDataset):
		return http.StatusNotFound
	case errors.Is(err, models.ErrUnknownColumn),
		errors.Is(err, models.ErrNotNumeric),
		errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (ac *ApiController) writeError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		ac.logger.Errorf(providers.TypeGet, "Request failed: %s", err)
	}

	body, _ := json.Marshal(map[string]string{"error": err.Error()})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (ac *ApiController) respondJSON(w http.ResponseWriter, status int, result any) {
	body, err := json.Marshal(result)
	if err != nil {
		ac.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// datasetKey builds a response cache key bound to the dataset's load
// version. A reload changes the version, so stale entries are simply never
// looked up again and expire on TTL.
func (ac *ApiController) datasetKey(op, name string, params ...string) (string, error) {
	ds, err := ac.service.GetDataset(name)
	if err != nil {
		return "", err
	}
	key := op + ":" + name + "@" + ds.Version
	if len(params) > 0 {
		key += ":" + strings.Join(params, ":")
	}
	return key, nil
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		ac.writeError(w, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		ac.writeError(w, err)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// GetDatasets lists the catalog. Always fresh: the listing is the one
// response that must reflect a load immediately.
func (ac *ApiController) GetDatasets(w http.ResponseWriter, r *http.Request) {
	ac.respondJSON(w, http.StatusOK, ac.service.ListDatasets())
}

func (ac *ApiController) GetSchema(w http.ResponseWriter, r *http.Request) {
	name := getDataset(r)
	key, err := ac.datasetKey("schema", name)
	if err != nil {
		ac.writeError(w, err)
		return
	}
	ac.serveFromCacheOrCompute(w, key, func() (any, error) {
		return ac.service.Schema(name)
	})
}

func (ac *ApiController) GetRows(w http.ResponseWriter, r *http.Request) {
	name := getDataset(r)
	q := r.URL.Query()
	key, err := ac.datasetKey("rows", name, q.Get("offset"), q.Get("limit"))
	if err != nil {
		ac.writeError(w, err)
		return
	}
	ac.serveFromCacheOrCompute(w, key, func() (any, error) {
		return ac.service.Rows(&services.RowsRequest{
			Dataset: name,
			Offset:  atoiDefault(q.Get("offset"), 0),
			Limit:   atoiDefault(q.Get("limit"), 0),
		})
	})
}

func (ac *ApiController) SearchRows(w http.ResponseWriter, r *http.Request) {
	name := getDataset(r)
	q := r.URL.Query()
	key, err := ac.datasetKey("search", name, q.Get("col"), q.Get("limit"), q.Get("q"))
	if err != nil {
		ac.writeError(w, err)
		return
	}
	ac.serveFromCacheOrCompute(w, key, func() (any, error) {
		return ac.service.Search(&services.SearchRequest{
			Dataset: name,
			Column:  q.Get("col"),
			Query:   q.Get("q"),
			Limit:   atoiDefault(q.Get("limit"), 0),
		})
	})
}

func (ac *ApiController) GetSummary(w http.ResponseWriter, r *http.Request) {
	name := getDataset(r)
	key, err := ac.datasetKey("summary", name)
	if err != nil {
		ac.writeError(w, err)
		return
	}
	ac.serveFromCacheOrCompute(w, key, func() (any, error) {
		return ac.service.Summary(name)
	})
}

func (ac *ApiController) GetTop(w http.ResponseWriter, r *http.Request) {
	name := getDataset(r)
	q := r.URL.Query()
	key, err := ac.datasetKey("top", name, q.Get("by"), q.Get("value"), q.Get("n"))
	if err != nil {
		ac.writeError(w, err)
		return
	}
	ac.serveFromCacheOrCompute(w, key, func() (any, error) {
		return ac.service.TopN(&services.AggregateRequest{
			Dataset: name,
			GroupBy: q.Get("by"),
			Value:   q.Get("value"),
			N:       atoiDefault(q.Get("n"), 0),
		})
	})
}

func (ac *ApiController) GetRanking(w http.ResponseWriter, r *http.Request) {
	name := getDataset(r)
	q := r.URL.Query()
	key, err := ac.datasetKey("ranking", name, q.Get("by"), q.Get("value"))
	if err != nil {
		ac.writeError(w, err)
		return
	}
	ac.serveFromCacheOrCompute(w, key, func() (any, error) {
		return ac.service.Ranking(&services.AggregateRequest{
			Dataset: name,
			GroupBy: q.Get("by"),
			Value:   q.Get("value"),
		})
	})
}

func (ac *ApiController) GetSeries(w http.ResponseWriter, r *http.Request) {
	name := getDataset(r)
	q := r.URL.Query()
	key, err := ac.datasetKey("series", name, q.Get("bucket"), q.Get("value"), q.Get("col"), q.Get("eq"))
	if err != nil {
		ac.writeError(w, err)
		return
	}
	ac.serveFromCacheOrCompute(w, key, func() (any, error) {
		return ac.service.Series(&services.SeriesRequest{
			Dataset:      name,
			Bucket:       q.Get("bucket"),
			Value:        q.Get("value"),
			FilterColumn: q.Get("col"),
			FilterValue:  q.Get("eq"),
		})
	})
}

// ExportCSV streams a CSV download, bypassing the response cache. The
// filtered export keeps the filename the dashboard users know.
func (ac *ApiController) ExportCSV(w http.ResponseWriter, r *http.Request) {
	name := getDataset(r)
	q := r.URL.Query()
	req := &services.ExportRequest{
		Dataset: name,
		Column:  q.Get("col"),
		Query:   q.Get("q"),
	}

	table, rows, err := ac.service.ExportRows(req)
	if err != nil {
		ac.writeError(w, err)
		return
	}

	filename := name + ".csv"
	if req.Query != "" {
		filename = "resultados_filtrados.csv"
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := table.WriteCSV(w, rows); err != nil {
		// The response is already streaming, log is all that is left.
		ac.logger.Errorf(providers.TypeGet, "Export of %s failed: %s", name, err)
	}
}

// FetchDataset loads a remote source on demand and answers with the
// resulting catalog entry.
func (ac *ApiController) FetchDataset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload services.FetchRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		ac.writeError(w, services.ErrValidation)
		return
	}

	ds, err := ac.service.FetchDataset(r.Context(), &payload)
	if err != nil {
		ac.writeError(w, err)
		return
	}

	ac.logger.Infof(providers.TypePost, "Fetched dataset %s: %d rows", ds.Name, ds.Table.Rows())
	ac.respondJSON(w, http.StatusCreated, ds.Info())
}
