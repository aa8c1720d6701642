package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"pdistats/internal/dataset/interfaces"
	"pdistats/internal/models"
	"pdistats/internal/providers"
	"pdistats/internal/structures"
)

// The datos.gob.cl datastore_search response keeps its records here.
const defaultRecordsPath = "result.records"

// CKANClient fetches JSON record lists from open-data portals. The record
// list is located by a dotted path into the response object; without a
// configured path the CKAN default is tried first, then the first
// list-valued field.
type CKANClient struct {
	client *http.Client
	conf   *structures.Config
	logger providers.Logger
}

func NewCKANClient(conf *structures.Config, logger providers.Logger) interfaces.FetcherInterface {
	return &CKANClient{
		client: &http.Client{Timeout: conf.Fetch.Timeout},
		conf:   conf,
		logger: logger,
	}
}

func (c *CKANClient) Fetch(ctx context.Context, src structures.SourceConfig) (*models.Table, error) {
	target, err := buildURL(src)
	if err != nil {
		return nil, err
	}
	c.logger.Debugf(providers.TypeSync, "Fetching %s from %s", src.Name, target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s from %s", resp.Status, src.URL)
	}

	maxBody := c.conf.Fetch.MaxBodyBytes
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > maxBody {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", src.URL, maxBody)
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON from %s: %w", src.URL, err)
	}

	records, err := extractRecords(parsed, src.RecordsPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.URL, err)
	}
	return models.NewTableFromMaps(records)
}

func buildURL(src structures.SourceConfig) (string, error) {
	u, err := url.Parse(src.URL)
	if err != nil {
		return "", err
	}
	if src.Limit > 0 {
		q := u.Query()
		q.Set("limit", strconv.Itoa(src.Limit))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// extractRecords locates the record list. A configured path is strict;
// otherwise: body already a list, then the CKAN default path, then the
// first list-valued field in sorted key order.
func extractRecords(body any, path string) ([]map[string]any, error) {
	if path != "" {
		node, err := walkPath(body, path)
		if err != nil {
			return nil, err
		}
		return recordList(node)
	}

	if list, ok := body.([]any); ok {
		return recordList(list)
	}

	if node, err := walkPath(body, defaultRecordsPath); err == nil {
		if records, err := recordList(node); err == nil {
			return records, nil
		}
	}

	if obj, ok := body.(map[string]any); ok {
		keys := make([]string, 0, len(obj))
		for key := range obj {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if list, ok := obj[key].([]any); ok {
				return recordList(list)
			}
		}
	}

	return nil, fmt.Errorf("no record list found in response")
}

func walkPath(node any, path string) (any, error) {
	for _, segment := range strings.Split(path, ".") {
		obj, ok := node.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("path %q: segment %q is not an object", path, segment)
		}
		node, ok = obj[segment]
		if !ok {
			return nil, fmt.Errorf("path %q: segment %q not found", path, segment)
		}
	}
	return node, nil
}

func recordList(node any) ([]map[string]any, error) {
	list, ok := node.([]any)
	if !ok {
		return nil, fmt.Errorf("record node is not a list")
	}
	records := make([]map[string]any, len(list))
	for i, item := range list {
		record, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("record %d is not an object", i)
		}
		records[i] = record
	}
	return records, nil
}
