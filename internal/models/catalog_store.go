package models

import (
	"sort"
	"sync"
)

// DatasetStore is the concurrent catalog. Loads build a complete Dataset
// first and swap it in under a short write lock, so readers never see a
// half-built table.
type DatasetStore struct {
	mu   sync.RWMutex
	data map[string]*Dataset
}

func NewDatasetStore() *DatasetStore {
	return &DatasetStore{
		data: make(map[string]*Dataset),
	}
}

func (s *DatasetStore) Put(ds *Dataset) {
	if ds == nil || ds.Name == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[ds.Name] = ds
}

func (s *DatasetStore) Get(name string) (*Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.data[name]
	return ds, ok
}

func (s *DatasetStore) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
}

func (s *DatasetStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// List returns catalog entries sorted by name.
func (s *DatasetStore) List() []DatasetInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]DatasetInfo, 0, len(s.data))
	for _, ds := range s.data {
		infos = append(infos, ds.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

func (s *DatasetStore) TotalRows() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, ds := range s.data {
		total += ds.Table.Rows()
	}
	return total
}

// BySource returns the datasets of the given provenances, sorted by name.
func (s *DatasetStore) BySource(sources ...SourceType) []*Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Dataset
	for _, ds := range s.data {
		for _, src := range sources {
			if ds.Source == src {
				out = append(out, ds)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}
