package models

import "time"

const SnapshotVersion = 1

// DatasetSnapshot is the persisted form of one fetched dataset: the
// normalized header plus raw rows. Types are re-inferred on restore.
type DatasetSnapshot struct {
	Name      string     `json:"name"`
	Source    SourceType `json:"source"`
	SourceRef string     `json:"source_ref"`
	Header    []string   `json:"header"`
	Rows      [][]string `json:"rows"`
	FetchedAt time.Time  `json:"fetched_at"`
}

// CatalogSnapshot is the persistence envelope with an explicit version
// field. Only fetched datasets are persisted; local CSVs reload from disk.
type CatalogSnapshot struct {
	Version  int               `json:"version"`
	SavedAt  time.Time         `json:"saved_at"`
	Datasets []DatasetSnapshot `json:"datasets"`
}

// Snapshot captures every remote and upload dataset for persistence.
func (s *DatasetStore) Snapshot() *CatalogSnapshot {
	datasets := s.BySource(SourceRemote, SourceUpload)

	snap := &CatalogSnapshot{
		Version:  SnapshotVersion,
		SavedAt:  time.Now(),
		Datasets: make([]DatasetSnapshot, 0, len(datasets)),
	}
	for _, ds := range datasets {
		snap.Datasets = append(snap.Datasets, DatasetSnapshot{
			Name:      ds.Name,
			Source:    ds.Source,
			SourceRef: ds.SourceRef,
			Header:    ds.Table.Header(),
			Rows:      ds.Table.RowsPage(0, ds.Table.Rows()),
			FetchedAt: ds.LoadedAt,
		})
	}
	return snap
}

// RestoreDataset rebuilds a dataset from its snapshot. The original fetch
// time is kept; the version id is fresh, as for any load.
func RestoreDataset(snap DatasetSnapshot) (*Dataset, error) {
	table, err := NewTable(snap.Header, snap.Rows)
	if err != nil {
		return nil, err
	}
	ds := NewDataset(snap.Name, snap.Source, snap.SourceRef, table)
	if !snap.FetchedAt.IsZero() {
		ds.LoadedAt = snap.FetchedAt
	}
	return ds, nil
}
