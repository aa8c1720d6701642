package models

import (
	"time"

	"github.com/google/uuid"
)

type SourceType string

const (
	SourceLocal  SourceType = "local"
	SourceRemote SourceType = "remote"
	SourceUpload SourceType = "upload"
)

// Dataset binds a table to its provenance. Version changes on every load,
// which is what keys cached responses to the data they were computed from.
type Dataset struct {
	Name      string
	Source    SourceType
	SourceRef string // file path or URL
	Table     *Table
	LoadedAt  time.Time
	Version   string
}

func NewDataset(name string, source SourceType, sourceRef string, table *Table) *Dataset {
	return &Dataset{
		Name:      name,
		Source:    source,
		SourceRef: sourceRef,
		Table:     table,
		LoadedAt:  time.Now(),
		Version:   uuid.NewString(),
	}
}

// DatasetInfo is the catalog listing shape.
type DatasetInfo struct {
	Name     string     `json:"name"`
	Source   SourceType `json:"source"`
	Rows     int        `json:"rows"`
	Columns  int        `json:"columns"`
	LoadedAt time.Time  `json:"loaded_at"`
}

func (d *Dataset) Info() DatasetInfo {
	return DatasetInfo{
		Name:     d.Name,
		Source:   d.Source,
		Rows:     d.Table.Rows(),
		Columns:  len(d.Table.Columns()),
		LoadedAt: d.LoadedAt,
	}
}
