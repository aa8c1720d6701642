package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"pdistats/internal/dataset/interfaces"
	"pdistats/internal/models"
	"pdistats/internal/providers"
	"pdistats/internal/services"
)

// SnapshotManager persists the fetched part of the catalog as a
// zstd-compressed JSON envelope, so remote data survives restarts when the
// portal is unreachable. Writes are atomic: tmp file, fsync, rename.
type SnapshotManager struct {
	service    services.CatalogServiceInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewSnapshotManager(compressor interfaces.CompressorInterface, service services.CatalogServiceInterface, logger providers.Logger) *SnapshotManager {
	return &SnapshotManager{
		compressor: compressor,
		service:    service,
		logger:     logger,
	}
}

func (m *SnapshotManager) SaveToFile(fileName string) error {
	snapshot := m.service.GetSnapshot()

	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	data, err := m.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(fileName); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (m *SnapshotManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressed, err := m.compressor.Decompress(data)
	if err != nil {
		return err
	}

	var snapshot models.CatalogSnapshot
	if err := json.Unmarshal(decompressed, &snapshot); err != nil {
		return err
	}
	if snapshot.Version != models.SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snapshot.Version)
	}

	for _, ds := range snapshot.Datasets {
		if _, err := m.service.GetDataset(ds.Name); err == nil {
			m.logger.Infof(providers.TypeApp, "Dataset %s already loaded, snapshot copy ignored", ds.Name)
			continue
		}
		restored, err := models.RestoreDataset(ds)
		if err != nil {
			m.logger.Warnf(providers.TypeApp, "Skipping snapshot dataset %s: %s", ds.Name, err)
			continue
		}
		m.service.PutDataset(restored)
	}
	return nil
}

func (m *SnapshotManager) Close() {
	m.compressor.Close()
}
