package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pdistats/internal/models"
	"pdistats/internal/providers"
	"pdistats/internal/structures"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVLoader builds datasets from the CSV files in the configured data
// directory. One bad file never takes the catalog down: failures are
// logged and the file is skipped.
type CSVLoader struct {
	conf   *structures.Config
	logger providers.Logger
}

func NewCSVLoader(conf *structures.Config, logger providers.Logger) *CSVLoader {
	return &CSVLoader{
		conf:   conf,
		logger: logger,
	}
}

// LoadDir loads every *.csv under catalog.dataDir. A missing directory is
// not an error, just an empty catalog.
func (l *CSVLoader) LoadDir() []*models.Dataset {
	dir := l.conf.Catalog.DataDir
	if _, err := os.Stat(dir); err != nil {
		l.logger.Warnf(providers.TypeSync, "Data directory %s is not readable: %s", dir, err)
		return nil
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		l.logger.Errorf(providers.TypeSync, "Scanning %s failed: %s", dir, err)
		return nil
	}

	datasets := make([]*models.Dataset, 0, len(paths))
	for _, path := range paths {
		ds, err := l.LoadFile(path)
		if err != nil {
			l.logger.Errorf(providers.TypeSync, "Skipping %s: %s", path, err)
			continue
		}
		l.logger.Infof(providers.TypeSync, "Loaded %s: %d rows, %d columns", ds.Name, ds.Table.Rows(), len(ds.Table.Columns()))
		datasets = append(datasets, ds)
	}
	return datasets
}

// LoadFile parses a single CSV file into a dataset named after the file.
// The delimiter is sniffed from the header line.
func (l *CSVLoader) LoadFile(path string) (*models.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(firstLine(data))

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no header row")
	}

	table, err := models.NewTable(records[0], records[1:])
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return models.NewDataset(name, models.SourceLocal, path, table), nil
}

func firstLine(data []byte) []byte {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return data[:i]
	}
	return data
}

// sniffDelimiter picks the candidate separator occurring most often in the
// header line, outside quoted sections. Chilean portals ship both comma
// and semicolon files.
func sniffDelimiter(line []byte) rune {
	counts := make(map[rune]int)
	inQuotes := false
	for _, r := range string(line) {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}
		switch r {
		case ',', ';', '\t', '|':
			counts[r]++
		}
	}

	best := ','
	bestCount := counts[',']
	for _, candidate := range []rune{';', '\t', '|'} {
		if counts[candidate] > bestCount {
			best = candidate
			bestCount = counts[candidate]
		}
	}
	return best
}
