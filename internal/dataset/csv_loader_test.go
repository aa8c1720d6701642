package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdistats/internal/models"
	"pdistats/internal/structures"
	"pdistats/internal/testutil"
)

func loaderConfig(dataDir string) *structures.Config {
	return &structures.Config{
		Catalog: structures.CatalogConfig{
			DataDir:          dataDir,
			PreviewRows:      50,
			MaxSearchResults: 1000,
		},
	}
}

func writeDataFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCSVLoader_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeDataFile(t, dir, "robos.csv", "Región,Delito,Cantidad\nMetropolitana,Robo,120\nValparaíso,Hurto,45\n")

	loader := NewCSVLoader(loaderConfig(dir), &testutil.MockLogger{})
	ds, err := loader.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "robos", ds.Name)
	assert.Equal(t, models.SourceLocal, ds.Source)
	assert.Equal(t, path, ds.SourceRef)
	assert.Equal(t, []string{"region", "delito", "cantidad"}, ds.Table.Header())
	assert.Equal(t, 2, ds.Table.Rows())
}

func TestCSVLoader_LoadFileSemicolon(t *testing.T) {
	dir := t.TempDir()
	path := writeDataFile(t, dir, "denuncias.csv", "region;delito;cantidad\nBiobío;Robo;12\n")

	loader := NewCSVLoader(loaderConfig(dir), &testutil.MockLogger{})
	ds, err := loader.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"region", "delito", "cantidad"}, ds.Table.Header())
	assert.Equal(t, []string{"Biobío", "Robo", "12"}, ds.Table.Row(0))
}

func TestCSVLoader_LoadFileBOM(t *testing.T) {
	dir := t.TempDir()
	path := writeDataFile(t, dir, "bom.csv", "\xEF\xBB\xBFregion,cantidad\nAysén,3\n")

	loader := NewCSVLoader(loaderConfig(dir), &testutil.MockLogger{})
	ds, err := loader.LoadFile(path)
	require.NoError(t, err)

	// Without BOM stripping the first header cell would be corrupted.
	assert.Equal(t, []string{"region", "cantidad"}, ds.Table.Header())
}

func TestCSVLoader_LoadFileHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	path := writeDataFile(t, dir, "empty.csv", "region,cantidad\n")

	loader := NewCSVLoader(loaderConfig(dir), &testutil.MockLogger{})
	ds, err := loader.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Table.Rows())
}

func TestCSVLoader_LoadFileEmpty(t *testing.T) {
	dir := t.TempDir()
	path := writeDataFile(t, dir, "blank.csv", "")

	loader := NewCSVLoader(loaderConfig(dir), &testutil.MockLogger{})
	_, err := loader.LoadFile(path)
	assert.Error(t, err)
}

func TestCSVLoader_LoadDir(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, "a.csv", "region,cantidad\nMaule,1\n")
	writeDataFile(t, dir, "b.csv", "region,cantidad\nÑuble,2\n")
	writeDataFile(t, dir, "notes.txt", "ignored")

	loader := NewCSVLoader(loaderConfig(dir), &testutil.MockLogger{})
	datasets := loader.LoadDir()
	require.Len(t, datasets, 2)
	assert.Equal(t, "a", datasets[0].Name)
	assert.Equal(t, "b", datasets[1].Name)
}

func TestCSVLoader_LoadDirSkipsBadFile(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, "good.csv", "region,cantidad\nMaule,1\n")
	writeDataFile(t, dir, "bad.csv", "a,b\n1,2,3\n")

	logger := &testutil.MockLogger{}
	loader := NewCSVLoader(loaderConfig(dir), logger)

	datasets := loader.LoadDir()
	require.Len(t, datasets, 1)
	assert.Equal(t, "good", datasets[0].Name)
	assert.Equal(t, 1, logger.CountLevel("error"))
}

func TestCSVLoader_LoadDirMissing(t *testing.T) {
	logger := &testutil.MockLogger{}
	loader := NewCSVLoader(loaderConfig("/nonexistent/data"), logger)

	assert.Empty(t, loader.LoadDir())
	assert.Equal(t, 1, logger.CountLevel("warn"))
}

func TestSniffDelimiter(t *testing.T) {
	cases := []struct {
		line string
		want rune
	}{
		{"a,b,c", ','},
		{"a;b;c", ';'},
		{"a\tb\tc", '\t'},
		{"a|b|c", '|'},
		{`"x;y",b`, ','}, // quoted section does not count
		{"single", ','},  // default
	}
	for _, c := range cases {
		assert.Equal(t, c.want, sniffDelimiter([]byte(c.line)), "line %q", c.line)
	}
}
