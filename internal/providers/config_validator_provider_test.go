package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pdistats/internal/structures"
)

func validConfig() *structures.Config {
	return &structures.Config{
		WebServer: structures.Server{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Catalog: structures.CatalogConfig{
			DataDir:          "/var/lib/pdistats/data",
			PreviewRows:      10,
			MaxSearchResults: 1000,
		},
		Snapshot: structures.SnapshotConfig{
			FilePath:     "/tmp/pdistats.dat",
			SaveInterval: 30 * time.Second,
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_EmptyHost(t *testing.T) {
	c := validConfig()
	c.WebServer.Host = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ZeroPort(t *testing.T) {
	c := validConfig()
	c.WebServer.Port = 0
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_EmptyDataDir(t *testing.T) {
	c := validConfig()
	c.Catalog.DataDir = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_EmptyLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_InvalidLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = "verbose"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ValidSource(t *testing.T) {
	c := validConfig()
	c.Sources = []structures.SourceConfig{
		{Name: "pdi_robos", URL: "https://datos.gob.cl/api/action/datastore_search?resource_id=x"},
	}
	v := NewCnfValidator(c)
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_SourceMissingName(t *testing.T) {
	c := validConfig()
	c.Sources = []structures.SourceConfig{
		{URL: "https://datos.gob.cl/x"},
	}
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_SourceBadName(t *testing.T) {
	c := validConfig()
	c.Sources = []structures.SourceConfig{
		{Name: "has spaces", URL: "https://datos.gob.cl/x"},
	}
	v := NewCnfValidator(c)
	err := v.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "has spaces")
}

func TestConfigValidator_SourceBadURL(t *testing.T) {
	c := validConfig()
	c.Sources = []structures.SourceConfig{
		{Name: "pdi_robos", URL: "not a url"},
	}
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}
