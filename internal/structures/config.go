package structures

import "time"

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type CatalogConfig struct {
	DataDir          string `yaml:"dataDir" validate:"required|unixPath"`
	PreviewRows      int    `yaml:"previewRows"`
	MaxSearchResults int    `yaml:"maxSearchResults"`
}

// SourceConfig describes one remote CKAN-style dataset the refresher keeps
// in sync. RecordsPath is a dotted path to the record list inside the JSON
// body ("result.records" for datos.gob.cl); empty means auto-detect.
type SourceConfig struct {
	Name        string `yaml:"name" validate:"required|alphaDash"`
	URL         string `yaml:"url" validate:"required|fullUrl"`
	RecordsPath string `yaml:"recordsPath"`
	Limit       int    `yaml:"limit"`
}

type RefreshConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type SnapshotConfig struct {
	FilePath     string        `yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type FetchConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	MaxBodyBytes int64         `yaml:"maxBodyBytes"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	Catalog   CatalogConfig  `yaml:"catalog"`
	Sources   []SourceConfig `yaml:"sources"`
	Refresh   RefreshConfig  `yaml:"refresh"`
	WebServer Server         `yaml:"webServer"`
	Snapshot  SnapshotConfig `yaml:"snapshot"`
	Fetch     FetchConfig    `yaml:"fetch"`
	Logger    LoggerConfig   `yaml:"logger"`
	Cache     CacheConfig    `yaml:"cache"`
	Metrics   MetricsConfig  `yaml:"metrics"`
}
