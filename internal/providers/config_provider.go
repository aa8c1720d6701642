package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"pdistats/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "PDISTATS_LOG_LEVEL")
	viper.BindEnv("catalog.dataDir", "PDISTATS_DATA_DIR")
	viper.BindEnv("refresh.interval", "PDISTATS_REFRESH_INTERVAL")
	viper.BindEnv("snapshot.saveInterval", "PDISTATS_SAVE_INTERVAL")
	viper.BindEnv("cache.enabled", "PDISTATS_CACHE_ENABLED")
	viper.BindEnv("cache.size", "PDISTATS_CACHE_SIZE")

	viper.SetDefault("catalog.previewRows", 10)
	viper.SetDefault("catalog.maxSearchResults", 1000)
	viper.SetDefault("fetch.timeout", 10*time.Second)
	viper.SetDefault("fetch.maxBodyBytes", 32<<20)

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "PdiStatisticsDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
