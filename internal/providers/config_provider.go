package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"railpulse/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "RAILPULSE_LOG_LEVEL")
	viper.BindEnv("sentiment.endpoint", "RAILPULSE_SENTIMENT_ENDPOINT")
	viper.BindEnv("sentiment.key", "RAILPULSE_SENTIMENT_KEY")
	viper.BindEnv("store.dsn", "RAILPULSE_STORE_DSN")
	viper.BindEnv("archive.accessKey", "RAILPULSE_ARCHIVE_ACCESS_KEY")
	viper.BindEnv("archive.secretKey", "RAILPULSE_ARCHIVE_SECRET_KEY")
	viper.BindEnv("cache.enabled", "RAILPULSE_CACHE_ENABLED")
	viper.BindEnv("cache.size", "RAILPULSE_CACHE_SIZE")

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

	if conf.Sentiment.BatchSize <= 0 || conf.Sentiment.BatchSize > 10 {
		conf.Sentiment.BatchSize = 10
	}
	if conf.Sentiment.Concurrency <= 0 {
		conf.Sentiment.Concurrency = 4
	}
	if conf.Alerts.ScoreThreshold <= 0 {
		conf.Alerts.ScoreThreshold = 2
	}
	if conf.Alerts.MinConfidence <= 0 {
		conf.Alerts.MinConfidence = 0.6
	}

	conf.AppName = "RailPulse"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
