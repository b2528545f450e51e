package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type SentimentConfig struct {
	Endpoint    string        `yaml:"endpoint" validate:"required|fullUrl"`
	Key         string        `yaml:"key"`
	Timeout     time.Duration `yaml:"timeout" validate:"required|min:1"`
	MaxRetries  int           `yaml:"maxRetries"`
	BatchSize   int           `yaml:"batchSize"`
	Concurrency int           `yaml:"concurrency"`
}

type StoreConfig struct {
	Backend string `yaml:"backend" validate:"required|in:memory,postgres"`
	DSN     string `yaml:"dsn"`
}

type ArchiveConfig struct {
	Backend      string        `yaml:"backend" validate:"required|in:fs,s3"`
	Container    string        `yaml:"container" validate:"required"`
	Dir          string        `yaml:"dir"`
	Bucket       string        `yaml:"bucket"`
	Region       string        `yaml:"region"`
	Endpoint     string        `yaml:"endpoint"`
	AccessKey    string        `yaml:"accessKey"`
	SecretKey    string        `yaml:"secretKey"`
	Compress     bool          `yaml:"compress"`
	SnapInterval time.Duration `yaml:"snapInterval"`
}

type AlertsConfig struct {
	ScoreThreshold int      `yaml:"scoreThreshold"`
	MinConfidence  float64  `yaml:"minConfidence"`
	Keywords       []string `yaml:"keywords"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
	TTL     int  `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server          `yaml:"webServer"`
	Sentiment SentimentConfig `yaml:"sentiment"`
	Store     StoreConfig     `yaml:"store"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Alerts    AlertsConfig    `yaml:"alerts"`
	Logger    LoggerConfig    `yaml:"logger"`
	Cache     CacheConfig     `yaml:"cache"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}
