package cfg

import "time"

// Settings is the resolved runtime configuration for the serving
// process after file, environment, and defaults are merged.
type Settings struct {
	ListenAddr      string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
	StreamEnabled   bool

	ArtifactsDir          string
	ArtifactsBaseURL      string
	ArtifactsCachePath    string
	ArtifactsFetchTimeout time.Duration

	KafkaBrokers     []string
	KafkaTopic       string
	EmitterQueueSize int

	LogLevel string
}

// EmitterEnabled reports whether prediction events should be published.
// The emitter is off unless brokers are configured.
func (s *Settings) EmitterEnabled() bool {
	return len(s.KafkaBrokers) > 0
}

// ConfigFile mirrors the YAML configuration layout.
type ConfigFile struct {
	Server struct {
		ListenAddr      string   `yaml:"listen_addr"`
		AllowedOrigins  []string `yaml:"allowed_origins"`
		ShutdownTimeout string   `yaml:"shutdown_timeout"`
		StreamEnabled   *bool    `yaml:"stream_enabled"`
	} `yaml:"server"`

	Artifacts struct {
		Dir          string `yaml:"dir"`
		BaseURL      string `yaml:"base_url"`
		CachePath    string `yaml:"cache_path"`
		FetchTimeout string `yaml:"fetch_timeout"`
	} `yaml:"artifacts"`

	Emitter struct {
		Brokers   []string `yaml:"brokers"`
		Topic     string   `yaml:"topic"`
		QueueSize int      `yaml:"queue_size"`
	} `yaml:"emitter"`

	System struct {
		LogLevel string `yaml:"log_level"`
	} `yaml:"system"`
}
