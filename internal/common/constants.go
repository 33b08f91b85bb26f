package common

// Environment variable keys
const (
	EnvConfigFile            = "CONFIG_FILE"
	EnvListenAddr            = "LISTEN_ADDR"
	EnvAllowedOrigins        = "ALLOWED_ORIGINS"
	EnvShutdownTimeout       = "SHUTDOWN_TIMEOUT"
	EnvArtifactsDir          = "ARTIFACTS_DIR"
	EnvArtifactsBaseURL      = "ARTIFACTS_BASE_URL"
	EnvArtifactsCachePath    = "ARTIFACTS_CACHE_PATH"
	EnvArtifactsFetchTimeout = "ARTIFACTS_FETCH_TIMEOUT"
	EnvKafkaBrokers          = "KAFKA_BROKERS"
	EnvKafkaTopic            = "KAFKA_TOPIC"
	EnvEmitterQueueSize      = "EMITTER_QUEUE_SIZE"
	EnvStreamEnabled         = "STREAM_ENABLED"
	EnvLogLevel              = "LOG_LEVEL"
)

// Configuration defaults
const (
	DefaultListenAddr      = ":8000"
	DefaultArtifactsDir    = "artifacts"
	DefaultKafkaTopic      = "nox.predictions"
	DefaultLogLevel        = "info"
	DefaultQueueSize       = 256
	DefaultShutdownSeconds = 10
	DefaultFetchSeconds    = 15
)

// Default CORS allow-list. Matches the deployed dashboard origins.
var DefaultAllowedOrigins = []string{
	"http://localhost:8080",
	"http://127.0.0.1:8080",
	"https://turbine-nox-wise.vercel.app",
}

// Common error messages
const (
	ErrMsgListenAddrRequired = "listen address is required"
	ErrMsgArtifactSource     = "an artifact source is required (artifacts dir or base URL)"
	ErrMsgCacheNeedsBaseURL  = "artifact cache path is only valid with an artifact base URL"
	ErrMsgWildcardOrigin     = "wildcard CORS origin is not allowed; list origins explicitly"
	ErrMsgTopicRequired      = "emitter topic is required when brokers are configured"
	ErrMsgQueueSizePositive  = "emitter queue size must be positive"
	ErrMsgTimeoutPositive    = "timeouts must be positive"
	ErrMsgOriginScheme       = "CORS origins must be absolute http(s) URLs"
)

// Validation constants
const (
	MinQueueSize = 1
	MaxQueueSize = 65536
)
