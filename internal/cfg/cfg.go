package cfg

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/virajparmaj/turbine-nox-wise/internal/common"
)

// Load resolves settings from a YAML file when CONFIG_FILE is set,
// otherwise from environment variables. A .env file in the working
// directory is honored either way.
func Load() (Settings, error) {
	_ = godotenv.Load()

	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Parse durations, env first like every other key
	shutdown := getDurationFromEnvOrConfig(common.EnvShutdownTimeout, config.Server.ShutdownTimeout, common.DefaultShutdownSeconds*time.Second)
	fetch := getDurationFromEnvOrConfig(common.EnvArtifactsFetchTimeout, config.Artifacts.FetchTimeout, common.DefaultFetchSeconds*time.Second)

	streamEnabled := true
	if config.Server.StreamEnabled != nil {
		streamEnabled = *config.Server.StreamEnabled
	}

	// Override with environment variables if they exist
	settings := Settings{
		ListenAddr:            getEnvOrDefault(common.EnvListenAddr, orDefault(config.Server.ListenAddr, common.DefaultListenAddr)),
		AllowedOrigins:        getListFromEnvOrConfig(common.EnvAllowedOrigins, config.Server.AllowedOrigins, common.DefaultAllowedOrigins),
		ShutdownTimeout:       shutdown,
		StreamEnabled:         getBoolFromEnvOrConfig(common.EnvStreamEnabled, streamEnabled),
		ArtifactsDir:          getEnvOrDefault(common.EnvArtifactsDir, config.Artifacts.Dir),
		ArtifactsBaseURL:      getEnvOrDefault(common.EnvArtifactsBaseURL, config.Artifacts.BaseURL),
		ArtifactsCachePath:    getEnvOrDefault(common.EnvArtifactsCachePath, config.Artifacts.CachePath),
		ArtifactsFetchTimeout: fetch,
		KafkaBrokers:          getListFromEnvOrConfig(common.EnvKafkaBrokers, config.Emitter.Brokers, nil),
		KafkaTopic:            getEnvOrDefault(common.EnvKafkaTopic, orDefault(config.Emitter.Topic, common.DefaultKafkaTopic)),
		EmitterQueueSize:      getIntFromEnvOrConfig(common.EnvEmitterQueueSize, config.Emitter.QueueSize, common.DefaultQueueSize),
		LogLevel:              getEnvOrDefault(common.EnvLogLevel, orDefault(config.System.LogLevel, common.DefaultLogLevel)),
	}

	if settings.ArtifactsDir == "" && settings.ArtifactsBaseURL == "" {
		settings.ArtifactsDir = common.DefaultArtifactsDir
	}

	// Validate configuration
	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		ListenAddr:            getEnvOrDefault(common.EnvListenAddr, common.DefaultListenAddr),
		AllowedOrigins:        splitOrDefault(os.Getenv(common.EnvAllowedOrigins), common.DefaultAllowedOrigins),
		ShutdownTimeout:       getDurationOrDefault(common.EnvShutdownTimeout, common.DefaultShutdownSeconds*time.Second),
		StreamEnabled:         getBoolOrDefault(common.EnvStreamEnabled, true),
		ArtifactsBaseURL:      os.Getenv(common.EnvArtifactsBaseURL),   // optional
		ArtifactsCachePath:    os.Getenv(common.EnvArtifactsCachePath), // optional
		ArtifactsFetchTimeout: getDurationOrDefault(common.EnvArtifactsFetchTimeout, common.DefaultFetchSeconds*time.Second),
		KafkaBrokers:          splitOrDefault(os.Getenv(common.EnvKafkaBrokers), nil),
		KafkaTopic:            getEnvOrDefault(common.EnvKafkaTopic, common.DefaultKafkaTopic),
		EmitterQueueSize:      getIntOrDefault(common.EnvEmitterQueueSize, common.DefaultQueueSize),
		LogLevel:              getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
	}

	// The local directory is the default artifact source only when no
	// artifact server is configured.
	if dir := os.Getenv(common.EnvArtifactsDir); dir != "" {
		settings.ArtifactsDir = dir
	} else if settings.ArtifactsBaseURL == "" {
		settings.ArtifactsDir = common.DefaultArtifactsDir
	}

	// Validate configuration
	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func splitOrDefault(v string, def []string) []string {
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func getListFromEnvOrConfig(key string, configValue, defaultValue []string) []string {
	if env := os.Getenv(key); env != "" {
		return splitOrDefault(env, defaultValue)
	}
	if len(configValue) > 0 {
		return configValue
	}
	return defaultValue
}

func getDurationFromEnvOrConfig(key, configValue string, defaultValue time.Duration) time.Duration {
	if env := os.Getenv(key); env != "" {
		if d, err := time.ParseDuration(env); err == nil {
			return d
		}
	}
	if configValue != "" {
		if d, err := time.ParseDuration(configValue); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getBoolFromEnvOrConfig(key string, configValue bool) bool {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseBool(env); err == nil {
			return val
		}
	}
	return configValue
}

// validateSettings performs validation of configuration values
func validateSettings(settings *Settings) error {
	if settings.ListenAddr == "" {
		return errors.New(common.ErrMsgListenAddrRequired)
	}

	if settings.ArtifactsDir == "" && settings.ArtifactsBaseURL == "" {
		return errors.New(common.ErrMsgArtifactSource)
	}
	if settings.ArtifactsCachePath != "" && settings.ArtifactsBaseURL == "" {
		return errors.New(common.ErrMsgCacheNeedsBaseURL)
	}

	if settings.ShutdownTimeout <= 0 || settings.ArtifactsFetchTimeout <= 0 {
		return errors.New(common.ErrMsgTimeoutPositive)
	}

	for _, origin := range settings.AllowedOrigins {
		if origin == "*" {
			return errors.New(common.ErrMsgWildcardOrigin)
		}
		u, err := url.Parse(origin)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s: %q", common.ErrMsgOriginScheme, origin)
		}
	}

	if len(settings.KafkaBrokers) > 0 && settings.KafkaTopic == "" {
		return errors.New(common.ErrMsgTopicRequired)
	}
	if settings.EmitterQueueSize < common.MinQueueSize || settings.EmitterQueueSize > common.MaxQueueSize {
		return fmt.Errorf("%s: got %d", common.ErrMsgQueueSizePositive, settings.EmitterQueueSize)
	}

	return nil
}
