package cfg

import (
	"strings"
	"testing"
	"time"
)

// createValidSettings creates a valid Settings struct for testing
func createValidSettings() *Settings {
	return &Settings{
		ListenAddr:            ":8000",
		AllowedOrigins:        []string{"http://localhost:8080", "https://turbine-nox-wise.vercel.app"},
		ShutdownTimeout:       10 * time.Second,
		StreamEnabled:         true,
		ArtifactsDir:          "artifacts",
		ArtifactsFetchTimeout: 15 * time.Second,
		KafkaTopic:            "nox.predictions",
		EmitterQueueSize:      256,
		LogLevel:              "info",
	}
}

func TestValidateSettings_ValidConfig(t *testing.T) {
	settings := createValidSettings()

	err := validateSettings(settings)
	if err != nil {
		t.Errorf("Expected valid config to pass, got error: %v", err)
	}
}

func TestValidateSettings_RemoteArtifacts(t *testing.T) {
	settings := createValidSettings()
	settings.ArtifactsDir = ""
	settings.ArtifactsBaseURL = "https://models.example.com/turbine"
	settings.ArtifactsCachePath = "/var/cache/nox.db"

	if err := validateSettings(settings); err != nil {
		t.Errorf("Expected remote artifact config to pass, got error: %v", err)
	}
}

func TestValidateSettings_QueueSizeBounds(t *testing.T) {
	for _, size := range []int{1, 256, 65536} {
		settings := createValidSettings()
		settings.EmitterQueueSize = size
		if err := validateSettings(settings); err != nil {
			t.Errorf("Expected queue size %d to pass, got error: %v", size, err)
		}
	}
}

func TestValidateSettings_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantMsg string
	}{
		{
			name:    "missing listen address",
			mutate:  func(s *Settings) { s.ListenAddr = "" },
			wantMsg: "listen address is required",
		},
		{
			name: "no artifact source",
			mutate: func(s *Settings) {
				s.ArtifactsDir = ""
				s.ArtifactsBaseURL = ""
			},
			wantMsg: "artifact source is required",
		},
		{
			name: "cache without base URL",
			mutate: func(s *Settings) {
				s.ArtifactsCachePath = "/var/cache/nox.db"
			},
			wantMsg: "cache path is only valid",
		},
		{
			name:    "zero shutdown timeout",
			mutate:  func(s *Settings) { s.ShutdownTimeout = 0 },
			wantMsg: "timeouts must be positive",
		},
		{
			name:    "negative fetch timeout",
			mutate:  func(s *Settings) { s.ArtifactsFetchTimeout = -time.Second },
			wantMsg: "timeouts must be positive",
		},
		{
			name:    "wildcard origin",
			mutate:  func(s *Settings) { s.AllowedOrigins = []string{"*"} },
			wantMsg: "wildcard CORS origin",
		},
		{
			name:    "origin without scheme",
			mutate:  func(s *Settings) { s.AllowedOrigins = []string{"dashboard.example.com"} },
			wantMsg: "absolute http(s) URLs",
		},
		{
			name:    "origin with unsupported scheme",
			mutate:  func(s *Settings) { s.AllowedOrigins = []string{"ftp://dashboard.example.com"} },
			wantMsg: "absolute http(s) URLs",
		},
		{
			name: "brokers without topic",
			mutate: func(s *Settings) {
				s.KafkaBrokers = []string{"broker-1:9092"}
				s.KafkaTopic = ""
			},
			wantMsg: "topic is required",
		},
		{
			name:    "queue size below minimum",
			mutate:  func(s *Settings) { s.EmitterQueueSize = 0 },
			wantMsg: "queue size must be positive",
		},
		{
			name:    "queue size above maximum",
			mutate:  func(s *Settings) { s.EmitterQueueSize = 100000 },
			wantMsg: "queue size must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := createValidSettings()
			tt.mutate(settings)

			err := validateSettings(settings)
			if err == nil {
				t.Fatal("expected validation to fail")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error containing %q, got: %v", tt.wantMsg, err)
			}
		})
	}
}

func TestEmitterEnabled(t *testing.T) {
	settings := createValidSettings()
	if settings.EmitterEnabled() {
		t.Error("expected emitter disabled without brokers")
	}

	settings.KafkaBrokers = []string{"broker-1:9092"}
	if !settings.EmitterEnabled() {
		t.Error("expected emitter enabled with brokers")
	}
}
