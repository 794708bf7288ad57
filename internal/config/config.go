// Package config provides hierarchical configuration loading for epicflow.
// Precedence: defaults < YAML file < environment variables < CLI flags.
package config

import "time"

// Config holds all runtime configuration for the epicflow core service.
type Config struct {
	Server    Server    `yaml:"server"`
	NATS      NATS      `yaml:"nats"`
	Gateway   Gateway   `yaml:"gateway"`
	Logging   Logging   `yaml:"logging"`
	Breaker   Breaker   `yaml:"breaker"`
	Rate      Rate      `yaml:"rate"`
	Cache     Cache     `yaml:"cache"`
	Context   Context   `yaml:"context"`
	Monitor   Monitor   `yaml:"monitor"`
	Providers Providers `yaml:"providers"`
	Otel      Otel      `yaml:"otel"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`
}

// NATS holds NATS JetStream configuration. Publishing is best effort;
// an unreachable broker degrades eventing, never routing.
type NATS struct {
	URL    string `yaml:"url"`
	Stream string `yaml:"stream"`
}

// Gateway holds LLM gateway health API configuration.
type Gateway struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level      string `yaml:"level"`
	Service    string `yaml:"service"`
	Async      bool   `yaml:"async"`
	BufferSize int    `yaml:"buffer_size"`
	Workers    int    `yaml:"workers"`
}

// Breaker holds circuit breaker configuration for gateway calls.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Rate holds HTTP rate limiter configuration.
type Rate struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Cache holds orchestration result cache configuration.
type Cache struct {
	MaxSizeMB int64         `yaml:"max_size_mb"`
	TTL       time.Duration `yaml:"ttl"`
}

// Context holds per-issue context store configuration.
type Context struct {
	MaxEntries int `yaml:"max_entries"`
}

// Monitor holds performance monitor configuration.
type Monitor struct {
	MaxSamples int `yaml:"max_samples"`
}

// Providers holds the provider profile overlay configuration.
type Providers struct {
	File string `yaml:"file"`
}

// Otel holds OpenTelemetry exporter configuration.
type Otel struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Insecure bool   `yaml:"insecure"`
}

// Defaults returns a Config with sensible default values for local development.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:       "8080",
			CORSOrigin: "http://localhost:3000",
		},
		NATS: NATS{
			URL:    "nats://localhost:4222",
			Stream: "EPICFLOW",
		},
		Gateway: Gateway{
			URL: "http://localhost:4000",
		},
		Logging: Logging{
			Level:   "info",
			Service: "epicflow-core",
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
		Rate: Rate{
			RequestsPerSecond: 10,
			Burst:             100,
		},
		Cache: Cache{
			MaxSizeMB: 64,
			TTL:       15 * time.Minute,
		},
		Context: Context{
			MaxEntries: 10000,
		},
		Monitor: Monitor{
			MaxSamples: 1024,
		},
		Providers: Providers{
			File: "providers.yaml",
		},
		Otel: Otel{
			Enabled:  false,
			Endpoint: "localhost:4317",
			Insecure: true,
		},
	}
}
