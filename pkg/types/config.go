// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by anything that calls a
// remote converter.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "forward-convert/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ClientConfig holds settings for posting documents to a remote instance.
type ClientConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// MaxRetries is the number of retries on HTTP 429 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// ServerConfig holds settings for the HTTP endpoint.
type ServerConfig struct {
	// Listen is the address the server binds (default ":8080").
	Listen string `json:"listen" yaml:"listen" mapstructure:"listen"`

	// MaxBodyBytes caps the request body of /api/convert (default 1 MiB).
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" mapstructure:"max_body_bytes"`

	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown after a signal (default 10s).
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogText LogFormat = "text"
	LogJSON LogFormat = "json"
)

// LogConfig holds settings for the process logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format selects text or json output (default text).
	Format LogFormat `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings for the forward-convert binary.
type Config struct {
	Server ServerConfig `json:"server" yaml:"server" mapstructure:"server"`
	Log    LogConfig    `json:"log" yaml:"log" mapstructure:"log"`
	Client ClientConfig `json:"client" yaml:"client" mapstructure:"client"`
}
