package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	JWTSecret   string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	JWTTTL      time.Duration `mapstructure:"jwt_ttl" yaml:"jwt_ttl"`

	// MaxMessageBytes bounds a single inbound websocket frame.
	MaxMessageBytes int64 `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	// MaxContentLength bounds message content in runes. Zero disables the check.
	MaxContentLength int `mapstructure:"max_content_length" yaml:"max_content_length"`
	// EventBuffer is the per-connection outbound queue size.
	EventBuffer int `mapstructure:"event_buffer" yaml:"event_buffer"`
	// MessageRate is the sustained send-message rate per connection (per second). Zero disables limiting.
	MessageRate  float64 `mapstructure:"message_rate" yaml:"message_rate"`
	MessageBurst int     `mapstructure:"message_burst" yaml:"message_burst"`

	CloseSuperseded bool `mapstructure:"close_superseded" yaml:"close_superseded"`
	SanitizeContent bool `mapstructure:"sanitize_content" yaml:"sanitize_content"`
	MetricsEnabled  bool `mapstructure:"metrics_enabled" yaml:"metrics_enabled"`
}

// DefaultJWTSecret is only meant for local development.
const DefaultJWTSecret = "change-me"

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		LogFormat:         "console",
		DatabasePath:      "wirechat-dm.db",
		JWTSecret:         DefaultJWTSecret,
		JWTIssuer:         "wirechat-dm",
		JWTAudience:       "wirechat-dm",
		JWTTTL:            24 * time.Hour,
		MaxMessageBytes:   64 << 10,
		MaxContentLength:  4000,
		EventBuffer:       64,
		MessageRate:       5,
		MessageBurst:      20,
		CloseSuperseded:   true,
		SanitizeContent:   false,
		MetricsEnabled:    true,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
// Booleans are not merged here since their zero value is meaningful; the CLI
// sets them explicitly when the corresponding flag was changed.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.JWTSecret != "" {
		c.JWTSecret = other.JWTSecret
	}
	if other.JWTIssuer != "" {
		c.JWTIssuer = other.JWTIssuer
	}
	if other.JWTAudience != "" {
		c.JWTAudience = other.JWTAudience
	}
	if other.JWTTTL != 0 {
		c.JWTTTL = other.JWTTTL
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if other.MaxContentLength != 0 {
		c.MaxContentLength = other.MaxContentLength
	}
	if other.EventBuffer != 0 {
		c.EventBuffer = other.EventBuffer
	}
	if other.MessageRate != 0 {
		c.MessageRate = other.MessageRate
	}
	if other.MessageBurst != 0 {
		c.MessageBurst = other.MessageBurst
	}
}
