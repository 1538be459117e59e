package config

import "github.com/MeKo-Tech/photoflow/internal/batch"

// Config represents the complete configuration for the photoflow
// application. It covers all commands (run, list, preview, serve) and
// supports loading from configuration files, environment variables, and
// command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Default job settings (for the run command)
	Job batch.Config `mapstructure:"job" yaml:"job" json:"job"`

	// Preview settings
	Preview PreviewConfig `mapstructure:"preview" yaml:"preview" json:"preview"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// PreviewConfig contains single-image preview settings.
type PreviewConfig struct {
	// MaxEdge caps the longer dimension of preview output; 0 disables scaling.
	MaxEdge int `mapstructure:"max_edge" yaml:"max_edge" json:"max_edge"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Verbose:  false,
		Job:      batch.DefaultConfig(),
		Preview: PreviewConfig{
			MaxEdge: 800,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     50,
			TimeoutSec:      120,
			ShutdownTimeout: 10,
		},
	}
}
