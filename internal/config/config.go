package config

import (
	"fmt"
	"strings"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks application-level settings. Job settings are validated
// separately at run start, because a config file may legitimately carry an
// incomplete job (folders chosen later via flags).
func (c *Config) Validate() error {
	level := strings.ToLower(c.LogLevel)
	ok := false
	for _, l := range validLogLevels {
		if level == l {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if c.Preview.MaxEdge < 0 {
		return fmt.Errorf("preview max_edge cannot be negative, got %d", c.Preview.MaxEdge)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d, must be between 1 and 65535", c.Server.Port)
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("server max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec < 1 {
		return fmt.Errorf("server timeout_sec must be positive, got %d", c.Server.TimeoutSec)
	}

	return nil
}
