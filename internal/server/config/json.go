package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/vehiclereg/internal/flagx"
	"github.com/dmitrijs2005/vehiclereg/internal/timex"
)

// JsonConfig is a DTO used only for reading JSON configuration files.
// Durations accept both "10s" and integer nanoseconds.
type JsonConfig struct {
	EndpointAddr          string          `json:"endpoint_addr"`
	DatabaseDSN           string          `json:"database_dsn"`
	SecretKey             string          `json:"secret_key"`
	TokenValidityDuration *timex.Duration `json:"token_validity_duration"`
	LogLevel              string          `json:"log_level"`
	ShutdownTimeout       *timex.Duration `json:"shutdown_timeout"`
	MetricsPath           *string         `json:"metrics_path"`
}

// parseJson overlays config with the JSON file named by -c/-config (or
// VR_CONFIG). Keys missing from the file leave config untouched. Read and
// decode errors panic.
func parseJson(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
	if c.TokenValidityDuration != nil {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	// an explicit "" turns metrics off
	if c.MetricsPath != nil {
		config.MetricsPath = *c.MetricsPath
	}
}
