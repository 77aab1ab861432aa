// Package config handles configuration for the registry server,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the registry server.
//
// Fields:
//   - EndpointAddr: bind address of the REST API.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty keeps records in memory.
//   - SecretKey: HMAC secret for bearer tokens (HS256). Empty disables auth.
//   - TokenValidityDuration: lifetime of tokens issued with -issue-token.
//   - ShutdownTimeout: grace period for in-flight requests on shutdown.
//   - MetricsPath: path serving Prometheus metrics. Empty disables it.
type Config struct {
	EndpointAddr          string
	DatabaseDSN           string
	SecretKey             string
	TokenValidityDuration time.Duration
	LogLevel              string
	ShutdownTimeout       time.Duration
	MetricsPath           string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.TokenValidityDuration = 24 * time.Hour
	c.LogLevel = "info"
	c.ShutdownTimeout = 10 * time.Second
	c.MetricsPath = "/metrics"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
