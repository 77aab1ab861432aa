package config

import "time"

// Storage backends understood by the client.
const (
	StoragePreset = "preset"
	StorageS3     = "s3"
)

// Config holds runtime settings for the registry client.
//
// Fields:
//   - ServerEndpointAddr: base URL of the registry REST API.
//   - APIToken: bearer token attached to every API request (may be empty).
//   - RequestTimeout: per-request timeout for API and storage calls.
//   - StorageBackend: "preset" (multipart upload with an upload preset) or "s3".
//   - UploadURL / UploadPreset: preset upload endpoint and preset identifier.
//   - S3*: S3-compatible object storage settings.
//   - MetricsAddr: listen address for /metrics; empty disables it.
type Config struct {
	ServerEndpointAddr string
	APIToken           string
	RequestTimeout     time.Duration
	LogLevel           string

	StorageBackend string
	UploadURL      string
	UploadPreset   string

	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string

	MetricsAddr string
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.RequestTimeout = 30 * time.Second
	c.LogLevel = "info"
	c.StorageBackend = StoragePreset
	c.UploadURL = "https://api.cloudinary.com/v1_1/demo/image/upload"
	c.UploadPreset = "vehicle_photos"
	c.S3Endpoint = "http://127.0.0.1:9000"
	c.S3Region = "us-east-1"
	c.S3Bucket = "vehicle-photos"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
