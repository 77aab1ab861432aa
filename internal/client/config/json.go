package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/vehiclereg/internal/flagx"
	"github.com/dmitrijs2005/vehiclereg/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerEndpointAddr string          `json:"server_endpoint_addr"`
	APIToken           string          `json:"api_token"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
	LogLevel           string          `json:"log_level"`
	StorageBackend     string          `json:"storage_backend"`
	UploadURL          string          `json:"upload_url"`
	UploadPreset       string          `json:"upload_preset"`
	S3Endpoint         string          `json:"s3_endpoint"`
	S3Region           string          `json:"s3_region"`
	S3Bucket           string          `json:"s3_bucket"`
	S3AccessKey        string          `json:"s3_access_key"`
	S3SecretKey        string          `json:"s3_secret_key"`
	S3PublicBaseURL    string          `json:"s3_public_base_url"`
	MetricsAddr        string          `json:"metrics_addr"`
}

// parseJson overlays cfg with values from the JSON file named by
// flagx.JsonConfigFlags. Missing keys leave cfg untouched. Read or decode
// errors panic; the caller runs this once at startup.
func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.APIToken, jc.APIToken)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.StorageBackend, jc.StorageBackend)
	setString(&cfg.UploadURL, jc.UploadURL)
	setString(&cfg.UploadPreset, jc.UploadPreset)
	setString(&cfg.S3Endpoint, jc.S3Endpoint)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	setString(&cfg.S3PublicBaseURL, jc.S3PublicBaseURL)
	setString(&cfg.MetricsAddr, jc.MetricsAddr)

	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
