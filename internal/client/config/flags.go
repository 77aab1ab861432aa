package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/vehiclereg/internal/flagx"
)

var clientFlags = []string{"-a", "-t", "-i", "-l", "-s", "-u", "-p", "-e", "-g", "-b", "-k", "-x", "-w", "-m"}

// parseFlags populates Config fields from command-line flags. os.Args is
// filtered with flagx.FilterArgs first so flags owned by other components
// (-c) do not break parsing. Invalid values panic.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], clientFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "registry API base URL")
	fs.StringVar(&cfg.APIToken, "t", cfg.APIToken, "API bearer token")
	timeout := fs.Int("i", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	fs.StringVar(&cfg.StorageBackend, "s", cfg.StorageBackend, "storage backend (preset|s3)")
	fs.StringVar(&cfg.UploadURL, "u", cfg.UploadURL, "preset upload URL")
	fs.StringVar(&cfg.UploadPreset, "p", cfg.UploadPreset, "upload preset")

	fs.StringVar(&cfg.S3Endpoint, "e", cfg.S3Endpoint, "S3 endpoint")
	fs.StringVar(&cfg.S3Region, "g", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3AccessKey, "k", cfg.S3AccessKey, "S3 access key")
	fs.StringVar(&cfg.S3SecretKey, "x", cfg.S3SecretKey, "S3 secret key")
	fs.StringVar(&cfg.S3PublicBaseURL, "w", cfg.S3PublicBaseURL, "public base URL of uploaded objects")

	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
