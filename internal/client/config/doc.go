// Package config loads runtime configuration for the registry client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c / -config or the VR_CONFIG
//     environment variable (see parseJson).
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the registry API
//	-t string   API bearer token
//	-i int      request timeout (seconds)
//	-l string   log level (debug, info, warn, error)
//	-s string   storage backend: preset or s3
//	-u string   preset upload URL
//	-p string   upload preset identifier
//	-e string   S3 endpoint
//	-g string   S3 region
//	-b string   S3 bucket
//	-k string   S3 access key
//	-x string   S3 secret key
//	-w string   public base URL for uploaded objects
//	-m string   metrics listen address
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "http://127.0.0.1:8080",
//	  "request_timeout": "30s",
//	  "storage_backend": "s3",
//	  "s3_bucket": "vehicle-photos"
//	}
//
// Only keys present in the file override defaults.
package config
