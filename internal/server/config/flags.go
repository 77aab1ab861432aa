package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/vehiclereg/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   REST bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN; empty keeps records in memory
//	-s string   token HMAC secret; empty disables auth
//	-t int      issued token validity, hours
//	-l string   log level
//	-w int      shutdown grace period, seconds
//	-m string   metrics path; empty disables it
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-l", "-w", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	validity := fs.Int("t", int(config.TokenValidityDuration.Hours()), "token validity (in hours)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	shutdown := fs.Int("w", int(config.ShutdownTimeout.Seconds()), "shutdown timeout (in seconds)")
	fs.StringVar(&config.MetricsPath, "m", config.MetricsPath, "metrics path")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*validity) * time.Hour
	config.ShutdownTimeout = time.Duration(*shutdown) * time.Second
}
