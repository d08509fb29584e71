// Package config handles configuration for the client component: defaults,
// environment variables (with .env support), and command-line flags, applied
// in that order.
package config

import (
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/ebalakin/costmate/internal/flagx"
	"github.com/joho/godotenv"
)

// Config holds runtime settings for the CostMate client.
//
// Fields:
//   - ServerURL: base URL of the CostMate server.
//   - DatabaseDSN: path of the local SQLite database.
//   - OSName / TimeZone: device scope sent with login and logout; a session
//     token is bound to this pair.
//   - StoreSecret: passphrase the local store key is derived from.
type Config struct {
	ServerURL   string
	DatabaseDSN string
	OSName      string
	TimeZone    string
	StoreSecret string
}

// LoadDefaults populates Config with local development defaults. The device
// scope defaults to the running OS and the process's local time zone.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	c.DatabaseDSN = "costmate.db"
	c.OSName = runtime.GOOS
	c.TimeZone = time.Local.String()
	c.StoreSecret = ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

func parseEnv(config *Config) {
	// No .env file is fine; the environment may come from the shell.
	_ = godotenv.Load()

	setIfNotEmpty(&config.ServerURL, os.Getenv("SERVER_URL"))
	setIfNotEmpty(&config.DatabaseDSN, os.Getenv("CLIENT_DATABASE_DSN"))
	setIfNotEmpty(&config.OSName, os.Getenv("OS_NAME"))
	setIfNotEmpty(&config.TimeZone, os.Getenv("TIME_ZONE"))
	setIfNotEmpty(&config.StoreSecret, os.Getenv("STORE_SECRET"))
}

// parseFlags populates selected client Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-s string   server base URL
//	-d string   local SQLite database path
//	-o string   OS name reported to the server
//	-z string   time zone reported to the server
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-d", "-o", "-z"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ServerURL, "s", config.ServerURL, "server base URL")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "local database path")
	fs.StringVar(&config.OSName, "o", config.OSName, "OS name")
	fs.StringVar(&config.TimeZone, "z", config.TimeZone, "time zone")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}

func setIfNotEmpty(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
