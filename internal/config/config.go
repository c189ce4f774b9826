// Package config loads runtime configuration from a .env file (if present)
// and the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// APIURL is the base URL of the REST API, e.g. http://localhost:8090.
	APIURL string
	// WSURL is the base URL for websocket namespaces. Defaults to APIURL
	// with the scheme swapped by the dialer.
	WSURL string
	// RequestTimeout bounds each REST call.
	RequestTimeout time.Duration
	// WriteTimeout bounds each websocket emit.
	WriteTimeout time.Duration
	// Username, when set, logs the CLI in at startup. Only meaningful
	// against the simulator; production sessions come from the OAuth flow.
	Username string
	// LogLevel is debug, info, warn or error.
	LogLevel string
	// SimAddr is the listen address for the local simulator.
	SimAddr string
}

// Load reads .env then the environment. Missing keys fall back to defaults
// suitable for running against a local simulator.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		APIURL:         getenv("TOKY_API_URL", "http://localhost:8090"),
		WSURL:          os.Getenv("TOKY_WS_URL"),
		RequestTimeout: getdur("TOKY_REQUEST_TIMEOUT", 10*time.Second),
		WriteTimeout:   getdur("TOKY_WRITE_TIMEOUT", 3*time.Second),
		Username:       os.Getenv("TOKY_USERNAME"),
		LogLevel:       getenv("TOKY_LOG_LEVEL", "info"),
		SimAddr:        getenv("TOKY_SIM_ADDR", ":8090"),
	}
	if cfg.WSURL == "" {
		cfg.WSURL = cfg.APIURL
	}
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}
