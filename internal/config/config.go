// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr   string
	DBPath       string
	MaxUploadMB  int64
	HistoryLimit int
}

// Load reads configuration from environment variables and returns a validated
// Config. All variables are optional: CREDSTAMP_LISTEN_ADDR (127.0.0.1:8080),
// CREDSTAMP_DB_PATH (credstamp.db; empty string disables run history),
// CREDSTAMP_MAX_UPLOAD_MB (32), CREDSTAMP_HISTORY_LIMIT (50).
func Load() (*Config, error) {
	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("CREDSTAMP_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "credstamp.db"
	if v, ok := os.LookupEnv("CREDSTAMP_DB_PATH"); ok {
		dbPath = v
	}

	maxUploadMB := int64(32)
	if v, ok := os.LookupEnv("CREDSTAMP_MAX_UPLOAD_MB"); ok {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("CREDSTAMP_MAX_UPLOAD_MB has invalid value %q: expected a positive integer", v)
		}
		maxUploadMB = parsed
	}

	historyLimit := 50
	if v, ok := os.LookupEnv("CREDSTAMP_HISTORY_LIMIT"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("CREDSTAMP_HISTORY_LIMIT has invalid value %q: expected a positive integer", v)
		}
		historyLimit = parsed
	}

	return &Config{
		ListenAddr:   listenAddr,
		DBPath:       dbPath,
		MaxUploadMB:  maxUploadMB,
		HistoryLimit: historyLimit,
	}, nil
}

// MaxUploadBytes returns the request size cap in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
