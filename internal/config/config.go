// Package config loads the process configuration for MiniDNS.
//
// Configuration comes from an optional YAML file, then environment variable
// overrides, then Validate which fills defaults and rejects bad values. The
// static records themselves are not parsed here beyond the inline entries;
// see internal/zone and internal/database.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Load and ResolveConfigPath.
const (
	EnvConfig      = "MINIDNS_CONFIG"
	EnvHost        = "MINIDNS_HOST"
	EnvPort        = "MINIDNS_PORT"
	EnvWorkers     = "MINIDNS_WORKERS"
	EnvRecordsFile = "MINIDNS_RECORDS_FILE"
	EnvRecordsDB   = "MINIDNS_RECORDS_DB"
	EnvPrimaryURL  = "MINIDNS_PRIMARY_URL"
	EnvAPIEnabled  = "MINIDNS_API_ENABLED"
	EnvLogLevel    = "LOG_LEVEL"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:       "0.0.0.0",
			Port:       1053,
			WorkersRaw: "auto",
		},
		Logging: LoggingConfig{
			Level:            "INFO",
			StructuredFormat: "json",
			ExtraFields:      map[string]string{},
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
	}
}

// ResolveConfigPath returns the config path from the flag, falling back to
// the MINIDNS_CONFIG environment variable.
func ResolveConfigPath(flagValue string) string {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p
	}
	return strings.TrimSpace(os.Getenv(EnvConfig))
}

// Load reads the YAML file at path (if any) over the defaults, applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvHost)); v != "" {
		cfg.Server.Host = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		cfg.Server.Port = port
	}
	if v := strings.TrimSpace(os.Getenv(EnvWorkers)); v != "" {
		cfg.Server.WorkersRaw = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRecordsFile)); v != "" {
		cfg.Records.File = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRecordsDB)); v != "" {
		cfg.Records.Database = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPrimaryURL)); v != "" {
		cfg.Records.Primary.URL = v
	}
	if v, ok := os.LookupEnv(EnvAPIEnabled); ok {
		cfg.API.Enabled = envBool(v, cfg.API.Enabled)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}

// envBool parses common boolean spellings, returning def for anything else.
func envBool(raw string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

// Validate validates and normalizes the configuration.
func (cfg *Config) Validate() error {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return errors.New("server.port must be 1..65535")
	}
	if cfg.Server.MaxConcurrency < 0 {
		return errors.New("server.max_concurrency must not be negative")
	}
	workers, err := parseWorkers(cfg.Server.WorkersRaw)
	if err != nil {
		return err
	}
	cfg.Server.Workers = workers

	// Normalize logging
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)
	if cfg.Logging.StructuredFormat == "" {
		cfg.Logging.StructuredFormat = "json"
	}
	if cfg.Logging.ExtraFields == nil {
		cfg.Logging.ExtraFields = map[string]string{}
	}

	if cfg.Records.Primary.URL != "" {
		if cfg.Records.Primary.Timeout == "" {
			cfg.Records.Primary.Timeout = "10s"
		}
		if _, err := time.ParseDuration(cfg.Records.Primary.Timeout); err != nil {
			return fmt.Errorf("records.primary.timeout: %w", err)
		}
	}

	// Normalize management API
	if cfg.API.Host == "" {
		cfg.API.Host = "127.0.0.1"
	}
	if cfg.API.Enabled {
		if cfg.API.Port <= 0 || cfg.API.Port > 65535 {
			return errors.New("api.port must be 1..65535")
		}
	}
	return nil
}

// parseWorkers converts the workers string to WorkerSetting.
func parseWorkers(raw string) (WorkerSetting, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" || raw == "auto" {
		return WorkerSetting{Mode: WorkersAuto}, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return WorkerSetting{}, fmt.Errorf("server.workers must be \"auto\" or a positive integer, got %q", raw)
	}
	return WorkerSetting{Mode: WorkersFixed, Value: n}, nil
}
