package config

import (
	"strconv"

	"github.com/jroosing/minidns/internal/zone"
)

// WorkersMode specifies how worker count is determined.
type WorkersMode int

const (
	// WorkersAuto keeps the runtime's default parallelism.
	WorkersAuto WorkersMode = iota
	// WorkersFixed caps GOMAXPROCS at a specific value.
	WorkersFixed
)

// WorkerSetting represents the workers configuration.
type WorkerSetting struct {
	Mode  WorkersMode
	Value int
}

// String returns the string representation of the worker setting.
func (w WorkerSetting) String() string {
	if w.Mode == WorkersAuto {
		return "auto"
	}
	return strconv.Itoa(w.Value)
}

// ServerConfig contains DNS listener settings.
type ServerConfig struct {
	Host           string        `yaml:"host"            json:"host"`
	Port           int           `yaml:"port"            json:"port"`
	Workers        WorkerSetting `yaml:"-"               json:"-"`
	WorkersRaw     string        `yaml:"workers"         json:"workers"`
	MaxConcurrency int           `yaml:"max_concurrency" json:"max_concurrency"`
}

// RecordsConfig says where the static records come from.
//
// Sources are merged in this order: database, file, primary, inline
// entries. A name defined by more than one source is a startup error.
type RecordsConfig struct {
	// File is a YAML record file (see zone.ParseYAML).
	File string `yaml:"file" json:"file"`
	// Database is a SQLite record store filled by cmd/import-records.
	Database string `yaml:"database" json:"database"`
	// Primary is another MiniDNS instance whose records are pulled at startup.
	Primary PrimaryConfig `yaml:"primary" json:"primary"`
	// Entries are records written directly in the config file.
	Entries map[string]zone.Entry `yaml:"entries" json:"-"`
}

// PrimaryConfig points at the management API of a primary MiniDNS.
type PrimaryConfig struct {
	URL     string `yaml:"url"     json:"url"`
	APIKey  string `yaml:"api_key" json:"-"`
	Timeout string `yaml:"timeout" json:"timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level            string            `yaml:"level"             json:"level"`
	Structured       bool              `yaml:"structured"        json:"structured"`
	StructuredFormat string            `yaml:"structured_format" json:"structured_format"`
	IncludePID       bool              `yaml:"include_pid"       json:"include_pid"`
	ExtraFields      map[string]string `yaml:"extra_fields"      json:"extra_fields,omitempty"`
}

// APIConfig contains management API settings.
//
// Note: APIKey is treated as a secret and is never returned by API endpoints.
type APIConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Host    string `yaml:"host"    json:"host"`
	Port    int    `yaml:"port"    json:"port"`
	APIKey  string `yaml:"api_key" json:"-"`
}

// Config is the root configuration structure.
type Config struct {
	Server  ServerConfig  `yaml:"server"  json:"server"`
	Records RecordsConfig `yaml:"records" json:"records"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	API     APIConfig     `yaml:"api"     json:"api"`
}
