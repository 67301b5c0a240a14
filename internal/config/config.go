// Package config loads editor settings from sceneedit.cfg.json through viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "sceneedit.cfg.json"

// ErrNotFound is returned by Load when the config file does not exist.
// Defaults are still in effect.
var ErrNotFound = errors.New("config file not found")

// HistoryConfig holds undo/redo settings
type HistoryConfig struct {
	Mode     string `json:"mode" mapstructure:"mode"`
	Capacity int    `json:"capacity" mapstructure:"capacity"`
}

// JournalConfig holds edit journal settings
type JournalConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Driver  string `json:"driver" mapstructure:"driver"`
	Path    string `json:"path" mapstructure:"path"`
}

// DBConfig holds PostgreSQL connection settings for the journal
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
	SSLMode  string `json:"sslMode" mapstructure:"sslMode"`
}

// InfluxConfig holds settings for exporting edits to InfluxDB
type InfluxConfig struct {
	Enabled    bool   `json:"enabled" mapstructure:"enabled"`
	URL        string `json:"url" mapstructure:"url"`
	Token      string `json:"token" mapstructure:"token"`
	Org        string `json:"org" mapstructure:"org"`
	Bucket     string `json:"bucket" mapstructure:"bucket"`
	BackupPath string `json:"backupPath" mapstructure:"backupPath"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled        bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName    string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout   time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	MetricInterval time.Duration `json:"metricInterval" mapstructure:"metricInterval"`
	Endpoint       string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure       bool          `json:"insecure" mapstructure:"insecure"`
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("history.mode", "command")
	viper.SetDefault("history.capacity", 100)

	viper.SetDefault("catalog.file", "")

	viper.SetDefault("journal.enabled", false)
	viper.SetDefault("journal.driver", "sqlite")
	viper.SetDefault("journal.path", "sceneedit.journal.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "sceneedit")
	viper.SetDefault("db.sslMode", "disable")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.url", "http://localhost:8086")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "sceneedit")
	viper.SetDefault("influx.bucket", "scene_edits")
	viper.SetDefault("influx.backupPath", "sceneedit.influx.gz")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "sceneedit")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.metricInterval", "1m")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file. A missing file
// yields ErrNotFound with the defaults loaded.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return fmt.Errorf("%w: %s in %s", ErrNotFound, FileName, configDir)
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// BindFlags lets command-line flags override config values.
// Flags missing from fs are skipped.
func BindFlags(fs *pflag.FlagSet) error {
	bindings := map[string]string{
		"logLevel":         "log-level",
		"history.mode":     "history-mode",
		"history.capacity": "history-capacity",
		"catalog.file":     "catalog",
		"journal.enabled":  "journal",
		"influx.enabled":   "influx",
	}
	for key, name := range bindings {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetHistoryConfig returns the undo/redo settings.
func GetHistoryConfig() HistoryConfig {
	return HistoryConfig{
		Mode:     viper.GetString("history.mode"),
		Capacity: viper.GetInt("history.capacity"),
	}
}

// GetJournalConfig returns the edit journal settings.
func GetJournalConfig() JournalConfig {
	return JournalConfig{
		Enabled: viper.GetBool("journal.enabled"),
		Driver:  viper.GetString("journal.driver"),
		Path:    viper.GetString("journal.path"),
	}
}

// GetDBConfig returns the PostgreSQL settings.
func GetDBConfig() DBConfig {
	return DBConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
		SSLMode:  viper.GetString("db.sslMode"),
	}
}

// GetInfluxConfig returns the InfluxDB export settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:    viper.GetBool("influx.enabled"),
		URL:        viper.GetString("influx.url"),
		Token:      viper.GetString("influx.token"),
		Org:        viper.GetString("influx.org"),
		Bucket:     viper.GetString("influx.bucket"),
		BackupPath: viper.GetString("influx.backupPath"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:        viper.GetBool("otel.enabled"),
		ServiceName:    viper.GetString("otel.serviceName"),
		BatchTimeout:   viper.GetDuration("otel.batchTimeout"),
		MetricInterval: viper.GetDuration("otel.metricInterval"),
		Endpoint:       viper.GetString("otel.endpoint"),
		Insecure:       viper.GetBool("otel.insecure"),
	}
}
