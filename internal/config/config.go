package config

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "damagetext.cfg.json"

// ToggleConfig is the persisted show/hide preference.
type ToggleConfig struct {
	ShowEnemyDamageText bool
}

// DebugConfig controls clearance reporting.
type DebugConfig struct {
	VerboseLogging bool
	DedupeTypes    bool
	LogWindow      time.Duration
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool

	// MetricInterval is how often metrics are written to the log file.
	MetricInterval time.Duration
}

// InfluxConfig holds InfluxDB telemetry settings.
type InfluxConfig struct {
	Enabled  bool
	Protocol string
	Host     string
	Port     string
	Token    string
	Org      string
	Bucket   string
}

// GraylogConfig holds the GELF log sink settings.
type GraylogConfig struct {
	Enabled bool
	Address string
	Level   string // floor for the sink, independent of logLevel
}

// StatsConfig selects the sweep statistics store.
type StatsConfig struct {
	Type          string // "memory", "sqlite" or "postgres"
	SQLitePath    string
	DumpPath      string // copy target for an in-memory SQLite store on shutdown
	BufferSize    int
	FlushInterval time.Duration
	Postgres      PostgresConfig
}

// PostgresConfig holds connection settings for the postgres statistics store.
type PostgresConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./damagetextlogs")
	viper.SetDefault("statusFile", "")

	viper.SetDefault("general.showEnemyDamageText", true)

	viper.SetDefault("pools.maxSize", 64)

	viper.SetDefault("debug.verboseLogging", false)
	viper.SetDefault("debug.dedupeTypes", false)
	viper.SetDefault("debug.logWindow", "3s")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "damagetext-metrics")
	viper.SetDefault("influx.bucket", "damagetext")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")
	viper.SetDefault("graylog.level", "warn")

	viper.SetDefault("stats.type", "memory")
	viper.SetDefault("stats.sqlitePath", "")
	viper.SetDefault("stats.dumpPath", "")
	viper.SetDefault("stats.bufferSize", 256)
	viper.SetDefault("stats.flushInterval", "2s")
	viper.SetDefault("stats.postgres.host", "localhost")
	viper.SetDefault("stats.postgres.port", "5432")
	viper.SetDefault("stats.postgres.username", "postgres")
	viper.SetDefault("stats.postgres.password", "postgres")
	viper.SetDefault("stats.postgres.database", "damagetext")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "damagetext")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
	viper.SetDefault("otel.metricInterval", "60s")
}

// Watch re-reads the config file whenever it changes on disk and calls fn.
// fn runs on the watcher goroutine.
func Watch(fn func()) {
	viper.OnConfigChange(func(fsnotify.Event) {
		fn()
	})
	viper.WatchConfig()
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

// GetToggleConfig returns the persisted toggle preference.
func GetToggleConfig() ToggleConfig {
	return ToggleConfig{
		ShowEnemyDamageText: viper.GetBool("general.showEnemyDamageText"),
	}
}

// GetDebugConfig returns reporting settings.
func GetDebugConfig() DebugConfig {
	return DebugConfig{
		VerboseLogging: viper.GetBool("debug.verboseLogging"),
		DedupeTypes:    viper.GetBool("debug.dedupeTypes"),
		LogWindow:      viper.GetDuration("debug.logWindow"),
	}
}

// GetOTelConfig returns OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),

		MetricInterval: viper.GetDuration("otel.metricInterval"),
	}
}

// GetInfluxConfig returns InfluxDB settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Protocol: viper.GetString("influx.protocol"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}

// GetGraylogConfig returns GELF sink settings.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
		Level:   viper.GetString("graylog.level"),
	}
}

// GetStatsConfig returns statistics store settings.
func GetStatsConfig() StatsConfig {
	return StatsConfig{
		Type:          viper.GetString("stats.type"),
		SQLitePath:    viper.GetString("stats.sqlitePath"),
		DumpPath:      viper.GetString("stats.dumpPath"),
		BufferSize:    viper.GetInt("stats.bufferSize"),
		FlushInterval: viper.GetDuration("stats.flushInterval"),
		Postgres: PostgresConfig{
			Host:     viper.GetString("stats.postgres.host"),
			Port:     viper.GetString("stats.postgres.port"),
			Username: viper.GetString("stats.postgres.username"),
			Password: viper.GetString("stats.postgres.password"),
			Database: viper.GetString("stats.postgres.database"),
		},
	}
}
