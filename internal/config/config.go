// File: internal/config/config.go
package config

import (
	"fmt"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Trace    TraceConfig    `mapstructure:"trace" yaml:"trace"`
	Browser  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	Network  NetworkConfig  `mapstructure:"network" yaml:"network"`
	Driver   DriverConfig   `mapstructure:"driver" yaml:"driver"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
}

// LoggerConfig holds all the configuration for the operational logger.
// This is independent of the trace sinks: the trace directory is caller
// controlled, while the operational log location is fixed here.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// TraceConfig controls where and how action traces are recorded.
type TraceConfig struct {
	// Dir is the root under which the per-session trace directory is created.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// SessionID labels the session. Empty means a generated ID.
	SessionID string `mapstructure:"session_id" yaml:"session_id"`
	// TextLog and JSONLog toggle the individual file sinks.
	TextLog bool `mapstructure:"text_log" yaml:"text_log"`
	JSONLog bool `mapstructure:"json_log" yaml:"json_log"`
	// PostgresSink enables mirroring records into the database configured
	// under database.url.
	PostgresSink bool `mapstructure:"postgres_sink" yaml:"postgres_sink"`
}

// BrowserConfig holds settings for the headless browser instance.
type BrowserConfig struct {
	Headless        bool           `mapstructure:"headless" yaml:"headless"`
	DisableCache    bool           `mapstructure:"disable_cache" yaml:"disable_cache"`
	IgnoreTLSErrors bool           `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	Args            []string       `mapstructure:"args" yaml:"args"`
	Viewport        map[string]int `mapstructure:"viewport" yaml:"viewport"`
}

// NetworkConfig tunes the network behavior of the driver.
type NetworkConfig struct {
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	ActionTimeout     time.Duration `mapstructure:"action_timeout" yaml:"action_timeout"`
	PostLoadWait      time.Duration `mapstructure:"post_load_wait" yaml:"post_load_wait"`
}

// DriverConfig controls step execution and pacing.
type DriverConfig struct {
	// ScriptFile is the path of the JSON step script to execute.
	ScriptFile string `mapstructure:"script_file" yaml:"script_file"`
	// TaskFile points at a file whose full text is the task description.
	// The content is treated as an opaque string and echoed into the session
	// header. An unreadable path is a fatal configuration error.
	TaskFile string `mapstructure:"task_file" yaml:"task_file"`
	// StepsPerSecond caps the rate at which steps are dispatched. Zero
	// disables pacing.
	StepsPerSecond float64 `mapstructure:"steps_per_second" yaml:"steps_per_second"`
}

// DatabaseConfig holds the connection details for the optional Postgres sink.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// DefaultTraceDir resolves the out-of-the-box trace root under the user's
// home directory. Falls back to a relative path when the home directory
// cannot be determined.
func DefaultTraceDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return "webtrail_logs"
	}
	return filepath.Join(home, "webtrail_logs")
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "webtrail-cli")
	v.SetDefault("logger.log_file", "webtrail.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Trace --
	v.SetDefault("trace.dir", DefaultTraceDir())
	v.SetDefault("trace.text_log", true)
	v.SetDefault("trace.json_log", true)
	v.SetDefault("trace.postgres_sink", false)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.disable_cache", true)
	v.SetDefault("browser.ignore_tls_errors", false)

	// -- Network --
	v.SetDefault("network.navigation_timeout", "90s")
	v.SetDefault("network.action_timeout", "30s")
	v.SetDefault("network.post_load_wait", "2s")

	// -- Driver --
	v.SetDefault("driver.steps_per_second", 2.0)
}

// NewDefaultConfig creates a configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	// Sensitive values come from the environment, never the config file.
	v.BindEnv("database.url", "WEBTRAIL_DATABASE_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Trace.Dir == "" {
		return fmt.Errorf("trace.dir is a required configuration field")
	}
	if !c.Trace.TextLog && !c.Trace.JSONLog && !c.Trace.PostgresSink {
		return fmt.Errorf("at least one trace sink must be enabled")
	}
	if c.Trace.PostgresSink && c.Database.URL == "" {
		return fmt.Errorf("trace.postgres_sink requires database.url (WEBTRAIL_DATABASE_URL)")
	}
	if c.Driver.StepsPerSecond < 0 {
		return fmt.Errorf("driver.steps_per_second must not be negative")
	}
	if c.Network.NavigationTimeout <= 0 {
		return fmt.Errorf("network.navigation_timeout must be a positive duration")
	}
	return nil
}
