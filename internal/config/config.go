// Package config provides configuration management using Viper
package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/spf13/viper"

	"trafficlens/internal/timeframe"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName     string   `mapstructure:"appname"`
	AppPort     string   `mapstructure:"appport"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Reporting API settings
	SiteID                string `mapstructure:"siteid"`
	CredentialsFile       string `mapstructure:"credentialsfile"`
	Timezone              string `mapstructure:"timezone"`
	RequestTimeoutSeconds int    `mapstructure:"requesttimeoutseconds"`

	// Report defaults
	DefaultNumberOfDays int `mapstructure:"defaultnumberofdays"`
	DefaultMaxResults   int `mapstructure:"defaultmaxresults"`
	OverviewWorkers     int `mapstructure:"overviewworkers"`

	// HTTP API settings
	APIKey string `mapstructure:"apikey"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	once.Do(func() {
		loaded, err := Load()
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		cfg = loaded
	})
	return cfg
}

// Load reads defaults, an optional config file and the environment into a new Config.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("appname", "trafficlens")
	v.SetDefault("appport", "3000")
	v.SetDefault("environment", Development)
	v.SetDefault("loglevel", string(LogLevelDebug))
	v.SetDefault("logsdir", "logs")
	v.SetDefault("logsmaxsizeinmb", 20)
	v.SetDefault("logsmaxbackups", 10)
	v.SetDefault("logsmaxageindays", 30)
	v.SetDefault("siteid", "")
	v.SetDefault("credentialsfile", "")
	v.SetDefault("timezone", "Local")
	v.SetDefault("requesttimeoutseconds", 30)
	v.SetDefault("defaultnumberofdays", 365)
	v.SetDefault("defaultmaxresults", 20)
	v.SetDefault("overviewworkers", 3)
	v.SetDefault("apikey", "")

	v.BindEnv("appname", "TRAFFICLENS_APP_NAME")
	v.BindEnv("appport", "TRAFFICLENS_APP_PORT")
	v.BindEnv("environment", "TRAFFICLENS_ENV")
	v.BindEnv("loglevel", "TRAFFICLENS_LOG_LEVEL")
	v.BindEnv("logsdir", "TRAFFICLENS_LOGS_DIR")
	v.BindEnv("logsmaxsizeinmb", "TRAFFICLENS_LOGS_MAX_SIZE_IN_MB")
	v.BindEnv("logsmaxbackups", "TRAFFICLENS_LOGS_MAX_BACKUPS")
	v.BindEnv("logsmaxageindays", "TRAFFICLENS_LOGS_MAX_AGE_IN_DAYS")
	v.BindEnv("siteid", "TRAFFICLENS_SITE_ID")
	v.BindEnv("credentialsfile", "TRAFFICLENS_CREDENTIALS_FILE", "GOOGLE_APPLICATION_CREDENTIALS")
	v.BindEnv("timezone", "TRAFFICLENS_TIMEZONE")
	v.BindEnv("requesttimeoutseconds", "TRAFFICLENS_REQUEST_TIMEOUT_SECONDS")
	v.BindEnv("defaultnumberofdays", "TRAFFICLENS_DEFAULT_NUMBER_OF_DAYS")
	v.BindEnv("defaultmaxresults", "TRAFFICLENS_DEFAULT_MAX_RESULTS")
	v.BindEnv("overviewworkers", "TRAFFICLENS_OVERVIEW_WORKERS")
	v.BindEnv("apikey", "TRAFFICLENS_API_KEY")

	v.BindEnv("configfile", "TRAFFICLENS_CONFIG_FILE")
	if file := v.GetString("configfile"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return c, nil
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	validLevels := map[LogLevel]bool{
		LogLevelDebug: true,
		LogLevelInfo:  true,
		LogLevelWarn:  true,
		LogLevelError: true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	if _, err := timeframe.LoadLocation(c.Timezone); err != nil {
		return err
	}

	if c.DefaultNumberOfDays < 0 {
		return fmt.Errorf("default number of days must not be negative: %d", c.DefaultNumberOfDays)
	}
	if c.DefaultMaxResults < 1 {
		return fmt.Errorf("default max results must be positive: %d", c.DefaultMaxResults)
	}

	return nil
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest returns true if the environment is test
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

// GetPort returns the HTTP server port (implements cartridge.Config interface).
func (c *Config) GetPort() string {
	return c.AppPort
}

// GetPublicDirectory implements cartridge.Config. No static assets are served.
func (c *Config) GetPublicDirectory() string {
	return ""
}

// GetAssetsPrefix implements cartridge.Config. No static assets are served.
func (c *Config) GetAssetsPrefix() string {
	return ""
}

// IsEnabled returns true when a site ID is configured.
func (c *Config) IsEnabled() bool {
	return c.SiteID != ""
}

// GetLocation returns the timezone that day boundaries are computed in.
// validate has already rejected unknown zones.
func (c *Config) GetLocation() *time.Location {
	loc, err := timeframe.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// GetRequestTimeout returns how long a single reporting API call may take.
func (c *Config) GetRequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// GetLogLevel returns the log level as a string (implements cartridge.LogConfigProvider).
func (c *Config) GetLogLevel() string {
	return string(c.LogLevel)
}

// GetLogDirectory returns the logs directory (implements cartridge.LogConfigProvider).
func (c *Config) GetLogDirectory() string {
	return c.LogsDirectory
}

// GetLogMaxSizeMB returns the max log file size in MB (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxSizeMB() int {
	return c.LogsMaxSizeInMb
}

// GetLogMaxBackups returns the max number of log backups (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxBackups() int {
	return c.LogsMaxBackups
}

// GetLogMaxAgeDays returns the max age in days for log files (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxAgeDays() int {
	return c.LogsMaxAgeInDays
}

// GetAppName returns the application name, used for the log file name (implements cartridge.LogConfigProvider).
func (c *Config) GetAppName() string {
	return c.AppName
}

// Reset clears the cached configuration; intended for tests.
func Reset() {
	once = sync.Once{}
	cfg = nil
}
