// Package config loads uptag settings from defaults, an optional YAML file,
// UPTAG_* environment variables and command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/chis/uptag/internal/logging"
	"github.com/chis/uptag/internal/registry"
	"github.com/chis/uptag/internal/update"
)

// EnvPrefix prefixes every environment variable, e.g. UPTAG_SEARCH_LIMIT.
const EnvPrefix = "UPTAG"

// Configuration keys.
const (
	KeySearchLimit  = "search_limit"
	KeyConcurrency  = "concurrency"
	KeyPageSize     = "page_size"
	KeyTimeout      = "timeout"
	KeyCacheTTL     = "cache_ttl"
	KeyRateLimit    = "rate_limit"
	KeyDockerHubURL = "docker_hub_url"
	KeyLogLevel     = "log_level"
	KeyLogFormat    = "log_format"
	KeyOutput       = "output"
	KeyMetricsFile  = "metrics_file"
)

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config is the resolved configuration of a run.
type Config struct {
	// SearchLimit is the number of tags examined per image
	SearchLimit int `mapstructure:"search_limit"`

	// Concurrency is the number of images checked in parallel
	Concurrency int `mapstructure:"concurrency"`

	PageSize     int           `mapstructure:"page_size"`
	Timeout      time.Duration `mapstructure:"timeout"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	RateLimit    time.Duration `mapstructure:"rate_limit"`
	DockerHubURL string        `mapstructure:"docker_hub_url"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// Output is either "text" or "json"
	Output string `mapstructure:"output"`

	// MetricsFile receives Prometheus metrics at the end of a run. Empty disables it.
	MetricsFile string `mapstructure:"metrics_file"`
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeySearchLimit, update.DefaultSearchLimit)
	v.SetDefault(KeyConcurrency, update.DefaultMaxConcurrency)
	v.SetDefault(KeyPageSize, registry.DefaultPageSize)
	v.SetDefault(KeyTimeout, registry.DefaultHTTPTimeout)
	v.SetDefault(KeyCacheTTL, registry.DefaultCacheTTL)
	v.SetDefault(KeyRateLimit, registry.DefaultRateLimitInterval)
	v.SetDefault(KeyDockerHubURL, registry.DefaultDockerHubURL)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyOutput, OutputText)
	v.SetDefault(KeyMetricsFile, "")
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"search-limit": KeySearchLimit,
	"concurrency":  KeyConcurrency,
	"log-level":    KeyLogLevel,
	"log-format":   KeyLogFormat,
	"output":       KeyOutput,
	"metrics-file": KeyMetricsFile,
}

// Load resolves the configuration. Precedence, highest first: flags that were
// set, environment, config file, defaults. configFile may be empty.
func Load(fs afero.Fs, flags *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	result := cfg.Validate()
	for _, w := range result.Warnings {
		logging.Warn("Configuration: %s", w)
	}
	if !result.IsValid() {
		return nil, result
	}
	return &cfg, nil
}

// Registry returns the registry client settings.
func (c *Config) Registry() registry.Config {
	return registry.Config{
		DockerHubURL:      c.DockerHubURL,
		PageSize:          c.PageSize,
		Timeout:           c.Timeout,
		CacheTTL:          c.CacheTTL,
		RateLimitInterval: c.RateLimit,
	}
}
