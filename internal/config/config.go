package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/zjy-dev/bazel-lcov/internal/demangle"
)

// EnvPrefix is prepended to every environment override, e.g.
// BAZEL_LCOV_DEMANGLE_CACHE_SIZE for demangle.cache_size.
const EnvPrefix = "BAZEL_LCOV"

// Config is the top-level configuration for the bazel-lcov tool.
type Config struct {
	LogLevel   string         `mapstructure:"log_level"`
	LogDir     string         `mapstructure:"log_dir"` // empty logs to stderr
	BaseFolder string         `mapstructure:"base_folder"`
	Demangle   DemangleConfig `mapstructure:"demangle"`
	Output     OutputConfig   `mapstructure:"output"`
}

// DemangleConfig holds the external demangler settings.
type DemangleConfig struct {
	Rustfilt      string `mapstructure:"rustfilt"`
	Cxxfilt       string `mapstructure:"cxxfilt"`
	ExternalTools bool   `mapstructure:"external_tools"`
	CacheSize     int    `mapstructure:"cache_size"`
}

// OutputConfig holds report rendering settings.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// DemangleOptions converts the demangler settings for demangle.Probe.
func (c *Config) DemangleOptions() demangle.Options {
	return demangle.Options{
		Rustfilt:      c.Demangle.Rustfilt,
		Cxxfilt:       c.Demangle.Cxxfilt,
		ExternalTools: c.Demangle.ExternalTools,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "")
	v.SetDefault("base_folder", ".")
	v.SetDefault("demangle.rustfilt", demangle.DefaultRustfilt)
	v.SetDefault("demangle.cxxfilt", demangle.DefaultCxxfilt)
	v.SetDefault("demangle.external_tools", true)
	v.SetDefault("demangle.cache_size", 4096)
	v.SetDefault("output.format", "text")
}

func addConfigPaths(v *viper.Viper) {
	v.AddConfigPath("configs")       // working directory
	v.AddConfigPath("../configs")    // go test inside a package
	v.AddConfigPath("../../configs") // nested packages
}

// LoadConfig builds the effective configuration from defaults, an optional
// configs/config.yaml, a .env file in the working directory and BAZEL_LCOV_*
// environment variables, in increasing order of precedence.
func LoadConfig() (*Config, error) {
	// A missing .env is normal; variables already set are never overridden.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	addConfigPaths(v)
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}
	return &cfg, nil
}
