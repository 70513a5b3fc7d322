package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const envPrefix = "DOCRISK"

func newViper(path string) *viper.Viper {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/docrisk")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads configuration from the given file path (or the standard search
// paths when path is empty), layers environment overrides on top, applies
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		// A missing file is acceptable only when no explicit path was
		// given; env vars plus defaults may still form a valid config.
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: failed to read config file: %w", err)
		}
	}

	return unmarshal(v)
}

// Watch re-reads the config file whenever it changes on disk and invokes
// onChange with the freshly validated result.  Invalid updates are dropped
// and the previous configuration stays in effect.
func Watch(path string, onChange func(*Config)) error {
	if path == "" {
		return fmt.Errorf("config: watch requires an explicit config path")
	}
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read config file: %w", err)
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshal(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
