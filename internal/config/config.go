package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides. Nested keys use a double
// underscore: STATICEMBED_WEBHOOK__URL -> webhook.url.
const EnvPrefix = "STATICEMBED_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (STATICEMBED_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if err := requireURL("content.base_url", c.Content.BaseURL); err != nil {
		return err
	}
	if c.Webhook.URL != "" {
		if err := requireURL("webhook.url", c.Webhook.URL); err != nil {
			return err
		}
	}
	if c.Bootstrap.MaxRetries < 0 {
		return fmt.Errorf("bootstrap.max_retries must be non-negative")
	}
	if c.Bootstrap.InitialDelay < 0 {
		return fmt.Errorf("bootstrap.initial_delay must be non-negative")
	}
	if !doublestar.ValidatePattern(c.Bootstrap.ChargingStationsPattern) {
		return fmt.Errorf("invalid bootstrap.charging_stations_pattern %q", c.Bootstrap.ChargingStationsPattern)
	}
	if c.Generator.RegenDebounce < 0 {
		return fmt.Errorf("generator.regen_debounce must be non-negative")
	}
	return nil
}

func requireURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid %s %q: must be an absolute URL", field, raw)
	}
	return nil
}
