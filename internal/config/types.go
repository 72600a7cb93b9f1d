package config

import "time"

// Config is the top-level staticembed configuration, corresponding to .staticembed.yml.
type Config struct {
	DataDir   string          `yaml:"data_dir" koanf:"data_dir"`
	LogLevel  string          `yaml:"log_level" koanf:"log_level"`
	Server    ServerConfig    `yaml:"server" koanf:"server"`
	Content   ContentConfig   `yaml:"content" koanf:"content"`
	Webhook   WebhookConfig   `yaml:"webhook" koanf:"webhook"`
	Widgets   WidgetsConfig   `yaml:"widgets" koanf:"widgets"`
	Bootstrap BootstrapConfig `yaml:"bootstrap" koanf:"bootstrap"`
	Generator GeneratorConfig `yaml:"generator" koanf:"generator"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// ContentConfig points the loader at a content API.
type ContentConfig struct {
	BaseURL        string        `yaml:"base_url" koanf:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout" koanf:"request_timeout"`
	SlowLoadAfter  time.Duration `yaml:"slow_load_after" koanf:"slow_load_after"`
}

// WebhookConfig is the error-report destination.
type WebhookConfig struct {
	URL     string        `yaml:"url" koanf:"url"`
	Timeout time.Duration `yaml:"timeout" koanf:"timeout"`
}

// WidgetsConfig holds the external URLs used by the post-load initializers.
type WidgetsConfig struct {
	AssetBaseURL          string `yaml:"asset_base_url" koanf:"asset_base_url"`
	ErrorWidgetURL        string `yaml:"error_widget_url" koanf:"error_widget_url"`
	LongerThanExpectedURL string `yaml:"longer_than_expected_url" koanf:"longer_than_expected_url"`
	PopupFormURL          string `yaml:"popup_form_url" koanf:"popup_form_url"`
	Origin                string `yaml:"origin" koanf:"origin"`
}

// BootstrapConfig controls platform API creation and event handling.
type BootstrapConfig struct {
	PlatformURL             string        `yaml:"platform_url" koanf:"platform_url"`
	MaxRetries              int           `yaml:"max_retries" koanf:"max_retries"`
	InitialDelay            time.Duration `yaml:"initial_delay" koanf:"initial_delay"`
	ChargingStationsPattern string        `yaml:"charging_stations_pattern" koanf:"charging_stations_pattern"`
}

// GeneratorConfig controls page scraping and automatic regeneration.
type GeneratorConfig struct {
	FetchTimeout  time.Duration `yaml:"fetch_timeout" koanf:"fetch_timeout"`
	UserAgent     string        `yaml:"user_agent" koanf:"user_agent"`
	RegenDebounce time.Duration `yaml:"regen_debounce" koanf:"regen_debounce"`
}
