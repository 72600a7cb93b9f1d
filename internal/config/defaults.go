package config

import "time"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir:  "data",
		LogLevel: "info",
		Server: ServerConfig{
			Port:     8080,
			AllowAll: true,
		},
		Content: ContentConfig{
			BaseURL:        "https://digitalteamass.wpenginepowered.com",
			RequestTimeout: 15 * time.Second,
			SlowLoadAfter:  10 * time.Second,
		},
		Webhook: WebhookConfig{
			Timeout: 10 * time.Second,
		},
		Widgets: WidgetsConfig{
			AssetBaseURL:          "https://assets.garberauto.com/assets/js/",
			ErrorWidgetURL:        "https://gmg-digital.vercel.app/widgets/error",
			LongerThanExpectedURL: "https://gmg-digital.vercel.app/longer-than-expected",
			PopupFormURL:          "https://gmg-digital.vercel.app/ev-info-request",
		},
		Bootstrap: BootstrapConfig{
			MaxRetries:              2,
			InitialDelay:            time.Second,
			ChargingStationsPattern: "*CHARGING_STATIONS*",
		},
		Generator: GeneratorConfig{
			FetchTimeout: 30 * time.Second,
			UserAgent:    "staticembed/1.0",
		},
	}
}

// debounceChoices backs the wizard's regeneration prompt.
var debounceChoices = []time.Duration{0, 30 * time.Second, 5 * time.Minute}
