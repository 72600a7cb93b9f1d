// Package hydrate renders static content fragments into a host page: it
// fetches each fragment, mounts it in a declarative shadow root, fills
// spreadsheet placeholders and runs the widget initializers.
package hydrate

import (
	"time"

	"github.com/gmg-digital/staticembed/internal/config"
)

// Options controls the loader and the platform bootstrap.
type Options struct {
	ContentBaseURL        string
	RequestTimeout        time.Duration
	SlowLoadAfter         time.Duration
	ErrorWidgetURL        string
	LongerThanExpectedURL string

	MaxRetries              int
	InitialDelay            time.Duration
	ChargingStationsPattern string
}

// OptionsFromConfig maps the loaded configuration onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ContentBaseURL:          cfg.Content.BaseURL,
		RequestTimeout:          cfg.Content.RequestTimeout,
		SlowLoadAfter:           cfg.Content.SlowLoadAfter,
		ErrorWidgetURL:          cfg.Widgets.ErrorWidgetURL,
		LongerThanExpectedURL:   cfg.Widgets.LongerThanExpectedURL,
		MaxRetries:              cfg.Bootstrap.MaxRetries,
		InitialDelay:            cfg.Bootstrap.InitialDelay,
		ChargingStationsPattern: cfg.Bootstrap.ChargingStationsPattern,
	}
}
