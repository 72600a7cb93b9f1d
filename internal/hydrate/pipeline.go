package hydrate

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/gmg-digital/staticembed/internal/config"
	"github.com/gmg-digital/staticembed/internal/dom"
	"github.com/gmg-digital/staticembed/internal/logging"
	"github.com/gmg-digital/staticembed/internal/platform"
	"github.com/gmg-digital/staticembed/internal/reports"
	"github.com/gmg-digital/staticembed/internal/sheets"
	"github.com/gmg-digital/staticembed/internal/widgets"
)

// Request is one page to hydrate.
type Request struct {
	HTML      string
	PageName  string
	PageURL   string
	UserAgent string
}

// Result is the hydrated page.
type Result struct {
	HTML string
	Mode Mode
}

// Pipeline hydrates complete host pages.
type Pipeline struct {
	bootstrap *Bootstrap
	fetcher   sheets.Fetcher
	logger    *zap.Logger
}

// New wires a Pipeline from configuration.
func New(cfg *config.Config, reporter reports.Reporter, pl platform.Loader, logger *zap.Logger) *Pipeline {
	logger = logging.OrNop(logger).Named("hydrate")
	opts := OptionsFromConfig(cfg)
	chain := widgets.NewChain(cfg.Widgets, logger.Named("widgets"))
	loader := NewLoader(opts, reporter, chain, logger)
	if pl == nil {
		pl = platform.NewHTTPLoader(cfg.Bootstrap.PlatformURL, opts.RequestTimeout)
	}
	return NewPipeline(NewBootstrap(opts, pl, loader, chain, logger), sheets.NewClient(&http.Client{Timeout: loader.client.Timeout}), logger)
}

// NewPipeline assembles a Pipeline from its parts.
func NewPipeline(b *Bootstrap, fetcher sheets.Fetcher, logger *zap.Logger) *Pipeline {
	return &Pipeline{bootstrap: b, fetcher: fetcher, logger: logging.OrNop(logger)}
}

// Hydrate parses the host page, loads every container and renders the result.
func (p *Pipeline) Hydrate(ctx context.Context, req Request) (*Result, error) {
	doc, err := dom.Parse(req.HTML)
	if err != nil {
		return nil, fmt.Errorf("parsing host page: %w", err)
	}
	run := NewRun(doc, req.PageURL, p.fetcher, p.logger)

	run.Mutate(func() {
		if hidden := dom.HostFind(doc, ".hidden-content-container").First(); hidden.Length() > 0 {
			dom.Show(hidden, "block")
		}
		if loading := dom.HostFind(doc, ".loading-container").First(); loading.Length() > 0 {
			dom.Show(loading, "block")
		}
	})

	mode := p.bootstrap.Start(ctx, run, req.PageName, req.UserAgent)
	p.logger.Info("page hydrated", zap.String("page_name", req.PageName), zap.String("mode", string(mode)))

	var out string
	run.Mutate(func() { out, err = dom.Render(doc) })
	if err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}
	return &Result{HTML: out, Mode: mode}, nil
}
