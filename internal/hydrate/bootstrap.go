package hydrate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gmg-digital/staticembed/internal/dom"
	"github.com/gmg-digital/staticembed/internal/logging"
	"github.com/gmg-digital/staticembed/internal/platform"
	"github.com/gmg-digital/staticembed/internal/widgets"
)

// ContainerSelector matches every element that receives a fragment.
const ContainerSelector = "[data-elementor-id]"

// Mode records how a page load reached its containers.
type Mode string

const (
	ModeDirect   Mode = "direct"
	ModeFallback Mode = "fallback"
	ModePlatform Mode = "platform"
)

// Bootstrap obtains a platform handle and loads containers on page-load events.
type Bootstrap struct {
	platform platform.Loader
	loader   *Loader
	widgets  *widgets.Chain
	opts     Options
	logger   *zap.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewBootstrap creates a Bootstrap.
func NewBootstrap(opts Options, pl platform.Loader, loader *Loader, chain *widgets.Chain, logger *zap.Logger) *Bootstrap {
	return &Bootstrap{
		platform: pl,
		loader:   loader,
		widgets:  chain,
		opts:     opts,
		logger:   logging.OrNop(logger),
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsSafari reports whether a user agent is Safari: "safari" occurs with no
// "chrome" or "android" before it.
func IsSafari(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	idx := strings.Index(ua, "safari")
	if idx < 0 {
		return false
	}
	for i := 0; i < idx; i++ {
		if strings.HasPrefix(ua[i:], "chrome") || strings.HasPrefix(ua[i:], "android") {
			return false
		}
	}
	return true
}

// CreateAPI creates a platform handle, retrying with doubling delays. It
// makes MaxRetries+1 attempts.
func (b *Bootstrap) CreateAPI(ctx context.Context) (platform.API, error) {
	delay := b.opts.InitialDelay
	for retries := b.opts.MaxRetries; ; retries-- {
		b.logger.Debug("creating platform api", zap.Int("retries_left", retries))
		api, err := b.platform.Create(ctx)
		if err == nil {
			return api, nil
		}
		if retries <= 0 {
			return nil, fmt.Errorf("platform api not available after %d attempts: %w", b.opts.MaxRetries+1, err)
		}
		b.logger.Warn("platform api creation failed, retrying",
			zap.Duration("delay", delay), zap.Int("retries_left", retries-1), zap.Error(err))
		if err := b.sleep(ctx, delay); err != nil {
			return nil, err
		}
		delay *= 2
	}
}

// Start hydrates every container of run for a page view.
func (b *Bootstrap) Start(ctx context.Context, run *Run, pageName, userAgent string) Mode {
	if IsSafari(userAgent) {
		b.logger.Info("safari detected, loading static content directly")
		b.loadAll(ctx, run)
		return ModeDirect
	}

	api, err := b.CreateAPI(ctx)
	if err != nil {
		b.logger.Error("platform api unavailable, falling back to direct loading", zap.Error(err))
		b.loadAll(ctx, run)
		return ModeFallback
	}

	unsubscribe := api.Subscribe(platform.PageLoadEvent, func(ctx context.Context, ev platform.Event) {
		b.onPageLoad(ctx, run, ev)
	})
	defer unsubscribe()

	if pub, ok := api.(platform.Publisher); ok {
		pub.Publish(ctx, platform.Event{
			Name:    platform.PageLoadEvent,
			Payload: platform.Payload{PageName: pageName},
		})
	}
	return ModePlatform
}

func (b *Bootstrap) onPageLoad(ctx context.Context, run *Run, ev platform.Event) {
	chargingStations := b.matchesChargingStations(ev.Payload.PageName)
	b.loadAll(ctx, run)
	if !chargingStations {
		return
	}

	b.logger.Info("charging stations page, relocating station widget", zap.String("page_name", ev.Payload.PageName))
	run.Mutate(func() {
		if b.widgets != nil {
			// The popup script is normally in head already from the widget
			// chain; AppendScripts skips it then, so it loads once per document.
			b.widgets.AppendScripts(run.Doc, widgets.ChargingStationsScript, widgets.EVPopupScript)
		}
		root := findPlaceholderRoot(run.Doc)
		if root == nil {
			b.logger.Warn("no mounted fragment holds the station placeholder")
			return
		}
		if err := widgets.RelocateChargingStations(run.Doc, root); err != nil {
			b.logger.Warn("relocating charging stations", zap.Error(err))
		}
	})
}

func (b *Bootstrap) matchesChargingStations(pageName string) bool {
	if pageName == "" || b.opts.ChargingStationsPattern == "" {
		return false
	}
	pattern := b.opts.ChargingStationsPattern
	// Without metacharacters other than surrounding "*" the pattern is a
	// substring match; doublestar's "*" would stop at "/" in page names.
	if core := strings.Trim(pattern, "*"); !strings.ContainsAny(core, `*?[]{}\`) {
		return strings.Contains(pageName, core)
	}
	ok, err := doublestar.Match(pattern, pageName)
	if err != nil {
		b.logger.Warn("invalid charging stations pattern", zap.Error(err))
		return false
	}
	return ok
}

// loadAll loads every container concurrently and waits for all of them.
func (b *Bootstrap) loadAll(ctx context.Context, run *Run) {
	type container struct {
		host *goquery.Selection
		id   string
	}
	var containers []container
	run.Mutate(func() {
		dom.HostFind(run.Doc, ContainerSelector).Each(func(_ int, s *goquery.Selection) {
			if id, _ := s.Attr("data-elementor-id"); id != "" {
				containers = append(containers, container{host: s, id: id})
			}
		})
	})

	var g errgroup.Group
	for _, c := range containers {
		g.Go(func() error {
			outcome := b.loader.Load(ctx, run, c.host, c.id)
			b.logger.Debug("container loaded", zap.String("page_id", c.id), zap.Stringer("outcome", outcome))
			return nil
		})
	}
	_ = g.Wait()
}

func findPlaceholderRoot(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	dom.HostFind(doc, ContainerSelector).EachWithBreak(func(_ int, host *goquery.Selection) bool {
		root := dom.ShadowRoot(host)
		if root.Find("#afdc-stations-loading").Length() > 0 {
			found = root
			return false
		}
		return true
	})
	return found
}
