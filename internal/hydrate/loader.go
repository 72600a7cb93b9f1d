package hydrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/gmg-digital/staticembed/internal/dom"
	"github.com/gmg-digital/staticembed/internal/logging"
	"github.com/gmg-digital/staticembed/internal/reports"
	"github.com/gmg-digital/staticembed/internal/staticcontent"
	"github.com/gmg-digital/staticembed/internal/widgets"
)

// ContentPath is the content API route, relative to the content base URL.
const ContentPath = "/wp-json/elementor/v1/static-content/"

const layoutCSS = `
body, html {
  overflow-x: hidden !important;
}
.container-max-md.page-section.p-4.p-md-5.px-lg-6.px-xl-8 {
  padding: 0 !important;
  margin: 0 !important;
  max-width: 100% !important;
  box-sizing: border-box !important;
}
`

// Outcome is how a single container load ended.
type Outcome int

const (
	OutcomeMounted Outcome = iota
	OutcomeEmpty
	OutcomeNotFound
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMounted:
		return "mounted"
	case OutcomeEmpty:
		return "empty"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "failed"
	}
}

type contentResponse struct {
	staticcontent.Fragment
	Message string `json:"message"`
}

// Loader fetches fragments from the content API and mounts them.
type Loader struct {
	client   *http.Client
	opts     Options
	reporter reports.Reporter
	widgets  *widgets.Chain
	logger   *zap.Logger
	now      func() time.Time
}

// NewLoader creates a Loader. reporter and chain may be nil.
func NewLoader(opts Options, reporter reports.Reporter, chain *widgets.Chain, logger *zap.Logger) *Loader {
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if reporter == nil {
		reporter = reports.Discard{}
	}
	if chain == nil {
		chain = widgets.NewCustomChain("", logger)
	}
	return &Loader{
		client:   &http.Client{Timeout: timeout},
		opts:     opts,
		reporter: reporter,
		widgets:  chain,
		logger:   logging.OrNop(logger),
		now:      time.Now,
	}
}

// Load fetches the fragment for rawID and mounts it in host. Failures are
// logged and reported, never returned.
func (l *Loader) Load(ctx context.Context, run *Run, host *goquery.Selection, rawID string) Outcome {
	logger := logging.FromContext(ctx, l.logger).With(zap.String("page_id", rawID))
	pageID := staticcontent.NormalizePageID(rawID)

	if l.opts.SlowLoadAfter > 0 && l.opts.LongerThanExpectedURL != "" {
		timer := time.AfterFunc(l.opts.SlowLoadAfter, func() {
			logger.Warn("fragment load is slow, switching loading iframe")
			run.Mutate(func() {
				dom.HostFind(run.Doc, ".loading-container .loading-iframe").First().
					SetAttr("src", l.opts.LongerThanExpectedURL)
			})
		})
		defer timer.Stop()
	}

	status, data, err := l.fetch(ctx, pageID)
	if err != nil {
		l.reportException(ctx, run, rawID, err)
		return OutcomeFailed
	}

	switch {
	case status == http.StatusNotFound:
		l.report(ctx, run, rawID, status, messageOr(data.Message, "Page not found"))
		run.Mutate(func() { l.showErrorWidget(run.Doc) })
		return OutcomeNotFound
	case status != http.StatusOK:
		l.report(ctx, run, rawID, status, messageOr(data.Message, "Unknown error"))
		return OutcomeFailed
	case data.Content == "":
		logger.Error("no content found", zap.String("normalized_id", pageID))
		return OutcomeEmpty
	}

	var root *goquery.Selection
	run.Mutate(func() { root, err = l.mount(run.Doc, host, data.Fragment) })
	if err != nil {
		l.reportException(ctx, run, rawID, err)
		return OutcomeFailed
	}
	logger.Info("fragment mounted",
		zap.Int("styles", len(data.Styles)),
		zap.Int("scripts", len(data.Scripts)))

	l.hydrateSheets(ctx, run, root, logger)

	run.Mutate(func() {
		// Initializer failures are logged by the chain.
		_ = l.widgets.Run(ctx, widgets.Target{Doc: run.Doc, Host: host, Root: root})
	})
	return OutcomeMounted
}

func (l *Loader) fetch(ctx context.Context, pageID string) (int, contentResponse, error) {
	var data contentResponse
	url := strings.TrimSuffix(l.opts.ContentBaseURL, "/") + ContentPath + pageID +
		"?_=" + strconv.FormatInt(l.now().UnixMilli(), 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, data, fmt.Errorf("building content request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return 0, data, fmt.Errorf("fetching static content: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, data, fmt.Errorf("reading static content: %w", err)
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return 0, data, fmt.Errorf("decoding static content (status %d): %w", resp.StatusCode, err)
	}
	return resp.StatusCode, data, nil
}

func (l *Loader) mount(doc *goquery.Document, host *goquery.Selection, f staticcontent.Fragment) (*goquery.Selection, error) {
	root, err := dom.AttachShadow(host)
	if err != nil {
		return nil, err
	}

	root.AppendNodes(dom.Element("div"))
	root.Children().Last().SetHtml(f.Content)
	for _, href := range f.Styles {
		root.AppendNodes(dom.Element("link", "rel", "stylesheet", "href", href))
	}
	for _, src := range f.Scripts {
		root.AppendNodes(dom.Element("script", "src", src))
	}

	dom.EnsureStyle(doc, "static-content-layout", layoutCSS)
	dom.Hide(dom.HostFind(doc, ".loading-container").First())
	dom.Hide(dom.HostFind(doc, ".hidden-content-container").First())
	return root, nil
}

func (l *Loader) showErrorWidget(doc *goquery.Document) {
	if hidden := dom.HostFind(doc, ".hidden-content-container").First(); hidden.Length() > 0 {
		dom.Hide(hidden)
	}
	loading := dom.HostFind(doc, ".loading-container").First()
	if loading.Length() == 0 {
		l.logger.Error("loading-container not found, cannot show error widget")
		return
	}
	dom.SetStyle(loading,
		"position", "relative",
		"width", "100%",
		"height", "100%",
		"display", "block",
		"padding", "0",
		"margin", "0",
		"overflow", "hidden",
		"background-color", "#fff",
	)
	loading.Empty()
	loading.AppendNodes(dom.Element("iframe",
		"src", l.opts.ErrorWidgetURL,
		"style", "width: 100%; height: 100%; border: none; display: block;",
	))
}

func (l *Loader) report(ctx context.Context, run *Run, pageID string, status int, msg string) {
	l.reporter.Report(ctx, reports.Report{
		Error:     msg,
		Status:    status,
		PageID:    pageID,
		PageURL:   run.PageURL,
		Timestamp: l.now().UTC(),
	})
}

func (l *Loader) reportException(ctx context.Context, run *Run, pageID string, err error) {
	l.reporter.Report(ctx, reports.Report{
		Error:     err.Error(),
		PageID:    pageID,
		PageURL:   run.PageURL,
		Timestamp: l.now().UTC(),
		Stack:     errorChain(err),
	})
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}

// errorChain lists each wrapped error on its own line, outermost first.
func errorChain(err error) string {
	var lines []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		lines = append(lines, fmt.Sprintf("%T: %s", e, e.Error()))
	}
	return strings.Join(lines, "\n")
}
