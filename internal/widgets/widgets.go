// Package widgets runs the post-load initializers over a freshly mounted
// fragment. Each initializer also references its browser script so the
// client-side behaviour is still loaded on the rendered page.
package widgets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/gmg-digital/staticembed/internal/config"
	"github.com/gmg-digital/staticembed/internal/dom"
)

// Target is the mounted fragment an initializer works on.
type Target struct {
	Doc  *goquery.Document
	Host *goquery.Selection
	Root *goquery.Selection
}

// Initializer prepares one kind of widget inside a fragment.
type Initializer interface {
	Name() string
	Script() string
	Init(ctx context.Context, t Target) error
}

// Chain runs initializers in order, isolating their failures.
type Chain struct {
	assetBase string
	inits     []Initializer
	logger    *zap.Logger
}

// NewChain builds the standard initializer chain.
func NewChain(cfg config.WidgetsConfig, logger *zap.Logger) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return NewCustomChain(cfg.AssetBaseURL, logger,
		&Reviews{logger: logger},
		Accordion{},
		MobileMenu{},
		&AnchorFix{logger: logger},
		&EVPopup{FormURL: cfg.PopupFormURL, logger: logger},
		&YouTube{Origin: cfg.Origin},
	)
}

// NewCustomChain builds a chain from explicit initializers.
func NewCustomChain(assetBase string, logger *zap.Logger, inits ...Initializer) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{assetBase: assetBase, inits: inits, logger: logger}
}

// ScriptURL resolves a script file name against the asset base URL.
func (c *Chain) ScriptURL(name string) string {
	if c.assetBase == "" {
		return name
	}
	return strings.TrimSuffix(c.assetBase, "/") + "/" + name
}

// AppendScripts adds async script tags for the named files to the head.
func (c *Chain) AppendScripts(doc *goquery.Document, names ...string) {
	for _, name := range names {
		dom.EnsureScript(doc, dom.Head(doc), c.ScriptURL(name), true)
	}
}

// Run executes every initializer. Failures are logged and joined into the
// returned error; they never stop the chain.
func (c *Chain) Run(ctx context.Context, t Target) error {
	var errs []error
	for _, w := range c.inits {
		if script := w.Script(); script != "" {
			c.AppendScripts(t.Doc, script)
		}
		if err := runIsolated(ctx, w, t); err != nil {
			c.logger.Error("widget initializer failed", zap.String("widget", w.Name()), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", w.Name(), err))
			continue
		}
		c.logger.Debug("widget initialized", zap.String("widget", w.Name()))
	}
	return errors.Join(errs...)
}

func runIsolated(ctx context.Context, w Initializer, t Target) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.Init(ctx, t)
}
