package widgets

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/gmg-digital/staticembed/internal/dom"
)

const activeClass = "elementor-active"

// Accordion normalizes accordion panels so each matches its title state.
type Accordion struct{}

func (Accordion) Name() string   { return "accordion" }
func (Accordion) Script() string { return "initializeAccordion.js" }

func (Accordion) Init(_ context.Context, t Target) error {
	t.Root.Find(".elementor-tab-title").Each(func(_ int, title *goquery.Selection) {
		setPanel(title, title.HasClass(activeClass))
	})
	return nil
}

// Toggle opens a closed panel or closes an open one.
func (Accordion) Toggle(title *goquery.Selection) {
	if title.HasClass(activeClass) {
		title.RemoveClass(activeClass)
		setPanel(title, false)
		return
	}
	title.AddClass(activeClass)
	setPanel(title, true)
}

func setPanel(title *goquery.Selection, open bool) {
	content := title.Next()
	if content.Length() == 0 {
		return
	}
	if open {
		content.RemoveAttr("hidden")
		dom.SetStyle(content, "display", "block")
		return
	}
	content.SetAttr("hidden", "hidden")
	dom.SetStyle(content, "display", "none")
}

// MobileMenu only loads the browser-side menu fix, which depends on live
// layout timing.
type MobileMenu struct{}

func (MobileMenu) Name() string                       { return "mobile-menu" }
func (MobileMenu) Script() string                     { return "mobileMenuFixScript.js" }
func (MobileMenu) Init(context.Context, Target) error { return nil }
