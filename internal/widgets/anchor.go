package widgets

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// AnchorFix marks in-page links whose targets live inside the fragment so
// the browser script can scroll to them smoothly.
type AnchorFix struct {
	logger *zap.Logger
}

func (*AnchorFix) Name() string   { return "anchor-link-fix" }
func (*AnchorFix) Script() string { return "anchorLinkFix.js" }

func (a *AnchorFix) Init(_ context.Context, t Target) error {
	ids := make(map[string]bool)
	t.Root.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		ids[id] = true
	})

	t.Root.Find(`a[href^="#"]`).Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		target := strings.TrimPrefix(href, "#")
		if target == "" {
			return
		}
		if !ids[target] {
			if a.logger != nil {
				a.logger.Warn("anchor target not found in fragment", zap.String("target", target))
			}
			return
		}
		link.SetAttr("data-smooth-scroll", "true")
	})
	return nil
}
