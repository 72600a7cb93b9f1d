package widgets

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/gmg-digital/staticembed/internal/dom"
)

// ReviewsEmbedScript is the third-party review widget loader.
const ReviewsEmbedScript = "https://embedsocial.com/embedscript/ri.js"

const reviewsCSS = `
.embedsocial-reviews {
  display: block;
  width: 100%;
  height: 100%;
  min-height: 600px;
  overflow: hidden;
}
.embedsocial-reviews iframe {
  display: block;
  width: 100%;
  height: 100vh;
  border: none;
}
body, html {
  margin: 0;
  padding: 0;
  height: 100%;
}
`

// Reviews sizes review embeds in the fragment and the host page.
type Reviews struct {
	logger *zap.Logger
}

func (*Reviews) Name() string   { return "reviews" }
func (*Reviews) Script() string { return "embedSocial.js" }

func (r *Reviews) Init(_ context.Context, t Target) error {
	dom.EnsureStyle(t.Doc, "embedsocial-reviews", reviewsCSS)
	dom.EnsureScript(t.Doc, dom.Body(t.Doc), ReviewsEmbedScript, true)

	elems := t.Root.Find(".embedsocial-reviews").AddSelection(dom.HostFind(t.Doc, ".embedsocial-reviews"))
	elems.Each(func(_ int, el *goquery.Selection) {
		ref, ok := el.Attr("data-ref")
		if !ok || ref == "" {
			r.log().Warn("review embed without data-ref")
			return
		}
		iframe := el.Find("iframe").First()
		if iframe.Length() == 0 {
			r.log().Debug("review embed has no iframe yet", zap.String("ref", ref))
			return
		}
		dom.SetStyle(iframe, "width", "100%", "min-height", "600px", "height", "100vh", "border", "none")
	})
	return nil
}

func (r *Reviews) log() *zap.Logger {
	if r.logger == nil {
		return zap.NewNop()
	}
	return r.logger
}
