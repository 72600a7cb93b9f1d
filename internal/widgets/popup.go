package widgets

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/gmg-digital/staticembed/internal/dom"
)

// PopupLinkPrefix starts every EV information request link.
const PopupLinkPrefix = "#request-information-ev-form"

// EVPopup wires information-request links to the popup form.
type EVPopup struct {
	FormURL string
	logger  *zap.Logger
}

func (*EVPopup) Name() string   { return "ev-popup" }
func (*EVPopup) Script() string { return "evModelInfoRequestPopup.js" }

func (p *EVPopup) Init(_ context.Context, t Target) error {
	if t.Root.Find("#popup-dialog").Length() == 0 {
		t.Root.AppendNodes(popupDialog())
	}

	t.Root.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if !strings.HasPrefix(href, PopupLinkPrefix) {
			return
		}
		params, err := url.ParseQuery(strings.TrimPrefix(href, PopupLinkPrefix+"&"))
		if err != nil {
			p.warn("skipping malformed popup link pairs", zap.String("href", href), zap.Error(err))
		}
		makeName, model := params.Get("make"), params.Get("model")
		if makeName == "" || model == "" {
			p.warn("popup link is missing make or model", zap.String("href", href))
			return
		}
		link.SetAttr("data-popup-url", PopupURL(p.FormURL, makeName, model, params.Get("ddcId")))
	})
	return nil
}

func (p *EVPopup) warn(msg string, fields ...zap.Field) {
	if p.logger != nil {
		p.logger.Warn(msg, fields...)
	}
}

// PopupURL builds the form URL for a vehicle. ddcID is optional.
func PopupURL(formURL, makeName, model, ddcID string) string {
	u := formURL + "?make=" + encodeURIComponent(makeName) + "&model=" + encodeURIComponent(model)
	if ddcID != "" {
		u += "&ddcId=" + encodeURIComponent(ddcID)
	}
	return u
}

// uriComponentUnescapes restores the characters encodeURIComponent leaves
// alone but QueryEscape encodes.
var uriComponentUnescapes = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

func encodeURIComponent(s string) string {
	return uriComponentUnescapes.Replace(url.QueryEscape(s))
}

func popupDialog() *html.Node {
	iframe := dom.Element("iframe", "id", "popup-iframe", "src", "",
		"style", "width: 100%; height: 100%; border: none;")
	closeBtn := dom.WithChildren(dom.Element("button", "id", "close-popup", "type", "button",
		"style", "position: absolute; top: 10px; right: 10px; background: none; color: black; border: none; font-size: 20px; cursor: pointer;"),
		dom.Text("×"))
	content := dom.WithChildren(dom.Element("div", "id", "dialog-content",
		"style", "position: relative; width: 90%; max-width: 600px; background: white; border-radius: 8px; overflow: hidden; height: 600px;"),
		iframe, closeBtn)
	dialog := dom.WithChildren(dom.Element("div", "id", "popup-dialog",
		"style", "display: none; position: fixed; top: 0; left: 0; width: 100%; height: 100%; background: rgba(0, 0, 0, 0.8); justify-content: center; align-items: center; z-index: 99999;"),
		content)
	return dialog
}
