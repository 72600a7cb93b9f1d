package hydrate

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/gmg-digital/staticembed/internal/dom"
	"github.com/gmg-digital/staticembed/internal/sheets"
)

// Element attributes that bind an element to a spreadsheet row.
const (
	AttrSheetURL    = "data-sheetdb-url"
	AttrSheetName   = "data-sheetdb-sheet"
	AttrSheetSearch = "data-sheetdb-search"
)

const responsiveCSS = `
@media (min-width: 769px) {
  [data-sheetdb-url] {
    white-space: normal;
    word-break: keep-all;
    overflow-wrap: break-word;
  }
}
`

var placeholderRE = regexp.MustCompile(`\{\{\w+\}\}`)

type sheetBinding struct {
	el                 *goquery.Selection
	url, sheet, search string
	complete           bool
}

// hydrateSheets fills placeholders of every sheet-bound element in root,
// one element at a time.
func (l *Loader) hydrateSheets(ctx context.Context, run *Run, root *goquery.Selection, logger *zap.Logger) {
	var bindings []sheetBinding
	run.Mutate(func() {
		root.Find("[" + AttrSheetURL + "]").Each(func(_ int, el *goquery.Selection) {
			b := sheetBinding{el: el}
			b.url, _ = el.Attr(AttrSheetURL)
			b.sheet, _ = el.Attr(AttrSheetName)
			b.search, _ = el.Attr(AttrSheetSearch)
			b.complete = b.url != "" && b.sheet != "" && b.search != ""
			bindings = append(bindings, b)
		})
	})

	for _, b := range bindings {
		if !b.complete {
			logger.Warn("sheet element is missing data-sheetdb attributes")
			continue
		}

		makeName, model, err := searchParams(b.search)
		if err != nil {
			logger.Debug("malformed pairs in sheet search", zap.String("search", b.search), zap.Error(err))
		}
		if makeName != "" && model != "" {
			if rows, ok := run.sheets.Lookup(ctx, b.url, b.sheet); ok {
				run.Mutate(func() { fillPlaceholders(run.Doc, b.el, rows, makeName, model, logger) })
			}
		}

		run.Mutate(func() {
			if inner, _ := b.el.Html(); strings.Contains(inner, "{{") {
				b.el.Empty()
				logger.Debug("cleared element with unmatched placeholders", zap.String("sheet", b.sheet))
			}
		})
	}
}

// searchParams reads Make and Model from a query string, with or without
// a leading "?". Malformed pairs are skipped; the error reports the first one.
func searchParams(search string) (makeName, model string, err error) {
	q, err := url.ParseQuery(strings.TrimPrefix(search, "?"))
	return q.Get("Make"), q.Get("Model"), err
}

// fillPlaceholders substitutes the first matching row into el. Only the first
// occurrence of each placeholder is replaced; leftovers are stripped.
func fillPlaceholders(doc *goquery.Document, el *goquery.Selection, rows []sheets.Row, makeName, model string, logger *zap.Logger) {
	inner, err := el.Html()
	if err != nil {
		logger.Warn("reading sheet element html", zap.Error(err))
		return
	}

	row, found := sheets.FindMatch(rows, makeName, model)
	if !found {
		logger.Warn("no matching sheet entry, clearing placeholders",
			zap.String("make", makeName), zap.String("model", model))
		el.SetHtml(placeholderRE.ReplaceAllString(inner, ""))
		return
	}

	for _, f := range row.Fields {
		inner = strings.Replace(inner, "{{"+f.Key+"}}", f.Value, 1)
	}
	inner = strings.Replace(inner, "{{Disclaimer}}", row.Get("Disclaimer"), 1)
	inner = placeholderRE.ReplaceAllString(inner, "")

	el.SetHtml(inner)
	dom.SetStyle(el, "white-space", "normal", "word-break", "keep-all", "overflow-wrap", "break-word")
	dom.EnsureStyle(doc, "sheetdb-responsive", responsiveCSS)
}
