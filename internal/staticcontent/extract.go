package staticcontent

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Assets holds the stylesheet and script URLs referenced by a page.
type Assets struct {
	Styles  []string
	Scripts []string
}

// ExtractAssets collects stylesheet hrefs containing ".css" and script srcs
// containing ".js", in document order. Matching is case-insensitive.
func ExtractAssets(html string) (Assets, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Assets{}, fmt.Errorf("parsing page html: %w", err)
	}

	var a Assets
	doc.Find("link[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if strings.Contains(strings.ToLower(href), ".css") {
			a.Styles = append(a.Styles, href)
		}
	})
	doc.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if strings.Contains(strings.ToLower(src), ".js") {
			a.Scripts = append(a.Scripts, src)
		}
	})
	return a, nil
}
