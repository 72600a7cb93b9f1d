// Package dom holds the small set of document operations the hydration
// pipeline needs on top of goquery: declarative shadow roots, inline style
// editing and idempotent head injection.
package dom

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ShadowRootSelector matches a declarative open shadow root.
const ShadowRootSelector = `template[shadowrootmode]`

// ErrShadowAttached is returned when a host already carries a shadow root.
var ErrShadowAttached = errors.New("element already hosts a shadow root")

// Parse reads a complete HTML document.
func Parse(doc string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(doc))
}

// Render serializes the whole document.
func Render(doc *goquery.Document) (string, error) {
	return goquery.OuterHtml(doc.Selection)
}

// Element builds a detached element node. attrs are key/value pairs.
func Element(tag string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// Text builds a detached text node.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// WithChildren appends children to n and returns it.
func WithChildren(n *html.Node, children ...*html.Node) *html.Node {
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

// ShadowRoot returns the declarative shadow root of host, which may be empty.
func ShadowRoot(host *goquery.Selection) *goquery.Selection {
	return host.ChildrenFiltered(ShadowRootSelector).First()
}

// AttachShadow gives host an open declarative shadow root and returns it.
func AttachShadow(host *goquery.Selection) (*goquery.Selection, error) {
	if host.Length() == 0 {
		return nil, errors.New("attach shadow: no host element")
	}
	if ShadowRoot(host).Length() > 0 {
		return nil, ErrShadowAttached
	}
	host.PrependNodes(Element("template", "shadowrootmode", "open"))
	return ShadowRoot(host), nil
}

// Head returns the document head, creating one when the document lacks it.
func Head(doc *goquery.Document) *goquery.Selection {
	head := doc.Find("head").First()
	if head.Length() > 0 {
		return head
	}
	root := doc.Find("html").First()
	root.PrependNodes(Element("head"))
	return root.ChildrenFiltered("head").First()
}

// Body returns the document body.
func Body(doc *goquery.Document) *goquery.Selection {
	return doc.Find("body").First()
}

// HostFind queries the light DOM of the document, skipping shadow roots.
func HostFind(doc *goquery.Document, selector string) *goquery.Selection {
	return doc.Find(selector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.ParentsFiltered(ShadowRootSelector).Length() == 0
	})
}

// EnsureScript appends <script src> to parent unless the document already
// references src. It reports whether a tag was added.
func EnsureScript(doc *goquery.Document, parent *goquery.Selection, src string, async bool) bool {
	exists := doc.Find("script[src]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("src")
		return v == src
	}).Length() > 0
	if exists {
		return false
	}
	attrs := []string{"src", src}
	if async {
		attrs = append(attrs, "async", "")
	}
	parent.AppendNodes(Element("script", attrs...))
	return true
}

// EnsureStyle appends a <style> block identified by id to the head once.
func EnsureStyle(doc *goquery.Document, id, css string) bool {
	if doc.Find("style[data-staticembed]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("data-staticembed")
		return v == id
	}).Length() > 0 {
		return false
	}
	Head(doc).AppendNodes(WithChildren(Element("style", "data-staticembed", id), Text(css)))
	return true
}
