package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type declaration struct {
	prop, value string
}

func parseStyle(s string) []declaration {
	var out []declaration
	for _, part := range strings.Split(s, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" {
			continue
		}
		out = append(out, declaration{prop: prop, value: strings.TrimSpace(value)})
	}
	return out
}

func formatStyle(decls []declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.prop+": "+d.value+";")
	}
	return strings.Join(parts, " ")
}

// SetStyle sets inline CSS properties on every element of sel. pairs are
// property/value pairs; an empty value removes the property.
func SetStyle(sel *goquery.Selection, pairs ...string) {
	sel.Each(func(_ int, s *goquery.Selection) {
		current, _ := s.Attr("style")
		decls := parseStyle(current)
		for i := 0; i+1 < len(pairs); i += 2 {
			decls = setDecl(decls, strings.ToLower(pairs[i]), pairs[i+1])
		}
		if len(decls) == 0 {
			s.RemoveAttr("style")
			return
		}
		s.SetAttr("style", formatStyle(decls))
	})
}

func setDecl(decls []declaration, prop, value string) []declaration {
	for i, d := range decls {
		if d.prop != prop {
			continue
		}
		if value == "" {
			return append(decls[:i], decls[i+1:]...)
		}
		decls[i].value = value
		return decls
	}
	if value == "" {
		return decls
	}
	return append(decls, declaration{prop: prop, value: value})
}

// Style returns the inline value of prop on the first element of sel.
func Style(sel *goquery.Selection, prop string) string {
	current, _ := sel.First().Attr("style")
	prop = strings.ToLower(prop)
	for _, d := range parseStyle(current) {
		if d.prop == prop {
			return d.value
		}
	}
	return ""
}

// Hide sets display:none.
func Hide(sel *goquery.Selection) { SetStyle(sel, "display", "none") }

// Show sets display to the given value, "block" when empty.
func Show(sel *goquery.Selection, display string) {
	if display == "" {
		display = "block"
	}
	SetStyle(sel, "display", display)
}
