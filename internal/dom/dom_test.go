package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html><html><head><title>t</title></head><body>
<div class="elementor-content" data-elementor-id="elementor-8208"></div>
<div class="loading-container" style="display: block"><iframe class="loading-iframe"></iframe></div>
</body></html>`

func TestAttachShadow(t *testing.T) {
	doc, err := Parse(page)
	require.NoError(t, err)
	host := doc.Find("[data-elementor-id]")

	root, err := AttachShadow(host)
	require.NoError(t, err)
	assert.Equal(t, 1, root.Length())
	mode, _ := root.Attr("shadowrootmode")
	assert.Equal(t, "open", mode)

	_, err = AttachShadow(host)
	assert.ErrorIs(t, err, ErrShadowAttached)

	_, err = AttachShadow(doc.Find(".missing"))
	assert.Error(t, err)
}

func TestRenderRoundTripKeepsShadowRoot(t *testing.T) {
	doc, err := Parse(page)
	require.NoError(t, err)
	root, err := AttachShadow(doc.Find("[data-elementor-id]"))
	require.NoError(t, err)
	root.AppendHtml(`<div><p class="inner">hi</p></div>`)

	out, err := Render(doc)
	require.NoError(t, err)
	assert.Contains(t, out, `<template shadowrootmode="open"><div><p class="inner">hi</p></div></template>`)

	reparsed, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, 1, ShadowRoot(reparsed.Find("[data-elementor-id]")).Find(".inner").Length())
	assert.Zero(t, HostFind(reparsed, ".inner").Length())
}

func TestSetStyle(t *testing.T) {
	doc, err := Parse(page)
	require.NoError(t, err)
	lc := doc.Find(".loading-container")

	SetStyle(lc, "position", "relative", "Display", "none")
	assert.Equal(t, "none", Style(lc, "display"))
	assert.Equal(t, "relative", Style(lc, "position"))
	style, _ := lc.Attr("style")
	assert.Equal(t, "display: none; position: relative;", style)

	Show(lc, "")
	assert.Equal(t, "block", Style(lc, "display"))

	SetStyle(lc, "display", "", "position", "")
	_, ok := lc.Attr("style")
	assert.False(t, ok)
}

func TestEnsureScriptAndStyleOnce(t *testing.T) {
	doc, err := Parse(page)
	require.NoError(t, err)

	assert.True(t, EnsureScript(doc, Head(doc), "https://assets.example.com/a.js", true))
	assert.False(t, EnsureScript(doc, Body(doc), "https://assets.example.com/a.js", false))
	assert.Equal(t, 1, doc.Find(`script[src="https://assets.example.com/a.js"]`).Length())
	_, async := doc.Find("head script").Attr("async")
	assert.True(t, async)

	assert.True(t, EnsureStyle(doc, "layout", "body{}"))
	assert.False(t, EnsureStyle(doc, "layout", "body{}"))
	assert.Equal(t, 1, doc.Find("head style").Length())
	assert.Equal(t, "body{}", doc.Find("head style").Text())
}

func TestHeadCreatedWhenMissing(t *testing.T) {
	doc, err := Parse(`<p>x</p>`)
	require.NoError(t, err)
	assert.Equal(t, 1, Head(doc).Length())
}
