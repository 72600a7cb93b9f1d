package widgets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gmg-digital/staticembed/internal/dom"
)

const embedParams = "?controls=1&rel=0&playsinline=0&modestbranding=0&autoplay=1&enablejsapi=1"

// YouTube prepares lazy video embeds: the play button carries the embed URL
// and Activate swaps the overlay for the player.
type YouTube struct {
	Origin string
}

func (*YouTube) Name() string   { return "youtube" }
func (*YouTube) Script() string { return "youtubeVideoFix.js" }

func (y *YouTube) Init(_ context.Context, t Target) error {
	var errs []error
	t.Root.Find(".elementor-custom-embed-play").Each(func(_ int, play *goquery.Selection) {
		widget := play.Closest(".elementor-widget-video[data-settings]")
		if widget.Length() == 0 {
			errs = append(errs, errors.New("video widget element with data-settings not found"))
			return
		}
		raw, _ := widget.Attr("data-settings")
		var settings struct {
			YouTubeURL string `json:"youtube_url"`
		}
		if err := json.Unmarshal([]byte(raw), &settings); err != nil {
			errs = append(errs, fmt.Errorf("decoding video settings: %w", err))
			return
		}
		if settings.YouTubeURL == "" {
			errs = append(errs, errors.New("youtube url not found in widget settings"))
			return
		}
		play.SetAttr("data-embed-src", EmbedURL(settings.YouTubeURL, y.Origin))
	})
	return errors.Join(errs...)
}

// Activate performs the play click: the overlay is removed and, when the
// video container holds no player yet, the embed iframe replaces its content.
func (y *YouTube) Activate(play *goquery.Selection) error {
	src, ok := play.Attr("data-embed-src")
	if !ok {
		return errors.New("play button has no embed url")
	}
	widget := play.Closest(".elementor-widget-video")
	container := widget.Find(".elementor-video").First()
	if container.Length() == 0 {
		return errors.New("video container not found")
	}
	widget.Find(".elementor-custom-embed-image-overlay").Remove()

	if container.Find("iframe").Length() > 0 {
		return nil
	}
	container.Empty()
	container.AppendNodes(dom.Element("iframe",
		"src", src,
		"frameborder", "0",
		"allow", "accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture; web-share",
		"allowfullscreen", "",
		"referrerpolicy", "strict-origin-when-cross-origin",
		"style", "width: 100%; height: 360px; max-height: 500px;",
	))
	return nil
}

// EmbedURL converts a watch URL into an autoplaying embed URL.
func EmbedURL(youtubeURL, origin string) string {
	return strings.Replace(youtubeURL, "watch?v=", "embed/", 1) + embedParams + "&origin=" + encodeURIComponent(origin)
}
