package widgets

import (
	"errors"

	"github.com/PuerkitoBio/goquery"

	"github.com/gmg-digital/staticembed/internal/dom"
)

// Scripts appended after every container of a charging-stations page loaded.
const (
	ChargingStationsScript = "charging-stations-widget-relocate.js"
	EVPopupScript          = "evModelInfoRequestPopup.js"
)

// RelocateChargingStations moves the station locator rendered in the host
// page into its placeholder inside the fragment.
func RelocateChargingStations(doc *goquery.Document, root *goquery.Selection) error {
	host := dom.HostFind(doc, "#afdc-stations").First()
	if host.Length() == 0 {
		return errors.New("station locator host #afdc-stations not found")
	}
	placeholder := root.Find("#afdc-stations-loading").First()
	if placeholder.Length() == 0 {
		return errors.New("placeholder #afdc-stations-loading not found in fragment")
	}

	source := host
	if shadow := dom.ShadowRoot(host); shadow.Length() > 0 {
		source = shadow
	}
	placeholder.AppendSelection(source.Contents())
	return nil
}
