package hydrate

import (
	"sync"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/gmg-digital/staticembed/internal/sheets"
)

// Run is one page load: the host document, the sheet cache shared by its
// fragments and the lock serializing document writes.
type Run struct {
	Doc     *goquery.Document
	PageURL string

	sheets *sheets.Cache
	mu     sync.Mutex
}

// NewRun starts a page load over doc.
func NewRun(doc *goquery.Document, pageURL string, fetcher sheets.Fetcher, logger *zap.Logger) *Run {
	return &Run{Doc: doc, PageURL: pageURL, sheets: sheets.NewCache(fetcher, logger)}
}

// Mutate runs fn while holding the document lock.
func (r *Run) Mutate(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn()
}
