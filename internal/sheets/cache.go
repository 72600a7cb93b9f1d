package sheets

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Fetcher loads the rows of one sheet.
type Fetcher interface {
	Fetch(ctx context.Context, baseURL, sheet string) ([]Row, error)
}

// Cache memoizes sheet rows by sheet name for the lifetime of one page load.
// Concurrent lookups of the same sheet share a single request and failures
// are not cached.
type Cache struct {
	fetcher Fetcher
	logger  *zap.Logger

	mu    sync.Mutex
	rows  map[string][]Row
	group singleflight.Group
}

// NewCache creates an empty per-run cache.
func NewCache(fetcher Fetcher, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{fetcher: fetcher, logger: logger, rows: make(map[string][]Row)}
}

// Lookup returns the rows of sheet, fetching them from baseURL on first use.
// It returns ok=false when the fetch failed.
func (c *Cache) Lookup(ctx context.Context, baseURL, sheet string) ([]Row, bool) {
	c.mu.Lock()
	rows, hit := c.rows[sheet]
	c.mu.Unlock()
	if hit {
		c.logger.Debug("sheet cache hit", zap.String("sheet", sheet))
		return rows, true
	}

	v, err, _ := c.group.Do(sheet, func() (any, error) {
		rows, err := c.fetcher.Fetch(ctx, baseURL, sheet)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.rows[sheet] = rows
		c.mu.Unlock()
		return rows, nil
	})
	if err != nil {
		c.logger.Error("sheet fetch failed", zap.String("sheet", sheet), zap.Error(err))
		return nil, false
	}
	return v.([]Row), true
}
