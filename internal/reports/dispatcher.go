package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gmg-digital/staticembed/internal/logging"
)

// Reporter accepts error reports. Implementations never fail the caller.
type Reporter interface {
	Report(ctx context.Context, r Report)
}

// Dispatcher persists reports and delivers them to the error webhook.
type Dispatcher struct {
	store      *Store
	webhookURL string
	client     *http.Client
	logger     *zap.Logger
}

// NewDispatcher creates a Dispatcher. store may be nil to skip persistence
// and webhookURL may be empty to skip delivery.
func NewDispatcher(store *Store, webhookURL string, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		store:      store,
		webhookURL: webhookURL,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logging.OrNop(logger).Named("reports"),
	}
}

// Report persists r and POSTs it to the webhook. Failures are logged only.
func (d *Dispatcher) Report(ctx context.Context, r Report) {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	logger := d.logger.With(
		zap.String("page_id", r.PageID),
		zap.Int("status", r.Status),
		zap.String("error", r.Error),
	)
	logger.Error("static content error")

	if d.store != nil {
		id, err := d.store.Create(ctx, r)
		if err != nil {
			logger.Warn("persisting report failed", zap.Error(err))
		} else {
			r.ID = id
		}
	}

	if d.webhookURL == "" {
		return
	}

	payload, err := json.Marshal(r)
	if err != nil {
		logger.Warn("encoding report failed", zap.Error(err))
		return
	}
	if err := d.SendWebhook(ctx, d.webhookURL, payload); err != nil {
		logger.Warn("failed to send error details to webhook", zap.Error(err))
		return
	}
	logger.Debug("error details sent to webhook")

	if d.store != nil && r.ID != "" {
		if err := d.store.MarkDelivered(ctx, r.ID); err != nil {
			logger.Warn("marking report delivered failed", zap.Error(err))
		}
	}
}

// SendWebhook POSTs payload to the given URL.
func (d *Dispatcher) SendWebhook(ctx context.Context, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Discard is a Reporter that drops everything.
type Discard struct{}

// Report implements Reporter.
func (Discard) Report(context.Context, Report) {}
