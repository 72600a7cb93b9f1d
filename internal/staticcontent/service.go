package staticcontent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gmg-digital/staticembed/internal/audit"
	"github.com/gmg-digital/staticembed/internal/config"
	"github.com/gmg-digital/staticembed/internal/logging"
	"github.com/gmg-digital/staticembed/internal/pages"
)

var (
	// ErrInvalidPage is returned when a page is missing or not published.
	ErrInvalidPage = errors.New("invalid page selected")
	// ErrFetch is returned when the source page could not be retrieved.
	ErrFetch = errors.New("error fetching page content")
)

// maxPageBytes caps how much of a source page is read.
const maxPageBytes = 16 << 20

// Service generates and manages static snapshots of registry pages.
type Service struct {
	store     *Store
	pages     *pages.Store
	audit     *audit.Store
	client    *http.Client
	userAgent string
	debounce  *Debouncer
	logger    *zap.Logger
}

// NewService wires a Service. auditStore may be nil.
func NewService(store *Store, pageStore *pages.Store, auditStore *audit.Store, cfg config.GeneratorConfig, logger *zap.Logger) *Service {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{
		store:     store,
		pages:     pageStore,
		audit:     auditStore,
		client:    &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
		debounce:  NewDebouncer(cfg.RegenDebounce),
		logger:    logging.OrNop(logger),
	}
}

// Store returns the underlying static content store.
func (s *Service) Store() *Store { return s.store }

// Close cancels pending debounced regenerations.
func (s *Service) Close() { s.debounce.Stop() }

// Generate scrapes a published page and replaces its static content. auto
// marks regenerations triggered by a page save.
func (s *Service) Generate(ctx context.Context, pageID int64, auto bool) (*StaticPage, error) {
	logger := logging.FromContext(ctx, s.logger).With(zap.Int64("page_id", pageID), zap.Bool("auto", auto))

	page, err := s.pages.Get(ctx, pageID)
	if errors.Is(err, pages.ErrNotFound) {
		return nil, ErrInvalidPage
	}
	if err != nil {
		return nil, err
	}
	if !page.Published() {
		return nil, ErrInvalidPage
	}

	html, err := s.fetch(ctx, page.URL)
	if err != nil {
		logger.Warn("page fetch failed", zap.String("url", page.URL), zap.Error(err))
		s.record(ctx, audit.ActionFailed, pageID, auto, "Generation failed", err.Error())
		return nil, err
	}

	assets, err := ExtractAssets(html)
	if err != nil {
		return nil, err
	}

	stored, err := s.store.Replace(ctx, StaticPage{
		PageID:         pageID,
		Content:        html,
		ElementorDivID: DivID(pageID),
		GeneratedAt:    time.Now(),
		Styles:         assets.Styles,
		Scripts:        assets.Scripts,
	})
	if err != nil {
		return nil, err
	}

	action, summary := audit.ActionGenerated, "Static content generated"
	if auto {
		action, summary = audit.ActionRegenerated, "Static content regenerated after save"
	}
	s.record(ctx, action, pageID, auto, summary,
		fmt.Sprintf("%d styles, %d scripts", len(assets.Styles), len(assets.Scripts)))

	logger.Info("static content generated",
		zap.Int("styles", len(assets.Styles)),
		zap.Int("scripts", len(assets.Scripts)),
		zap.Int("bytes", len(html)))
	return stored, nil
}

// PageSaved regenerates static content for a published page that already
// has some. It implements pages.SaveHook.
func (s *Service) PageSaved(ctx context.Context, p pages.Page) {
	if !p.Published() {
		return
	}
	exists, err := s.store.Exists(ctx, p.ID)
	if err != nil {
		s.logger.Error("checking static content", zap.Int64("page_id", p.ID), zap.Error(err))
		return
	}
	if !exists {
		return
	}

	bg := context.WithoutCancel(ctx)
	s.debounce.Trigger(p.ID, func() {
		if _, err := s.Generate(bg, p.ID, true); err != nil {
			s.logger.Warn("automatic regeneration failed", zap.Int64("page_id", p.ID), zap.Error(err))
		}
	})
}

// List returns the admin listing with page titles and rendered notes.
func (s *Service) List(ctx context.Context) ([]ListItem, error) {
	stored, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]ListItem, 0, len(stored))
	for _, sp := range stored {
		title := ""
		if page, err := s.pages.Get(ctx, sp.PageID); err == nil {
			title = page.Title
		}
		items = append(items, ListItem{
			ID:             sp.ID,
			PageID:         sp.PageID,
			PageTitle:      title,
			ElementorDivID: sp.ElementorDivID,
			EmbedCode:      sp.EmbedCode(),
			GeneratedAt:    sp.GeneratedAt,
			Notes:          sp.Notes,
			NotesHTML:      RenderNotes(sp.Notes),
			StyleCount:     len(sp.Styles),
			ScriptCount:    len(sp.Scripts),
		})
	}
	return items, nil
}

// UpdateNotes replaces a page's notes and records who changed them.
func (s *Service) UpdateNotes(ctx context.Context, pageID int64, notes, actor string) error {
	if err := s.store.UpdateNotes(ctx, pageID, notes); err != nil {
		return err
	}
	s.recordBy(ctx, actor, audit.ActionNotesUpdated, pageID, "Notes updated", "")
	return nil
}

// Delete removes a page's static content.
func (s *Service) Delete(ctx context.Context, pageID int64, actor string) error {
	if err := s.store.Delete(ctx, pageID); err != nil {
		return err
	}
	s.recordBy(ctx, actor, audit.ActionDeleted, pageID, "Static content deleted", "")
	return nil
}

func (s *Service) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %s returned status %d", ErrFetch, url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %v", ErrFetch, err)
	}
	return string(body), nil
}

func (s *Service) record(ctx context.Context, action audit.Action, pageID int64, auto bool, summary, detail string) {
	actor := "admin"
	if auto {
		actor = "save-hook"
	}
	s.recordBy(ctx, actor, action, pageID, summary, detail)
}

func (s *Service) recordBy(ctx context.Context, actor string, action audit.Action, pageID int64, summary, detail string) {
	if s.audit == nil {
		return
	}
	actorType := audit.ActorUser
	if actor == "" || actor == "save-hook" {
		actorType = audit.ActorSystem
	}
	err := s.audit.Log(ctx, audit.Entry{
		ActorType: actorType,
		ActorID:   actor,
		Action:    action,
		PageID:    pageID,
		Summary:   summary,
		Detail:    detail,
	})
	if err != nil {
		s.logger.Warn("audit log failed", zap.Int64("page_id", pageID), zap.Error(err))
	}
}
