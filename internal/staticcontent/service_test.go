package staticcontent

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmg-digital/staticembed/internal/audit"
	"github.com/gmg-digital/staticembed/internal/config"
	"github.com/gmg-digital/staticembed/internal/pages"
)

const sourcePage = `<html><head>
<link rel="stylesheet" href="/wp-content/uploads/elementor/css/post-42.css">
<script src="/wp-includes/js/jquery/jquery.min.js"></script>
</head><body><div class="elementor">EV Lineup</div></body></html>`

type fixture struct {
	svc    *Service
	pages  *pages.Store
	audit  *audit.Store
	hits   *atomic.Int32
	source *httptest.Server
}

func newFixture(t *testing.T, debounce time.Duration) *fixture {
	t.Helper()
	database := openDB(t)

	var hits atomic.Int32
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(sourcePage))
	}))
	t.Cleanup(source.Close)

	pageStore := pages.NewStore(database)
	auditStore := audit.NewStore(database)
	svc := NewService(NewStore(database), pageStore, auditStore, config.GeneratorConfig{
		FetchTimeout:  5 * time.Second,
		UserAgent:     "staticembed-test",
		RegenDebounce: debounce,
	}, nil)
	t.Cleanup(svc.Close)

	return &fixture{svc: svc, pages: pageStore, audit: auditStore, hits: &hits, source: source}
}

func (f *fixture) addPage(t *testing.T, id int64, path string, status pages.Status) pages.Page {
	t.Helper()
	p := pages.Page{ID: id, Title: "EV Lineup", URL: f.source.URL + path, Status: status}
	require.NoError(t, f.pages.Upsert(context.Background(), p))
	return p
}

func TestGenerate(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.addPage(t, 42, "/ev", pages.StatusPublish)

	p, err := f.svc.Generate(ctx, 42, false)
	require.NoError(t, err)
	assert.Equal(t, "elementor-42", p.ElementorDivID)
	assert.Equal(t, sourcePage, p.Content)
	assert.Equal(t, []string{"/wp-content/uploads/elementor/css/post-42.css"}, p.Styles)
	assert.Equal(t, []string{"/wp-includes/js/jquery/jquery.min.js"}, p.Scripts)

	entries, err := f.audit.Query(ctx, audit.QueryFilter{PageID: 42})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionGenerated, entries[0].Action)
	assert.Equal(t, audit.ActorUser, entries[0].ActorType)
}

func TestGenerateInvalidPage(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.addPage(t, 1, "/draft", pages.StatusDraft)

	_, err := f.svc.Generate(ctx, 1, false)
	assert.ErrorIs(t, err, ErrInvalidPage)

	_, err = f.svc.Generate(ctx, 999, false)
	assert.ErrorIs(t, err, ErrInvalidPage)
	assert.Zero(t, f.hits.Load())
}

func TestGenerateFetchFailure(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.addPage(t, 3, "/missing", pages.StatusPublish)

	_, err := f.svc.Generate(ctx, 3, false)
	assert.ErrorIs(t, err, ErrFetch)

	exists, err := f.svc.Store().Exists(ctx, 3)
	require.NoError(t, err)
	assert.False(t, exists)

	entries, err := f.audit.Query(ctx, audit.QueryFilter{Action: audit.ActionFailed})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPageSavedOnlyRegeneratesExisting(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	p := f.addPage(t, 42, "/ev", pages.StatusPublish)

	f.svc.PageSaved(ctx, p)
	assert.Zero(t, f.hits.Load(), "no static content yet")

	_, err := f.svc.Generate(ctx, 42, false)
	require.NoError(t, err)
	f.svc.PageSaved(ctx, p)
	assert.EqualValues(t, 2, f.hits.Load())

	draft := p
	draft.Status = pages.StatusDraft
	f.svc.PageSaved(ctx, draft)
	assert.EqualValues(t, 2, f.hits.Load())

	entries, err := f.audit.Query(ctx, audit.QueryFilter{Action: audit.ActionRegenerated})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActorSystem, entries[0].ActorType)
}

func TestPageSavedDebounced(t *testing.T) {
	f := newFixture(t, 40*time.Millisecond)
	ctx := context.Background()
	p := f.addPage(t, 42, "/ev", pages.StatusPublish)

	_, err := f.svc.Generate(ctx, 42, false)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		f.svc.PageSaved(ctx, p)
	}
	assert.Eventually(t, func() bool { return f.hits.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(80 * time.Millisecond)
	assert.EqualValues(t, 2, f.hits.Load(), "burst collapses into one regeneration")
}

func TestListRendersNotes(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.addPage(t, 42, "/ev", pages.StatusPublish)
	_, err := f.svc.Generate(ctx, 42, false)
	require.NoError(t, err)
	require.NoError(t, f.svc.UpdateNotes(ctx, 42, "*homepage*", "editor@example.com"))

	items, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "EV Lineup", items[0].PageTitle)
	assert.Equal(t, `<div id="elementor-42"></div>`, items[0].EmbedCode)
	assert.Contains(t, items[0].NotesHTML, "<em>homepage</em>")
	assert.Equal(t, 1, items[0].StyleCount)
	assert.Equal(t, 1, items[0].ScriptCount)
}

func newRouter(f *fixture) http.Handler {
	r := chi.NewRouter()
	RegisterContentRoutes(r, f.svc.Store())
	RegisterAdminRoutes(r, f.svc)
	return r
}

func TestContentAPI(t *testing.T) {
	f := newFixture(t, 0)
	f.addPage(t, 42, "/ev", pages.StatusPublish)
	_, err := f.svc.Generate(context.Background(), 42, false)
	require.NoError(t, err)
	router := newRouter(f)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wp-json/elementor/v1/static-content/42", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var frag Fragment
	require.NoError(t, json.NewDecoder(w.Body).Decode(&frag))
	assert.Equal(t, sourcePage, frag.Content)
	assert.Equal(t, "elementor-42", frag.ElementorDivID)
	assert.Len(t, frag.Styles, 1)
	assert.Len(t, frag.Scripts, 1)
}

func TestContentAPIErrors(t *testing.T) {
	router := newRouter(newFixture(t, 0))

	cases := []struct {
		path string
		code string
	}{
		{"/wp-json/elementor/v1/static-content/77", "no_page"},
		{"/wp-json/elementor/v1/static-content/abc", "rest_no_route"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, tc.path)

		var body restError
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, tc.code, body.Code)
		assert.Equal(t, http.StatusNotFound, body.Data.Status)
	}
}

func TestAdminRoutes(t *testing.T) {
	f := newFixture(t, 0)
	f.addPage(t, 42, "/ev", pages.StatusPublish)
	f.addPage(t, 43, "/draft", pages.StatusDraft)
	router := newRouter(f)

	do := func(method, path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			json.NewEncoder(&buf).Encode(body)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, path, &buf))
		return w
	}

	assert.Equal(t, http.StatusCreated, do(http.MethodPost, "/api/static-content/generate", map[string]int{"page_id": 42}).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(http.MethodPost, "/api/static-content/generate", map[string]int{"page_id": 43}).Code)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/api/static-content/generate", nil).Code)

	w := do(http.MethodGet, "/api/static-content/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []ListItem
	require.NoError(t, json.NewDecoder(w.Body).Decode(&items))
	require.Len(t, items, 1)

	assert.Equal(t, http.StatusOK, do(http.MethodPut, "/api/static-content/42/notes", map[string]string{"notes": "n"}).Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodPut, "/api/static-content/43/notes", map[string]string{"notes": "n"}).Code)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodGet, "/api/static-content/x", nil).Code)
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/api/static-content/42", nil).Code)

	assert.Equal(t, http.StatusNoContent, do(http.MethodDelete, "/api/static-content/42", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodDelete, "/api/static-content/42", nil).Code)
}
