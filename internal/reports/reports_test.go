package reports

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmg-digital/staticembed/internal/db"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func testReport() Report {
	return Report{
		Error:   "Static content not found",
		Status:  http.StatusNotFound,
		PageID:  "elementor-8208",
		PageURL: "https://dealer.example.com/ev-lineup",
	}
}

func TestStoreCreateAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, testReport())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Static content not found", got.Error)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, "elementor-8208", got.PageID)
	assert.False(t, got.Delivered)
	assert.False(t, got.Timestamp.IsZero())
}

func TestStoreGetByIDNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreListFilters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := testReport()
	second := testReport()
	second.Status = http.StatusInternalServerError
	second.PageID = "elementor-1"
	for _, r := range []Report{first, second} {
		_, err := store.Create(ctx, r)
		require.NoError(t, err)
	}

	got, err := store.List(ctx, ListFilter{Status: http.StatusInternalServerError})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "elementor-1", got[0].PageID)

	got, err = store.List(ctx, ListFilter{PageID: "elementor-8208"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	undelivered := false
	got, err = store.List(ctx, ListFilter{Delivered: &undelivered})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = store.List(ctx, ListFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestMarkDeliveredMissing(t *testing.T) {
	store := setupTestStore(t)
	assert.ErrorIs(t, store.MarkDelivered(context.Background(), "missing"), ErrNotFound)
}

func TestDispatcherPostsOnce(t *testing.T) {
	var (
		calls   atomic.Int32
		payload map[string]any
	)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer hook.Close()

	store := setupTestStore(t)
	d := NewDispatcher(store, hook.URL, time.Second, nil)

	d.Report(context.Background(), testReport())

	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, "Static content not found", payload["error"])
	assert.EqualValues(t, 404, payload["status"])
	assert.Equal(t, "elementor-8208", payload["pageId"])
	assert.Equal(t, "https://dealer.example.com/ev-lineup", payload["pageUrl"])
	assert.NotEmpty(t, payload["timestamp"])
	assert.NotContains(t, payload, "stack")

	delivered := true
	recs, err := store.List(context.Background(), ListFilter{Delivered: &delivered})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestDispatcherSwallowsWebhookFailure(t *testing.T) {
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer hook.Close()

	store := setupTestStore(t)
	d := NewDispatcher(store, hook.URL, time.Second, nil)
	d.Report(context.Background(), testReport())

	undelivered := false
	recs, err := store.List(context.Background(), ListFilter{Delivered: &undelivered})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestDispatcherWithoutWebhookOrStore(t *testing.T) {
	d := NewDispatcher(nil, "", 0, nil)
	assert.NotPanics(t, func() { d.Report(context.Background(), testReport()) })
}

func TestSendWebhookStatus(t *testing.T) {
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer hook.Close()

	d := NewDispatcher(nil, hook.URL, time.Second, nil)
	err := d.SendWebhook(context.Background(), hook.URL, []byte(`{}`))
	assert.Error(t, err)
}

func TestRoutes(t *testing.T) {
	store := setupTestStore(t)
	id, err := store.Create(context.Background(), testReport())
	require.NoError(t, err)

	r := chi.NewRouter()
	RegisterRoutes(r, store)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/?status=404", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var list []Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)

	req = httptest.NewRequest(http.MethodGet, "/api/reports/"+id, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/reports/unknown", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
