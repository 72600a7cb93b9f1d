package audit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gmg-digital/staticembed/internal/db"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestLogAndGetByID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	entry := Entry{
		ID:        "test-1",
		ActorType: ActorUser,
		ActorID:   "admin",
		Action:    ActionGenerated,
		PageID:    8208,
		Summary:   "Generated static content for page 8208",
		Detail:    "2 styles, 3 scripts",
	}

	if err := store.Log(ctx, entry); err != nil {
		t.Fatalf("Log: %v", err)
	}

	got, err := store.GetByID(ctx, "test-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	if got.ActorID != "admin" {
		t.Errorf("ActorID = %q, want %q", got.ActorID, "admin")
	}
	if got.Action != ActionGenerated {
		t.Errorf("Action = %q, want %q", got.Action, ActionGenerated)
	}
	if got.PageID != 8208 {
		t.Errorf("PageID = %d, want 8208", got.PageID)
	}
	if got.Detail != "2 styles, 3 scripts" {
		t.Errorf("Detail = %q", got.Detail)
	}
	if got.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestLogDefaults(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.Log(ctx, Entry{ActorID: "save-hook", Action: ActionRegenerated, PageID: 1}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	entries, err := store.Query(ctx, QueryFilter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ID == "" {
		t.Error("expected generated ID")
	}
	if entries[0].ActorType != ActorSystem {
		t.Errorf("ActorType = %q, want %q", entries[0].ActorType, ActorSystem)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	store := setupStore(t)

	if _, err := store.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatal("expected error for missing entry")
	}
}

func TestQueryFilters(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	entries := []Entry{
		{ID: "a", ActorType: ActorUser, ActorID: "admin", Action: ActionGenerated, PageID: 1},
		{ID: "b", ActorType: ActorSystem, ActorID: "save-hook", Action: ActionRegenerated, PageID: 1},
		{ID: "c", ActorType: ActorUser, ActorID: "admin", Action: ActionDeleted, PageID: 2},
	}
	for _, e := range entries {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	got, err := store.Query(ctx, QueryFilter{PageID: 1})
	if err != nil {
		t.Fatalf("Query by page: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("filter by page: got %d, want 2", len(got))
	}

	got, err = store.Query(ctx, QueryFilter{Action: ActionDeleted})
	if err != nil {
		t.Fatalf("Query by action: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c" {
		t.Errorf("filter by action: got %v", got)
	}

	got, err = store.Query(ctx, QueryFilter{ActorID: "admin", Limit: 1})
	if err != nil {
		t.Fatalf("Query with limit: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("limit: got %d, want 1", len(got))
	}

	got, err = store.Query(ctx, QueryFilter{Offset: 1})
	if err != nil {
		t.Fatalf("Query with offset: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("offset: got %d, want 2", len(got))
	}

	future := time.Now().Add(time.Hour)
	got, err = store.Query(ctx, QueryFilter{Since: &future})
	if err != nil {
		t.Fatalf("Query since: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("since future: got %d, want 0", len(got))
	}
}

func TestDeleteBefore(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.Log(ctx, Entry{ActorID: "admin", Action: ActionGenerated, PageID: 3}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	n, err := store.DeleteBefore(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d rows, want 1", n)
	}
}

func TestRoutes(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.Log(ctx, Entry{ID: "r-1", ActorID: "admin", Action: ActionGenerated, PageID: 9}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	r := chi.NewRouter()
	RegisterRoutes(r, store)

	req := httptest.NewRequest(http.MethodGet, "/api/audit/?page_id=9", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	var list []Entry
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list) != 1 || list[0].ID != "r-1" {
		t.Errorf("list = %+v", list)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/audit/missing", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("get missing: expected 404, got %d", w.Code)
	}
}

func TestRoutesRejectMalformedFilters(t *testing.T) {
	r := chi.NewRouter()
	RegisterRoutes(r, setupStore(t))

	for _, target := range []string{"/api/audit/?page_id=abc", "/api/audit/?since=yesterday", "/api/audit/?limit=-1", "/api/audit/"} {
		method := http.MethodGet
		if target == "/api/audit/" {
			method = http.MethodDelete
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s %s: expected 400, got %d", method, target, w.Code)
		}
	}
}

func TestPruneRoute(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	if err := store.Log(ctx, Entry{ID: "old", ActorID: "admin", Action: ActionDeleted, PageID: 1}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	r := chi.NewRouter()
	RegisterRoutes(r, store)

	before := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/audit/?before="+before, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("prune: expected 200, got %d", w.Code)
	}
	var body map[string]int64
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["deleted"] != 1 {
		t.Errorf("deleted = %d, want 1", body["deleted"])
	}
}
