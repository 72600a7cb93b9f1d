package pages

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// SaveHook is notified after a page has been saved through the API.
type SaveHook interface {
	PageSaved(ctx context.Context, p Page)
}

// RegisterRoutes mounts page registry endpoints under /api/pages.
func RegisterRoutes(r chi.Router, store *Store, hook SaveHook) {
	r.Route("/api/pages", func(r chi.Router) {
		r.Get("/", handleList(store))
		r.Put("/", handleUpsert(store))
		r.Get("/{pageID}", handleGet(store))
		r.Delete("/{pageID}", handleDelete(store))
		r.Post("/{pageID}/saved", handleSaved(store, hook))
	})
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []Page{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func handleUpsert(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p Page
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if err := store.Upsert(r.Context(), p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		saved, err := store.Get(r.Context(), p.ID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

func handleGet(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pageIDParam(w, r)
		if !ok {
			return
		}
		p, err := store.Get(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func handleDelete(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pageIDParam(w, r)
		if !ok {
			return
		}
		if err := store.Delete(r.Context(), id); err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleSaved is the save-post hook. An optional body updates the page
// before the hook runs.
func handleSaved(store *Store, hook SaveHook) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pageIDParam(w, r)
		if !ok {
			return
		}

		if r.ContentLength != 0 {
			var p Page
			if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
				http.Error(w, "invalid request body", http.StatusBadRequest)
				return
			}
			p.ID = id
			if err := store.Upsert(r.Context(), p); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		p, err := store.Get(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if hook != nil {
			hook.PageSaved(r.Context(), *p)
		}
		writeJSON(w, http.StatusAccepted, p)
	}
}

func pageIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "pageID"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid page id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
