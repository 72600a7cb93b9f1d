package staticcontent

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// restError mirrors the error envelope WordPress REST clients expect.
type restError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Status int `json:"status"`
	} `json:"data"`
}

func writeRESTError(w http.ResponseWriter, status int, code, message string) {
	var e restError
	e.Code, e.Message, e.Data.Status = code, message, status
	writeJSON(w, status, e)
}

// RegisterContentRoutes mounts the public content API consumed by the loader.
func RegisterContentRoutes(r chi.Router, store *Store) {
	r.Get("/wp-json/elementor/v1/static-content/{id}", handleContent(store))
	r.HandleFunc("/wp-json/*", func(w http.ResponseWriter, _ *http.Request) {
		writeRESTError(w, http.StatusNotFound, "rest_no_route", "No route was found matching the URL and request method.")
	})
}

// RegisterAdminRoutes mounts the management endpoints under /api/static-content.
func RegisterAdminRoutes(r chi.Router, svc *Service) {
	r.Route("/api/static-content", func(r chi.Router) {
		r.Get("/", handleList(svc))
		r.Post("/generate", handleGenerate(svc))
		r.Get("/{pageID}", handleGet(svc))
		r.Put("/{pageID}/notes", handleNotes(svc))
		r.Delete("/{pageID}", handleDelete(svc))
	})
}

func handleContent(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 63)
		if err != nil {
			writeRESTError(w, http.StatusNotFound, "rest_no_route", "No route was found matching the URL and request method.")
			return
		}
		p, err := store.Get(r.Context(), int64(id))
		if errors.Is(err, ErrNotFound) {
			writeRESTError(w, http.StatusNotFound, "no_page", "Static content not found")
			return
		}
		if err != nil {
			writeRESTError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, p.Fragment())
	}
}

func handleList(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func handleGenerate(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PageID int64 `json:"page_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		p, err := svc.Generate(r.Context(), body.PageID, false)
		switch {
		case errors.Is(err, ErrInvalidPage):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		case errors.Is(err, ErrFetch):
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"page_id":          p.PageID,
			"elementor_div_id": p.ElementorDivID,
			"embed_code":       p.EmbedCode(),
			"generated_at":     p.GeneratedAt,
			"styles":           p.Styles,
			"scripts":          p.Scripts,
		})
	}
}

func handleGet(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pageIDParam(w, r)
		if !ok {
			return
		}
		p, err := svc.Store().Get(r.Context(), id)
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

func handleNotes(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pageIDParam(w, r)
		if !ok {
			return
		}
		var body struct {
			Notes string `json:"notes"`
			Actor string `json:"actor"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		err := svc.UpdateNotes(r.Context(), id, body.Notes, actorOr(body.Actor))
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"notes":      body.Notes,
			"notes_html": RenderNotes(body.Notes),
		})
	}
}

func handleDelete(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pageIDParam(w, r)
		if !ok {
			return
		}
		err := svc.Delete(r.Context(), id, actorOr(r.URL.Query().Get("actor")))
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func actorOr(actor string) string {
	if actor == "" {
		return "admin"
	}
	return actor
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
