package hydrate

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const maxHostPageBytes = 8 << 20

// RegisterRoutes mounts POST /api/hydrate. The body is the host page; the
// response is the hydrated page.
func RegisterRoutes(r chi.Router, p *Pipeline) {
	r.Post("/api/hydrate", handleHydrate(p))
}

func handleHydrate(p *Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxHostPageBytes))
		if err != nil {
			http.Error(w, "reading request body", http.StatusBadRequest)
			return
		}
		if len(body) == 0 {
			http.Error(w, "request body must contain the host page html", http.StatusBadRequest)
			return
		}

		q := r.URL.Query()
		pageURL := q.Get("page_url")
		if pageURL == "" {
			pageURL = r.Referer()
		}
		ua := q.Get("user_agent")
		if ua == "" {
			ua = r.UserAgent()
		}

		res, err := p.Hydrate(r.Context(), Request{
			HTML:      string(body),
			PageName:  q.Get("page_name"),
			PageURL:   pageURL,
			UserAgent: ua,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("X-Hydration-Mode", string(res.Mode))
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, res.HTML)
	}
}
