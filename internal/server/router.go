package server

import (
	"net/http"

	_ "github.com/akolanti/AITutor/cmd/api/docs"
	"github.com/akolanti/AITutor/internal/handlers"
	"github.com/akolanti/AITutor/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter wires every route. Session-bound routes go through the full
// middleware chain; probes, metrics and docs do not create sessions.
func NewRouter(h *handlers.Handler, mw *middleware.Middleware) *chi.Mux {
	r := chi.NewRouter()
	initSwagger(r)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", mw.WrapStateless(h.IndexHandler))
	r.Get("/health", mw.WrapStateless(h.HealthHandler))

	r.Get("/session", mw.Wrap(h.GetSessionHandler))
	r.Delete("/session", mw.Wrap(h.DeleteSessionHandler))
	r.Put("/session/credential", mw.Wrap(h.PutCredentialHandler))
	r.Put("/session/level", mw.Wrap(h.PutLevelHandler))

	r.Post("/chat", mw.Wrap(h.ChatHandler))
	r.Post("/ingest/document", mw.Wrap(h.PostIngestDocumentHandler))
	r.Post("/ingest/web", mw.Wrap(h.PostIngestWebHandler))
	r.Get("/status/{id}", mw.Wrap(h.GetStatusHandler))
	return r
}

func initSwagger(r *chi.Mux) {
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}
