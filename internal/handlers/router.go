package handlers

import (
	"context"
	"net/http"
	"time"

	"emo-pages-backend/internal/metrics"
	"emo-pages-backend/internal/middleware"
	"emo-pages-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Router wires every handler into one chi router
type Router struct {
	Schema    *SchemaHandler
	Pages     *PageHandler
	Anonymous *AnonymousHandler
	Images    *ImageHandler
	WebSocket *WebSocketHandler
	Tokens    *services.StreamTokens
	Metrics   *metrics.Metrics
	Ping      func(ctx context.Context) error
}

// Handler builds the HTTP handler
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/schema", rt.Schema.GetSchema)
		r.Get("/schema/types/{type}", rt.Schema.GetType)

		r.Post("/pages", rt.Pages.CreatePage)
		r.Get("/pages/{slug}", rt.Pages.GetPage)
		r.Get("/pages/{slug}/preview", rt.Pages.GetPreview)

		r.Post("/anonymous", rt.Anonymous.Create)
		r.Get("/anonymous/{slug}", rt.Anonymous.GetSendPage)
		r.Post("/anonymous/{slug}/responses", rt.Anonymous.Reply)
		r.Get("/anonymous/{slug}/inbox", rt.Anonymous.GetInbox)

		if rt.Images != nil {
			r.Post("/images/uploads", rt.Images.CreateUpload)
		}
	})

	// WebSocket routes
	r.Get("/ws/view/{slug}", rt.WebSocket.ViewPage)
	r.With(middleware.StreamAuth(rt.Tokens)).Get("/ws/inbox", rt.WebSocket.Inbox)

	r.Get("/healthz", rt.health)
	if rt.Metrics != nil {
		r.Handle("/metrics", rt.Metrics.Handler())
	}

	return r
}

func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	if rt.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := rt.Ping(ctx); err != nil {
			respondError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
