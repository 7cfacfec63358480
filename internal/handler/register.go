package handler

import (
	"net/http"

	"github.com/set-night/groqchat/internal/middleware"
)

// Routes registers all pages and API endpoints and wraps them in the
// middleware chain.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	// Pages
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("POST /chat", h.handleChat)
	mux.HandleFunc("POST /reset", h.handleReset)

	// JSON API
	mux.HandleFunc("POST /api/chat", h.handleAPIChat)
	mux.HandleFunc("GET /api/history", h.handleAPIHistory)
	mux.HandleFunc("POST /api/reset", h.handleAPIReset)
	mux.HandleFunc("GET /api/models", h.handleAPIModels)

	// Ops
	mux.HandleFunc("GET /healthz", h.handleHealth)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics)
	}

	mws := []middleware.Middleware{
		middleware.Recover(),
		middleware.Logging(h.recorder),
		middleware.SessionLoader(h.secureCookies),
	}
	if h.limiter != nil {
		mws = append(mws, middleware.RateLimit(h.limiter))
	}
	return middleware.Chain(mux, mws...)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
