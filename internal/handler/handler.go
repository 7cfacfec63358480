package handler

import (
	"context"
	"html/template"
	"net/http"

	"github.com/set-night/groqchat/internal/middleware"
	"github.com/set-night/groqchat/internal/service"
)

// ModelLister reports which models the inference API currently serves.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// Handler holds all dependencies needed by the web handlers.
type Handler struct {
	chat          *service.ChatService
	models        ModelLister
	renderer      *Renderer
	page          *template.Template
	metrics       http.Handler
	limiter       *middleware.Limiter
	recorder      middleware.HTTPRecorder
	secureCookies bool
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Chat          *service.ChatService
	Models        ModelLister
	Metrics       http.Handler
	Limiter       *middleware.Limiter
	Recorder      middleware.HTTPRecorder
	SecureCookies bool
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		chat:          deps.Chat,
		models:        deps.Models,
		renderer:      NewRenderer(),
		page:          pageTemplate,
		metrics:       deps.Metrics,
		limiter:       deps.Limiter,
		recorder:      deps.Recorder,
		secureCookies: deps.SecureCookies,
	}
}
