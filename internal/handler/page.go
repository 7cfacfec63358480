package handler

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/set-night/groqchat/internal/config"
	"github.com/set-night/groqchat/internal/domain"
	"github.com/set-night/groqchat/internal/middleware"
	"github.com/set-night/groqchat/internal/service"
)

const pageTitle = "Groq Chat App"

//go:embed templates/*.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

type turnView struct {
	Human string
	AI    template.HTML
}

type replyView struct {
	ContextPairs     int
	Dropped          int
	Cost             string
	PromptTokens     int
	CompletionTokens int
}

type pageData struct {
	Title     string
	Models    []domain.AIModel
	Settings  domain.Settings
	MinWindow int
	MaxWindow int
	Turns     []turnView
	Reply     *replyView
	Error     string
	Question  string
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, err := h.chat.Session(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		slog.Error("load session", "error", err)
		http.Error(w, domain.UserMessage(err), http.StatusInternalServerError)
		return
	}
	h.renderPage(w, http.StatusOK, h.newPage(sess))
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := middleware.GetSessionID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxInputBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	settings, settingsErr := settingsFromForm(r)
	question := r.PostForm.Get("question")

	var reply *service.Reply
	err := settingsErr
	if err == nil {
		reply, err = h.chat.Submit(ctx, sessionID, settings, question)
	}

	if errors.Is(err, domain.ErrEmptyInput) {
		// Nothing to send; keep the chosen controls and redraw.
		if err := h.chat.UpdateSettings(ctx, sessionID, settings); err != nil {
			slog.Warn("update settings", "error", err, "session_id", sessionID)
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err != nil {
		h.renderError(ctx, w, sessionID, settings, question, err)
		return
	}

	data := h.newPage(reply.Session)
	data.Reply = newReplyView(reply)
	h.renderPage(w, http.StatusOK, data)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if _, err := h.chat.Reset(r.Context(), middleware.GetSessionID(r.Context())); err != nil {
		slog.Warn("reset session", "error", err)
		http.Error(w, domain.UserMessage(err), statusFor(err))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// renderError redraws the page with the error in place of a reply. The
// question stays in the text area so it can be resent.
func (h *Handler) renderError(ctx context.Context, w http.ResponseWriter, sessionID string, settings domain.Settings, question string, cause error) {
	sess, err := h.chat.Session(ctx, sessionID)
	if err != nil {
		slog.Error("load session", "error", err)
		http.Error(w, domain.UserMessage(cause), statusFor(cause))
		return
	}
	data := h.newPage(sess)
	if settings.Model != "" {
		data.Settings = settings
	}
	data.Error = domain.UserMessage(cause)
	data.Question = question
	h.renderPage(w, statusFor(cause), data)
}

func (h *Handler) newPage(sess *domain.Session) pageData {
	pairs := sess.History.Pairs()
	turns := make([]turnView, len(pairs))
	for i, p := range pairs {
		turns[i] = turnView{Human: p.Human, AI: h.renderer.Markdown(p.AI)}
	}
	return pageData{
		Title:     pageTitle,
		Models:    h.chat.Catalog().Models,
		Settings:  sess.Settings,
		MinWindow: domain.MinWindow,
		MaxWindow: domain.MaxWindow,
		Turns:     turns,
	}
}

func (h *Handler) renderPage(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.page.Execute(w, data); err != nil {
		slog.Error("render page", "error", err)
	}
}

func newReplyView(reply *service.Reply) *replyView {
	v := &replyView{
		ContextPairs: len(reply.Prompt.Window),
		// History before this turn minus what was sent.
		Dropped:          reply.Session.History.Len() - 1 - len(reply.Prompt.Window),
		PromptTokens:     reply.Usage.PromptTokens,
		CompletionTokens: reply.Usage.CompletionTokens,
	}
	if reply.Session.Settings.ShowCost {
		v.Cost = reply.Usage.Cost.StringFixed(6)
	}
	return v
}

func settingsFromForm(r *http.Request) (domain.Settings, error) {
	s := domain.Settings{
		Model:    r.PostForm.Get("model"),
		ShowCost: r.PostForm.Get("show_cost") == "on",
	}
	window, err := strconv.Atoi(r.PostForm.Get("window"))
	if err != nil {
		return s, domain.ErrWindowOutOfRange
	}
	s.Window = window
	return s, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyInput),
		errors.Is(err, domain.ErrWindowOutOfRange),
		errors.Is(err, domain.ErrModelNotFound):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrActiveRequest):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrUpstreamUnavailable),
		errors.Is(err, domain.ErrInference),
		errors.Is(err, domain.ErrEmptyReply):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
