package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/set-night/groqchat/internal/config"
	"github.com/set-night/groqchat/internal/domain"
	"github.com/set-night/groqchat/internal/middleware"
)

type apiChatRequest struct {
	Message  string `json:"message"`
	Model    string `json:"model,omitempty"`
	Window   *int   `json:"window,omitempty"`
	ShowCost *bool  `json:"show_cost,omitempty"`
}

type apiUsage struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Cost             string `json:"cost,omitempty"`
}

type apiChatResponse struct {
	Reply        string          `json:"reply"`
	ReplyHTML    string          `json:"reply_html"`
	Model        string          `json:"model"`
	ContextPairs int             `json:"context_pairs"`
	HistoryLen   int             `json:"history_len"`
	Settings     domain.Settings `json:"settings"`
	Usage        apiUsage        `json:"usage"`
	DurationMs   int64           `json:"duration_ms"`
}

type apiHistoryResponse struct {
	SessionID string               `json:"session_id"`
	Settings  domain.Settings      `json:"settings"`
	History   []domain.MessagePair `json:"history"`
}

type apiModel struct {
	domain.AIModel
	Default   bool  `json:"default"`
	Available *bool `json:"available,omitempty"`
}

type apiError struct {
	Error string `json:"error"`
}

func (h *Handler) handleAPIChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := middleware.GetSessionID(ctx)

	var req apiChatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, config.MaxInputBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid request body"})
		return
	}

	sess, err := h.chat.Session(ctx, sessionID)
	if err != nil {
		slog.Error("load session", "error", err)
		writeJSON(w, statusFor(err), apiError{Error: domain.UserMessage(err)})
		return
	}

	// Unset fields keep the session's current controls.
	settings := sess.Settings
	if req.Model != "" {
		settings.Model = req.Model
	}
	if req.Window != nil {
		settings.Window = *req.Window
	}
	if req.ShowCost != nil {
		settings.ShowCost = *req.ShowCost
	}

	reply, err := h.chat.Submit(ctx, sessionID, settings, req.Message)
	if err != nil {
		writeJSON(w, statusFor(err), apiError{Error: domain.UserMessage(err)})
		return
	}

	resp := apiChatResponse{
		Reply:        reply.Pair.AI,
		ReplyHTML:    string(h.renderer.Markdown(reply.Pair.AI)),
		Model:        reply.Model.ID,
		ContextPairs: len(reply.Prompt.Window),
		HistoryLen:   reply.Session.History.Len(),
		Settings:     reply.Session.Settings,
		Usage: apiUsage{
			PromptTokens:     reply.Usage.PromptTokens,
			CompletionTokens: reply.Usage.CompletionTokens,
			TotalTokens:      reply.Usage.TotalTokens(),
		},
		DurationMs: reply.Duration.Milliseconds(),
	}
	if settings.ShowCost {
		resp.Usage.Cost = reply.Usage.Cost.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleAPIHistory(w http.ResponseWriter, r *http.Request) {
	sess, err := h.chat.Session(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		slog.Error("load session", "error", err)
		writeJSON(w, http.StatusInternalServerError, apiError{Error: domain.UserMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, apiHistoryResponse{
		SessionID: sess.ID,
		Settings:  sess.Settings,
		History:   sess.History.Pairs(),
	})
}

func (h *Handler) handleAPIReset(w http.ResponseWriter, r *http.Request) {
	if _, err := h.chat.Reset(r.Context(), middleware.GetSessionID(r.Context())); err != nil {
		slog.Warn("reset session", "error", err)
		writeJSON(w, statusFor(err), apiError{Error: domain.UserMessage(err)})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAPIModels(w http.ResponseWriter, r *http.Request) {
	catalog := h.chat.Catalog()

	var served map[string]bool
	if h.models != nil {
		ids, err := h.models.ListModels(r.Context())
		if err != nil {
			slog.Warn("list remote models", "error", err)
		} else {
			served = make(map[string]bool, len(ids))
			for _, id := range ids {
				served[id] = true
			}
		}
	}

	out := make([]apiModel, len(catalog.Models))
	for i, m := range catalog.Models {
		out[i] = apiModel{AIModel: m, Default: i == 0}
		if served != nil {
			available := served[m.ID]
			out[i].Available = &available
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		slog.Error("write json", "error", err)
	}
}
