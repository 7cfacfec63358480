package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/set-night/groqchat/internal/config"
	"github.com/set-night/groqchat/internal/domain"
)

// Completer is the inference backend.
type Completer interface {
	Chat(ctx context.Context, messages []ChatMessage, model string) (*ChatResponse, error)
}

// Recorder receives per-turn measurements.
type Recorder interface {
	RecordTurn(model, outcome string, duration time.Duration, usage domain.Usage)
}

type ChatService struct {
	sessions      *SessionService
	llm           Completer
	assembler     *Assembler
	markupPercent float64
	recorder      Recorder
}

type ChatDeps struct {
	Sessions      *SessionService
	LLM           Completer
	Assembler     *Assembler
	MarkupPercent float64
	Recorder      Recorder
}

func NewChatService(deps ChatDeps) *ChatService {
	return &ChatService{
		sessions:      deps.Sessions,
		llm:           deps.LLM,
		assembler:     deps.Assembler,
		markupPercent: deps.MarkupPercent,
		recorder:      deps.Recorder,
	}
}

// Reply is the outcome of one successful turn.
type Reply struct {
	Session  *domain.Session
	Pair     domain.MessagePair
	Prompt   Prompt
	Model    *domain.AIModel
	Usage    domain.Usage
	Duration time.Duration
}

// Submit runs one chat turn for the session. Empty input is rejected before
// anything else happens. On any failure the session history is left as it was.
func (c *ChatService) Submit(ctx context.Context, sessionID string, settings domain.Settings, input string) (*Reply, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, domain.ErrEmptyInput
	}

	catalog := c.sessions.Catalog()
	if err := settings.Validate(catalog.IDs()); err != nil {
		return nil, err
	}
	model, err := catalog.Get(settings.Model)
	if err != nil {
		return nil, err
	}

	release, err := c.sessions.TryAcquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := c.sessions.FindOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	prompt := c.assembler.Assemble(sess.History, settings.Window, input)

	reqCtx, cancel := context.WithTimeout(ctx, config.RequestTimeout)
	defer cancel()

	start := time.Now()
	resp, err := c.llm.Chat(reqCtx, prompt.Messages(), model.ID)
	elapsed := time.Since(start)
	if err != nil {
		c.record(model.ID, outcome(err), elapsed, domain.Usage{})
		slog.Error("inference chat", "error", err, "model", model.ID, "session_id", sessionID)
		return nil, fmt.Errorf("chat: %w", err)
	}

	text, err := resp.Content()
	if err != nil {
		c.record(model.ID, outcome(err), elapsed, domain.Usage{})
		return nil, err
	}

	usage := domain.Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}
	usage.Cost = CalculateCost(usage.PromptTokens, usage.CompletionTokens, model, c.markupPercent)

	pair := domain.MessagePair{Human: input, AI: text}
	next, err := c.sessions.Record(ctx, *sess, pair, settings)
	if err != nil {
		c.record(model.ID, "store_error", elapsed, usage)
		return nil, err
	}
	c.record(model.ID, "success", elapsed, usage)

	slog.Debug("chat turn completed",
		"session_id", sessionID,
		"model", model.ID,
		"context_pairs", len(prompt.Window),
		"history_len", next.History.Len(),
		"duration", elapsed,
	)

	return &Reply{
		Session:  next,
		Pair:     pair,
		Prompt:   prompt,
		Model:    model,
		Usage:    usage,
		Duration: elapsed,
	}, nil
}

// Reset starts the session over with an empty history. It fails with
// ErrActiveRequest while a turn for the session is waiting on the model.
func (c *ChatService) Reset(ctx context.Context, sessionID string) (*domain.Session, error) {
	release, err := c.sessions.TryAcquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	return c.sessions.Reset(ctx, sessionID)
}

// Session returns the current state of the session, creating it if needed.
func (c *ChatService) Session(ctx context.Context, sessionID string) (*domain.Session, error) {
	return c.sessions.FindOrCreate(ctx, sessionID)
}

// UpdateSettings stores the controls without running a turn.
func (c *ChatService) UpdateSettings(ctx context.Context, sessionID string, settings domain.Settings) error {
	return c.sessions.UpdateSettings(ctx, sessionID, settings)
}

func (c *ChatService) Catalog() *config.Catalog {
	return c.sessions.Catalog()
}

func (c *ChatService) record(model, result string, d time.Duration, usage domain.Usage) {
	if c.recorder == nil {
		return
	}
	c.recorder.RecordTurn(model, result, d, usage)
}

func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrEmptyReply):
		return "empty_reply"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
