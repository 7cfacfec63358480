package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/groqchat/internal/config"
)

const typingInterval = 4 * time.Second

// Messenger is the part of the Bot API client used to deliver replies.
type Messenger interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
}

// SendLongMessage sends text in as many messages as needed. Parts are sent
// as Markdown when balanced and fall back to plain text when Telegram
// rejects them.
func SendLongMessage(ctx context.Context, m Messenger, chatID int64, text string, replyToID *int) error {
	parts := SplitMessage(FixMarkdown(text), config.MaxTelegramMessageLen)

	for _, part := range parts {
		params := &bot.SendMessageParams{
			ChatID: chatID,
			Text:   part,
		}
		if IsBalancedMarkdown(part) {
			params.ParseMode = models.ParseModeMarkdownV1
		}
		if replyToID != nil {
			params.ReplyParameters = &models.ReplyParameters{MessageID: *replyToID}
			replyToID = nil
		}

		if _, err := m.SendMessage(ctx, params); err != nil {
			if params.ParseMode == "" {
				return fmt.Errorf("send message: %w", err)
			}
			slog.Warn("markdown send failed, falling back to plain text", "error", err)
			params.ParseMode = ""
			if _, err := m.SendMessage(ctx, params); err != nil {
				return fmt.Errorf("send message: %w", err)
			}
		}
	}
	return nil
}

// StartTyping shows the "typing..." status until the returned function is
// called.
func StartTyping(ctx context.Context, m Messenger, chatID int64) context.CancelFunc {
	ctx, cancel := context.WithCancel(ctx)
	send := func() {
		_, _ = m.SendChatAction(ctx, &bot.SendChatActionParams{
			ChatID: chatID,
			Action: models.ChatActionTyping,
		})
	}
	go func() {
		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()
		send()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				send()
			}
		}
	}()
	return cancel
}
