package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/groqchat/internal/domain"
	"github.com/set-night/groqchat/internal/middleware"
	"github.com/set-night/groqchat/internal/service"
)

const startText = "👋 Hi! Send me a question and I will answer with the selected Groq model.\n\n" +
	"I remember the last few exchanges of our conversation.\n\n" +
	"/settings choose the model and memory length\n" +
	"/end start a new conversation"

// Bot is the Telegram front end. Each chat is its own session.
type Bot struct {
	client  *bot.Bot
	chat    *service.ChatService
	limiter *middleware.Limiter
}

// Deps contains all dependencies required to construct a Bot.
type Deps struct {
	Token   string
	Chat    *service.ChatService
	Limiter *middleware.Limiter
	Options []bot.Option
}

func New(deps Deps) (*Bot, error) {
	b := &Bot{chat: deps.Chat, limiter: deps.Limiter}

	opts := append([]bot.Option{
		bot.WithMiddlewares(recoverUpdates(), logUpdates()),
		bot.WithDefaultHandler(b.handleText),
	}, deps.Options...)

	client, err := bot.New(deps.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	b.client = client
	b.register()
	return b, nil
}

func (b *Bot) register() {
	b.client.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, b.handleStart)
	b.client.RegisterHandler(bot.HandlerTypeMessageText, "/settings", bot.MatchTypePrefix, b.handleSettings)
	b.client.RegisterHandler(bot.HandlerTypeMessageText, "/end", bot.MatchTypePrefix, b.handleEnd)

	b.client.RegisterHandler(bot.HandlerTypeCallbackQueryData, callbackModel, bot.MatchTypePrefix, b.handleSettingsCallback)
	b.client.RegisterHandler(bot.HandlerTypeCallbackQueryData, callbackWindow, bot.MatchTypePrefix, b.handleSettingsCallback)
	b.client.RegisterHandler(bot.HandlerTypeCallbackQueryData, callbackShowCost, bot.MatchTypeExact, b.handleSettingsCallback)
}

// Start polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context, dropPending bool) {
	if dropPending {
		if _, err := b.client.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			slog.Warn("drop pending updates", "error", err)
		}
	}
	me, err := b.client.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		return
	}
	slog.Info("starting telegram bot", "username", me.Username, "id", me.ID)
	b.client.Start(ctx)
	slog.Info("telegram bot stopped")
}

// SessionID is the chat session key for a Telegram chat.
func SessionID(chatID int64) string {
	return fmt.Sprintf("tg:%d", chatID)
}

func (b *Bot) handleStart(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	b.send(ctx, update.Message.Chat.ID, startText)
}

func (b *Bot) handleEnd(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if _, err := b.chat.Reset(ctx, SessionID(chatID)); err != nil {
		slog.Error("reset session", "error", err, "chat_id", chatID)
		b.send(ctx, chatID, "❌ "+domain.UserMessage(err))
		return
	}
	b.send(ctx, chatID, "🔄 Context cleared. Starting a new conversation.")
}

func (b *Bot) handleSettings(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	sess, err := b.chat.Session(ctx, SessionID(chatID))
	if err != nil {
		slog.Error("load session", "error", err, "chat_id", chatID)
		b.send(ctx, chatID, "❌ "+domain.UserMessage(err))
		return
	}

	_, err = b.client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        settingsText(sess.Settings),
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: SettingsKeyboard(b.chat.Catalog(), sess.Settings),
	})
	if err != nil {
		slog.Error("send settings", "error", err)
	}
}

func (b *Bot) handleSettingsCallback(ctx context.Context, _ *bot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	if cq == nil {
		return
	}
	msg := cq.Message.Message
	if msg == nil {
		b.answerCallback(ctx, cq.ID, "")
		return
	}

	settings, err := b.changeSettings(ctx, msg.Chat.ID, cq.Data)
	if err != nil {
		b.answerCallback(ctx, cq.ID, domain.UserMessage(err))
		return
	}
	b.answerCallback(ctx, cq.ID, "")

	_, err = b.client.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Text:        settingsText(settings),
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: SettingsKeyboard(b.chat.Catalog(), settings),
	})
	if err != nil {
		slog.Warn("edit settings message", "error", err)
	}
}

func (b *Bot) changeSettings(ctx context.Context, chatID int64, data string) (domain.Settings, error) {
	sid := SessionID(chatID)
	sess, err := b.chat.Session(ctx, sid)
	if err != nil {
		return domain.Settings{}, err
	}
	next, err := ApplyCallback(sess.Settings, data)
	if err != nil {
		return domain.Settings{}, err
	}
	if err := b.chat.UpdateSettings(ctx, sid, next); err != nil {
		return domain.Settings{}, err
	}
	return next, nil
}

func (b *Bot) handleText(ctx context.Context, _ *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" || strings.HasPrefix(msg.Text, "/") {
		return
	}
	chatID := msg.Chat.ID

	stopTyping := StartTyping(ctx, b.client, chatID)
	text := b.answer(ctx, chatID, msg.Text)
	stopTyping()

	replyTo := msg.ID
	if err := SendLongMessage(ctx, b.client, chatID, text, &replyTo); err != nil {
		slog.Error("send reply", "error", err, "chat_id", chatID)
	}
}

// answer runs one chat turn for the chat and returns the text to send back,
// which is an error notice when the turn failed.
func (b *Bot) answer(ctx context.Context, chatID int64, input string) string {
	sid := SessionID(chatID)

	if b.limiter != nil && !b.limiter.Allow(sid) {
		return "⏳ " + domain.UserMessage(domain.ErrTooManyRequests)
	}

	sess, err := b.chat.Session(ctx, sid)
	if err != nil {
		slog.Error("load session", "error", err, "chat_id", chatID)
		return "❌ " + domain.UserMessage(err)
	}

	reply, err := b.chat.Submit(ctx, sid, sess.Settings, input)
	if err != nil {
		if errors.Is(err, domain.ErrActiveRequest) || errors.Is(err, domain.ErrRateLimited) {
			return "⏳ " + domain.UserMessage(err)
		}
		return "❌ " + domain.UserMessage(err)
	}

	text := reply.Pair.AI
	if reply.Session.Settings.ShowCost {
		text += fmt.Sprintf("\n\n💰 $%s (%d→%d tokens)",
			reply.Usage.Cost.StringFixed(6), reply.Usage.PromptTokens, reply.Usage.CompletionTokens)
	}
	return text
}

func (b *Bot) send(ctx context.Context, chatID int64, text string) {
	if _, err := b.client.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		slog.Error("send message", "error", err, "chat_id", chatID)
	}
}

func (b *Bot) answerCallback(ctx context.Context, id, text string) {
	_, _ = b.client.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: id,
		Text:            text,
		ShowAlert:       text != "",
	})
}

func settingsText(s domain.Settings) string {
	cost := "off"
	if s.ShowCost {
		cost = "on"
	}
	return fmt.Sprintf("⚙️ *Settings*\n\n🤖 Model: `%s`\n🧠 Memory length: *%d*\n💰 Show cost: *%s*", s.Model, s.Window, cost)
}
