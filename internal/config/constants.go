package config

import "time"

const (
	// AI request timeout
	RequestTimeout = 90 * time.Second

	// Model cache duration
	ModelCacheDuration = 1 * time.Hour

	// Session cookie
	SessionCookieName = "groqchat_session"
	SessionCookieAge  = 30 * 24 * time.Hour

	// Telegram limits
	MaxTelegramMessageLen = 4096

	// Max accepted prompt size in bytes
	MaxInputBytes = 32 << 10

	// Graceful shutdown
	ShutdownTimeout = 10 * time.Second
)
