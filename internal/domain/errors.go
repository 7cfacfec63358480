package domain

import "errors"

var (
	ErrEmptyInput          = errors.New("empty input")
	ErrSessionNotFound     = errors.New("session not found")
	ErrModelNotFound       = errors.New("model not found")
	ErrWindowOutOfRange    = errors.New("memory length out of range")
	ErrActiveRequest       = errors.New("active request exists")
	ErrRateLimited         = errors.New("rate limited by inference API")
	ErrUnauthorized        = errors.New("inference API rejected credentials")
	ErrUpstreamUnavailable = errors.New("inference API unavailable")
	ErrInference           = errors.New("inference request failed")
	ErrEmptyReply          = errors.New("inference API returned no reply")
	ErrTooManyRequests     = errors.New("too many requests")
)
