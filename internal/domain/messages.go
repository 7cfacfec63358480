package domain

import (
	"context"
	"errors"
)

// UserMessage turns a chat error into text fit to show in place of a reply.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyInput):
		return "Please type a question first."
	case errors.Is(err, ErrWindowOutOfRange):
		return "Conversational memory length must be between 1 and 10."
	case errors.Is(err, ErrModelNotFound):
		return "Unknown model. Pick one from the settings."
	case errors.Is(err, ErrActiveRequest):
		return "Wait for the answer to your previous question."
	case errors.Is(err, ErrTooManyRequests):
		return "Too many requests. Wait a moment."
	case errors.Is(err, ErrRateLimited):
		return "The model is rate limited right now. Try again later."
	case errors.Is(err, ErrUnauthorized):
		return "The inference API rejected the configured API key."
	case errors.Is(err, ErrUpstreamUnavailable):
		return "The inference API is temporarily unavailable."
	case errors.Is(err, ErrEmptyReply):
		return "The model returned no answer."
	case errors.Is(err, context.DeadlineExceeded):
		return "Timed out waiting for the answer."
	default:
		return "Something went wrong while processing the request."
	}
}
