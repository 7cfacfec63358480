package domain

import "time"

// MessagePair is one completed turn: what the human asked and what the model
// answered. Pairs are only ever created after a successful reply.
type MessagePair struct {
	Human string `json:"human"`
	AI    string `json:"ai"`
}

// History is the chronological list of turns of a session. The zero value is
// an empty history. A History is never mutated in place.
type History struct {
	pairs []MessagePair
}

// NewHistory builds a history from pairs in chronological order.
func NewHistory(pairs ...MessagePair) History {
	if len(pairs) == 0 {
		return History{}
	}
	cp := make([]MessagePair, len(pairs))
	copy(cp, pairs)
	return History{pairs: cp}
}

func (h History) Len() int {
	return len(h.pairs)
}

// Pairs returns a copy of all pairs, oldest first.
func (h History) Pairs() []MessagePair {
	cp := make([]MessagePair, len(h.pairs))
	copy(cp, h.pairs)
	return cp
}

// Append returns a new history with p added as the most recent turn.
func (h History) Append(p MessagePair) History {
	next := make([]MessagePair, len(h.pairs), len(h.pairs)+1)
	copy(next, h.pairs)
	return History{pairs: append(next, p)}
}

// Last returns the most recent min(k, Len()) pairs, oldest first.
// A non-positive k yields an empty window.
func (h History) Last(k int) []MessagePair {
	if k <= 0 || len(h.pairs) == 0 {
		return []MessagePair{}
	}
	start := len(h.pairs) - k
	if start < 0 {
		start = 0
	}
	window := make([]MessagePair, len(h.pairs)-start)
	copy(window, h.pairs[start:])
	return window
}

// Session is the state owned by one browser (or chat) session.
type Session struct {
	ID        string
	History   History
	Settings  Settings
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WithTurn returns a copy of the session with the pair appended and the
// settings that produced it recorded.
func (s Session) WithTurn(p MessagePair, settings Settings, at time.Time) Session {
	s.History = s.History.Append(p)
	s.Settings = settings
	s.UpdatedAt = at
	return s
}

// IsIdle reports whether the session has not been touched for longer than ttl.
func (s Session) IsIdle(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.UpdatedAt) > ttl
}
