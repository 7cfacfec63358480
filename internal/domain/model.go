package domain

import "github.com/shopspring/decimal"

type AIModel struct {
	ID              string  `yaml:"id" json:"id"`
	Name            string  `yaml:"name" json:"name"`
	PromptPrice     float64 `yaml:"prompt_price" json:"prompt_price"`         // per 1M tokens
	CompletionPrice float64 `yaml:"completion_price" json:"completion_price"` // per 1M tokens
	ContextLength   int     `yaml:"context_length" json:"context_length"`
}

func (m *AIModel) IsFree() bool {
	return m.PromptPrice == 0 && m.CompletionPrice == 0
}

// Usage is what a single completion consumed.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	Cost             decimal.Decimal
}

func (u Usage) TotalTokens() int {
	return u.PromptTokens + u.CompletionTokens
}
