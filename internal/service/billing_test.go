package service

import (
	"testing"

	"github.com/set-night/groqchat/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestCalculateCost(t *testing.T) {
	model := &domain.AIModel{ID: "m", PromptPrice: 0.5, CompletionPrice: 1.5}

	tests := []struct {
		name       string
		prompt     int
		completion int
		model      *domain.AIModel
		markup     float64
		want       string
	}{
		{"no markup", 1_000_000, 1_000_000, model, 0, "2"},
		{"small request", 1000, 500, model, 0, "0.00125"},
		{"with markup", 1_000_000, 0, model, 20, "0.6"},
		{"free model", 1000, 1000, &domain.AIModel{ID: "free"}, 50, "0"},
		{"nil model", 1000, 1000, nil, 0, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateCost(tt.prompt, tt.completion, tt.model, tt.markup)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
