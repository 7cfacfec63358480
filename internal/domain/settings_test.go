package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettings_Validate(t *testing.T) {
	allowed := []string{"llama-3.3-70b-versatile", "mixtral-8x7b-32768"}

	tests := []struct {
		name     string
		settings Settings
		wantErr  error
	}{
		{"valid lower bound", Settings{Model: "mixtral-8x7b-32768", Window: 1}, nil},
		{"valid upper bound", Settings{Model: "mixtral-8x7b-32768", Window: 10}, nil},
		{"window zero", Settings{Model: "mixtral-8x7b-32768", Window: 0}, ErrWindowOutOfRange},
		{"window eleven", Settings{Model: "mixtral-8x7b-32768", Window: 11}, ErrWindowOutOfRange},
		{"unknown model", Settings{Model: "gpt-4", Window: 5}, ErrModelNotFound},
		{"empty model", Settings{Window: 5}, ErrModelNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate(allowed)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
