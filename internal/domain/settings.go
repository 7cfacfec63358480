package domain

import "fmt"

const (
	MinWindow     = 1
	MaxWindow     = 10
	DefaultWindow = 5
)

// Settings are the per-session chat controls chosen in the UI.
type Settings struct {
	Model    string `json:"model"`
	Window   int    `json:"window"`
	ShowCost bool   `json:"show_cost"`
}

// Validate checks the window bounds and that Model is one of allowed.
func (s Settings) Validate(allowed []string) error {
	if s.Window < MinWindow || s.Window > MaxWindow {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrWindowOutOfRange, s.Window, MinWindow, MaxWindow)
	}
	for _, id := range allowed {
		if id == s.Model {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrModelNotFound, s.Model)
}
