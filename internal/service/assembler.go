package service

import (
	"strings"

	"github.com/set-night/groqchat/internal/domain"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Prompt is everything sent to the model for one turn.
type Prompt struct {
	System string
	Window []domain.MessagePair
	Input  string
}

// Messages renders the prompt as chat-completion messages: the optional system
// message, one user/assistant exchange per window pair (oldest first), then
// the new input.
func (p Prompt) Messages() []ChatMessage {
	msgs := make([]ChatMessage, 0, 2*len(p.Window)+2)
	if p.System != "" {
		msgs = append(msgs, ChatMessage{Role: RoleSystem, Content: p.System})
	}
	for _, pair := range p.Window {
		msgs = append(msgs,
			ChatMessage{Role: RoleUser, Content: pair.Human},
			ChatMessage{Role: RoleAssistant, Content: pair.AI},
		)
	}
	return append(msgs, ChatMessage{Role: RoleUser, Content: p.Input})
}

// Text renders the prompt as a plain transcript. With no system prompt and an
// empty window it is exactly the input.
func (p Prompt) Text() string {
	var sb strings.Builder
	if p.System != "" {
		sb.WriteString(p.System)
		sb.WriteString("\n\n")
	}
	for _, pair := range p.Window {
		sb.WriteString("Human: ")
		sb.WriteString(pair.Human)
		sb.WriteString("\nAI: ")
		sb.WriteString(pair.AI)
		sb.WriteString("\n")
	}
	sb.WriteString(p.Input)
	return sb.String()
}

// Assembler builds bounded-context prompts.
type Assembler struct {
	systemPrompt string
}

func NewAssembler(systemPrompt string) *Assembler {
	return &Assembler{systemPrompt: strings.TrimSpace(systemPrompt)}
}

// Assemble keeps the last k turns of history as context for input. Older
// turns stay in the history but are not sent.
func (a *Assembler) Assemble(history domain.History, k int, input string) Prompt {
	return Prompt{
		System: a.systemPrompt,
		Window: history.Last(k),
		Input:  input,
	}
}
