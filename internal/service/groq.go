package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/set-night/groqchat/internal/config"
	"github.com/set-night/groqchat/internal/domain"
)

// GroqService talks to the OpenAI-compatible Groq inference API.
type GroqService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	models     *expiring[[]string]
}

func NewGroqService(apiKey, baseURL string) *GroqService {
	return &GroqService{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: config.RequestTimeout},
		models:     newExpiring[[]string](config.ModelCacheDuration),
	}
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

type ChatChoice struct {
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type ChatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Content returns the first choice's text, or ErrEmptyReply.
func (r *ChatResponse) Content() (string, error) {
	if len(r.Choices) == 0 {
		return "", domain.ErrEmptyReply
	}
	return r.Choices[0].Message.Content, nil
}

func (s *GroqService) Chat(ctx context.Context, messages []ChatMessage, model string) (*ChatResponse, error) {
	payload, err := json.Marshal(ChatRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		return nil, responseError(resp, body)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &chatResp, nil
}

// ListModels returns the IDs of the models the API currently serves.
func (s *GroqService) ListModels(ctx context.Context) ([]string, error) {
	if ids, ok := s.models.Load(); ok {
		return ids, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch models: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, responseError(resp, body)
	}

	var result struct {
		Data []struct {
			ID     string `json:"id"`
			Active *bool  `json:"active"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse models: %w", err)
	}

	ids := make([]string, 0, len(result.Data))
	for _, m := range result.Data {
		if m.Active != nil && !*m.Active {
			continue
		}
		ids = append(ids, m.ID)
	}

	s.models.Store(ids)
	return ids, nil
}

func responseError(resp *http.Response, body []byte) error {
	var kind error
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		kind = domain.ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		kind = domain.ErrRateLimited
	case resp.StatusCode >= 500:
		kind = domain.ErrUpstreamUnavailable
	default:
		kind = domain.ErrInference
	}

	msg := errorMessage(resp.Header.Get("Content-Type"), body)
	if msg == "" {
		return fmt.Errorf("%w (%d)", kind, resp.StatusCode)
	}
	return fmt.Errorf("%w (%d): %s", kind, resp.StatusCode, msg)
}

const maxErrorMessageRunes = 200

// errorMessage pulls a human readable reason out of an error body. Gateways in
// front of the API answer with HTML pages, the API itself with JSON.
func errorMessage(contentType string, body []byte) string {
	if strings.Contains(contentType, "text/html") {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return ""
		}
		return strings.TrimSpace(doc.Find("title").First().Text())
	}

	var apiErr struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}

	text := strings.TrimSpace(string(body))
	if runes := []rune(text); len(runes) > maxErrorMessageRunes {
		text = string(runes[:maxErrorMessageRunes])
	}
	return text
}
