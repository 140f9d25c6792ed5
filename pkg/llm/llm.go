// Package llm provides the language-model layer used to resolve form
// questions that deterministic matching cannot handle. It talks to any
// OpenAI-compatible chat-completions endpoint over raw HTTP.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/openai/openai-go"
)

const (
	// DefaultBaseURL is the default OpenAI API base URL
	DefaultBaseURL = "https://api.openai.com/v1"

	// noMatchSentinel is what the model is instructed to return when no
	// stored answer fits the question.
	noMatchSentinel = "NO_MATCH"

	// unknownSentinel is what the model is instructed to return when the
	// resume and profile do not contain enough information to answer.
	unknownSentinel = "UNKNOWN"
)

// ErrNoMatch is returned by SemanticMatch when the model decides none of
// the candidate answers apply to the question.
var ErrNoMatch = errors.New("llm: no semantic match")

// ErrUnknown is returned by GenerateAnswer when the model cannot produce an
// answer from the available material. Callers escalate instead of guessing.
var ErrUnknown = errors.New("llm: answer unknown")

// StoredAnswer is a question/answer pair offered to the model as a
// semantic-match candidate.
type StoredAnswer struct {
	Question string
	Answer   string
}

// Client is the language-model surface the resolver depends on. Tests
// substitute a stub.
type Client interface {
	// SemanticMatch asks whether any stored answer covers the question,
	// allowing for rephrasing. Returns the matched answer or ErrNoMatch.
	SemanticMatch(ctx context.Context, question string, stored []StoredAnswer) (string, error)

	// GenerateAnswer produces an answer from the resume and profile
	// context. When options is non-empty the model must pick one of them
	// verbatim. Returns ErrUnknown when the material does not support an
	// answer.
	GenerateAnswer(ctx context.Context, question, resumeText, profileContext string, options []string) (string, error)
}

// OpenAI implements Client against an OpenAI-compatible chat-completions
// endpoint.
type OpenAI struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	tokenizer  *Tokenizer
}

// Option configures an OpenAI client.
type Option func(*OpenAI)

// WithModel sets the model to use for completions.
func WithModel(model string) Option {
	return func(c *OpenAI) {
		c.model = model
	}
}

// WithBaseURL sets a custom base URL for OpenAI-compatible APIs.
// This enables using Azure OpenAI, local models, or other compatible services.
func WithBaseURL(baseURL string) Option {
	return func(c *OpenAI) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *OpenAI) {
		c.httpClient = hc
	}
}

// New creates an OpenAI client.
//
// If apiKey is empty it falls back to the OPENAI_API_KEY environment
// variable. If the base URL is not set via WithBaseURL it falls back to
// OPENAI_BASE_URL.
func New(apiKey string, opts ...Option) (*OpenAI, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (provide via parameter or OPENAI_API_KEY environment variable)")
	}

	c := &OpenAI{
		model:      "gpt-4o-mini",
		apiKey:     apiKey,
		httpClient: &http.Client{},
		baseURL:    DefaultBaseURL,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.baseURL == DefaultBaseURL {
		if envBaseURL := os.Getenv("OPENAI_BASE_URL"); envBaseURL != "" {
			c.baseURL = envBaseURL
		}
	}

	// Tokenizer initialization can fail offline; the client then falls
	// back to approximate counting.
	if tok, err := NewTokenizer(); err == nil {
		c.tokenizer = tok
	}

	return c, nil
}

// SemanticMatch implements Client.
func (c *OpenAI) SemanticMatch(ctx context.Context, question string, stored []StoredAnswer) (string, error) {
	if len(stored) == 0 {
		return "", ErrNoMatch
	}

	system, user := semanticMatchPrompt(question, stored, c.counter())
	answer, err := c.complete(ctx, system, user)
	if err != nil {
		return "", err
	}

	answer = strings.TrimSpace(answer)
	if answer == "" || strings.EqualFold(answer, noMatchSentinel) {
		return "", ErrNoMatch
	}
	return answer, nil
}

// GenerateAnswer implements Client.
func (c *OpenAI) GenerateAnswer(ctx context.Context, question, resumeText, profileContext string, options []string) (string, error) {
	system, user := generatePrompt(question, resumeText, profileContext, options, c.counter())
	answer, err := c.complete(ctx, system, user)
	if err != nil {
		return "", err
	}

	answer = strings.TrimSpace(answer)
	if answer == "" || strings.EqualFold(answer, unknownSentinel) {
		return "", ErrUnknown
	}
	return answer, nil
}

func (c *OpenAI) counter() func(string) int {
	if c.tokenizer != nil {
		return c.tokenizer.CountTokens
	}
	return approximateTokens
}

// complete sends a non-streaming chat-completions request and returns the
// first choice's content.
func (c *OpenAI) complete(ctx context.Context, system, user string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(user),
	}

	reqBody := map[string]interface{}{
		"model":       c.model,
		"messages":    messages,
		"temperature": 0,
	}
	return c.send(ctx, reqBody)
}

// send posts a chat-completions request body and returns the first
// choice's content.
func (c *OpenAI) send(ctx context.Context, reqBody map[string]interface{}) (string, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return "", fmt.Errorf("API request failed with status %d (failed to read error body: %w)", resp.StatusCode, readErr)
		}
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("API response contained no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

// GetModel returns the model name being used.
func (c *OpenAI) GetModel() string {
	return c.model
}

// GetBaseURL returns the base URL being used.
func (c *OpenAI) GetBaseURL() string {
	return c.baseURL
}
