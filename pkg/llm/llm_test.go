package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatServer returns a test server that replies to every chat-completions
// request with the given content, recording the last request body.
func chatServer(t *testing.T, content string, lastBody *map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if lastBody != nil {
			*lastBody = body
		}

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func newTestClient(t *testing.T, baseURL string) *OpenAI {
	t.Helper()
	c, err := New("test-key", WithBaseURL(baseURL), WithModel("test-model"))
	require.NoError(t, err)
	return c
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := New("")
	assert.Error(t, err)
}

func TestNewBaseURLFromEnv(t *testing.T) {
	t.Setenv("OPENAI_BASE_URL", "http://localhost:9999/v1")
	c, err := New("test-key")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999/v1", c.GetBaseURL())
}

func TestSemanticMatchReturnsStoredAnswer(t *testing.T) {
	var body map[string]interface{}
	srv := chatServer(t, "Yes", &body)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	answer, err := c.SemanticMatch(context.Background(), "Are you legally authorized to work in the US?", []StoredAnswer{
		{Question: "Do you have US work authorization?", Answer: "Yes"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Yes", answer)
	assert.Equal(t, "test-model", body["model"])
}

func TestSemanticMatchNoMatchSentinel(t *testing.T) {
	srv := chatServer(t, "NO_MATCH", nil)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.SemanticMatch(context.Background(), "What is your desired salary?", []StoredAnswer{
		{Question: "Do you have US work authorization?", Answer: "Yes"},
	})
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestSemanticMatchEmptyBankShortCircuits(t *testing.T) {
	// No HTTP server: an empty candidate list must not make a request.
	c := newTestClient(t, "http://127.0.0.1:1")
	_, err := c.SemanticMatch(context.Background(), "anything", nil)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestGenerateAnswer(t *testing.T) {
	var body map[string]interface{}
	srv := chatServer(t, "5 years", &body)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	answer, err := c.GenerateAnswer(context.Background(),
		"How many years of Go experience do you have?",
		"Senior engineer, Go since 2021.", "Name: Jane Doe", nil)
	require.NoError(t, err)
	assert.Equal(t, "5 years", answer)

	// The user message carries resume and profile context.
	messages := body["messages"].([]interface{})
	require.Len(t, messages, 2)
	user := messages[1].(map[string]interface{})["content"].(string)
	assert.Contains(t, user, "Go since 2021")
	assert.Contains(t, user, "Jane Doe")
}

func TestGenerateAnswerUnknownSentinel(t *testing.T) {
	srv := chatServer(t, "UNKNOWN", nil)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.GenerateAnswer(context.Background(), "What is your visa class?", "", "", nil)
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestGenerateAnswerOptionsInPrompt(t *testing.T) {
	var body map[string]interface{}
	srv := chatServer(t, "No", &body)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.GenerateAnswer(context.Background(), "Do you require sponsorship?", "", "", []string{"Yes", "No"})
	require.NoError(t, err)

	messages := body["messages"].([]interface{})
	user := messages[1].(map[string]interface{})["content"].(string)
	assert.Contains(t, user, "exactly one of these options")
	assert.Contains(t, user, "- Yes")
	assert.Contains(t, user, "- No")
}

func TestCompleteRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.GenerateAnswer(context.Background(), "q", "", "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestTruncateToTokens(t *testing.T) {
	count := approximateTokens

	short := "hello"
	assert.Equal(t, short, truncateToTokens(short, 100, count))

	long := strings.Repeat("word ", 1000) // ~1250 approx tokens
	out := truncateToTokens(long, 100, count)
	assert.LessOrEqual(t, count(out), 100)
	assert.Greater(t, len(out), 0)
}

func TestTokenizerCounts(t *testing.T) {
	tok, err := NewTokenizer()
	if err != nil {
		t.Skipf("tokenizer init failed (offline environment): %v", err)
	}
	assert.Greater(t, tok.CountTokens("hello world"), 0)
}
