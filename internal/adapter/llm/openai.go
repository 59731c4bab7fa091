package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"docstitch/internal/domain"
)

const systemPrompt = "You are an assistant that generates Google-style Python docstrings."

const promptTemplate = `Generate a concise and informative Google-style docstring (per PEP 257) for the following Python %s '%s' from the file '%s'.
The docstring should describe the functionality, arguments (Args:), return values (Returns:) and raised exceptions (Raises:) where applicable.
Return ONLY the docstring itself, without extra explanations or code backticks.

Code:
` + "```python\n%s\n```" + `

Docstring:
`

// OpenAIGenerator talks to an OpenAI-compatible chat-completions endpoint.
// One logical call per flagged unit; no retries. A single instance is shared
// read-only across the worker pool.
type OpenAIGenerator struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	client      *http.Client
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ResolveAPIKey picks the key from the flag value or the environment. Some
// local endpoints accept any key, so a placeholder is used instead of failing.
func ResolveAPIKey(flagKey, env string) string {
	if flagKey != "" {
		return flagKey
	}
	if key := os.Getenv(env); key != "" {
		return key
	}
	slog.Warn("no API key found; calls will fail if the endpoint requires authentication", "env", env)
	return "dummy-key"
}

func NewOpenAIGenerator(apiKey, model, baseURL string, timeout time.Duration, temperature float64) *OpenAIGenerator {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIGenerator{
		apiKey:      apiKey,
		model:       model,
		baseURL:     strings.TrimRight(baseURL, "/"),
		temperature: temperature,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Generate requests docstring text for one unit and normalizes the reply.
// Any backend error, malformed response or empty normalized text yields an
// ErrBackendFailure; the caller skips the unit and continues.
func (g *OpenAIGenerator) Generate(ctx context.Context, req domain.GenRequest) (string, error) {
	prompt := fmt.Sprintf(promptTemplate, req.KindLabel, req.Name, req.File, req.Snippet)

	reqBody := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: g.temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal request: %v", domain.ErrBackendFailure, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", domain.ErrBackendFailure, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: request failed: %v", domain.ErrBackendFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", domain.ErrBackendFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: API returned status %d: %s", domain.ErrBackendFailure, resp.StatusCode, preview(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("%w: failed to parse response (body: %s): %v", domain.ErrBackendFailure, preview(body), err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("%w: API error: %s", domain.ErrBackendFailure, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: response contains no choices", domain.ErrBackendFailure)
	}

	text := Normalize(chatResp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: backend returned an empty docstring for %q", domain.ErrBackendFailure, req.Name)
	}
	return text, nil
}

func (g *OpenAIGenerator) ModelName() string {
	return g.model
}

// Normalize cleans up raw backend output: models sometimes wrap the content
// in docstring delimiters or prefix it with a label despite instructions.
func Normalize(raw string) string {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, `"""`) && strings.HasSuffix(text, `"""`) && len(text) >= 6 {
		text = strings.TrimSpace(text[3 : len(text)-3])
	} else if strings.HasPrefix(text, "'''") && strings.HasSuffix(text, "'''") && len(text) >= 6 {
		text = strings.TrimSpace(text[3 : len(text)-3])
	}

	if strings.HasPrefix(strings.ToLower(text), "docstring:") {
		text = strings.TrimSpace(text[len("docstring:"):])
	}

	return text
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// MockGenerator returns canned docstrings per unit name. Used in tests.
type MockGenerator struct {
	Docs  map[string]string // unit name -> docstring content
	Fail  map[string]bool   // unit names that should error
	Calls []string
}

func NewMockGenerator(docs map[string]string) *MockGenerator {
	return &MockGenerator{Docs: docs, Fail: make(map[string]bool)}
}

func (g *MockGenerator) Generate(_ context.Context, req domain.GenRequest) (string, error) {
	g.Calls = append(g.Calls, req.Name)
	if g.Fail[req.Name] {
		return "", fmt.Errorf("%w: mock failure for %q", domain.ErrBackendFailure, req.Name)
	}
	text, ok := g.Docs[req.Name]
	if !ok || text == "" {
		return "", fmt.Errorf("%w: backend returned an empty docstring for %q", domain.ErrBackendFailure, req.Name)
	}
	return text, nil
}

func (g *MockGenerator) ModelName() string {
	return "mock"
}
