// Package ai provides the chat backends and the reply interpreter.
//
// This package covers one responsibility with two wire protocols:
//   - Factory: creates a chat client for a configured backend
//   - OpenAI-compatible HTTP client: SSE deltas or a single JSON object
//   - Gemini client: the Google GenAI SDK, streamed
//   - Interpreter: hides think-tag reasoning from the visible answer
//
// Which protocol is used is decided by the backend's kind in the config file.
package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/doeshing/aicmd-go/internal/domain"
	"github.com/doeshing/aicmd-go/internal/ports"
)

const (
	sseDataPrefix  = "data:"
	sseDone        = "[DONE]"
	maxSSELineSize = 1 << 20
	maxErrorBody   = 512
)

// ====================================================================================
// Factory
// ====================================================================================

// Factory creates chat clients based on backend definitions.
// It maintains a single HTTP client shared across all backends.
type Factory struct {
	httpClient *http.Client
	logger     ports.Logger
}

// NewFactory creates a new client factory with a configured HTTP client.
func NewFactory(logger ports.Logger) *Factory {
	return NewFactoryWithHTTPClient(&http.Client{Timeout: domain.DefaultHTTPClientTimeout}, logger)
}

// NewFactoryWithHTTPClient lets callers supply the transport.
func NewFactoryWithHTTPClient(client *http.Client, logger ports.Logger) *Factory {
	return &Factory{httpClient: client, logger: logger}
}

// ForBackend returns the client matching backend.Kind.
func (f *Factory) ForBackend(backend domain.BackendDefinition) (ports.ChatClient, error) {
	switch backend.GetKind() {
	case domain.BackendOpenAI:
		if backend.Endpoint == "" {
			return nil, fmt.Errorf("backend %s: endpoint is required", backend.Name)
		}
		return newOpenAIClient(backend, f.httpClient, f.logger), nil
	case domain.BackendGemini:
		return newGeminiClient(context.Background(), backend, f.httpClient, f.logger)
	default:
		return nil, fmt.Errorf("backend %s: unsupported kind %q", backend.Name, backend.Kind)
	}
}

var _ ports.ChatClientFactory = (*Factory)(nil)

// ====================================================================================
// OpenAI-compatible client
// ====================================================================================

// openAIClient talks the chat-completions protocol used by OpenAI, Ollama,
// DeepSeek and SiliconFlow.
type openAIClient struct {
	backend    domain.BackendDefinition
	httpClient *http.Client
	logger     ports.Logger
}

func newOpenAIClient(backend domain.BackendDefinition, client *http.Client, logger ports.Logger) *openAIClient {
	return &openAIClient{backend: backend, httpClient: client, logger: logger}
}

func (c *openAIClient) Name() string {
	return c.backend.Name
}

func (c *openAIClient) Backend() domain.BackendDefinition {
	return c.backend
}

// Stream posts the conversation and forwards each content delta to onDelta.
// Replies without an event-stream content type are parsed as one JSON object.
func (c *openAIClient) Stream(ctx context.Context, messages []domain.ChatMessage, onDelta func(string) error) error {
	endpoint := completionsURL(c.backend.Endpoint)

	body, err := c.buildRequestBody(messages)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.backend.Stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}
	if apiKey := resolveAuth(c.backend.AuthEnvVar, "OPENAI_API_KEY"); apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	}

	c.debug("sending chat request", map[string]interface{}{
		"endpoint": endpoint,
		"model":    c.backend.ModelID,
		"stream":   c.backend.Stream,
		"messages": len(messages),
	})

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return classifyError(err, endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return classifyError(&httpStatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(snippet)),
		}, endpoint)
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "text/event-stream") {
		if err := readEventStream(resp.Body, onDelta); err != nil {
			return c.wrap(err, endpoint)
		}
		return nil
	}

	content, err := c.parseResponse(resp.Body)
	if err != nil {
		return c.wrap(err, endpoint)
	}
	return onDelta(content)
}

func (c *openAIClient) wrap(err error, endpoint string) error {
	var callbackErr *callbackError
	if errors.As(err, &callbackErr) {
		return callbackErr.err
	}
	return classifyError(err, endpoint)
}

func (c *openAIClient) buildRequestBody(messages []domain.ChatMessage) ([]byte, error) {
	request := map[string]interface{}{
		"model":       c.backend.ModelID,
		"messages":    messages,
		"stream":      c.backend.Stream,
		"temperature": c.backend.GetTemperature(),
		"max_tokens":  c.backend.GetMaxTokens(),
	}
	return json.Marshal(request)
}

func (c *openAIClient) parseResponse(body io.Reader) (string, error) {
	var response map[string]interface{}
	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiErr, ok := response["error"]; ok {
		return "", fmt.Errorf("API error: %v", apiErr)
	}
	return extractJSONPath(response, c.backend.GetResponseJSONPath())
}

func (c *openAIClient) debug(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, fields)
	}
}

var _ ports.ChatClient = (*openAIClient)(nil)

// callbackError marks an error returned by the consumer's onDelta so it is
// not mistaken for a transport failure.
type callbackError struct {
	err error
}

func (e *callbackError) Error() string { return e.err.Error() }
func (e *callbackError) Unwrap() error { return e.err }

type streamDelta struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// readEventStream reads `data:` lines until the [DONE] sentinel or EOF.
func readEventStream(r io.Reader, onDelta func(string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELineSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, sseDataPrefix) {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, sseDataPrefix))
		if payload == sseDone {
			return nil
		}
		if payload == "" {
			continue
		}

		var delta streamDelta
		if err := json.Unmarshal([]byte(payload), &delta); err != nil {
			return fmt.Errorf("decode stream event: %w", err)
		}
		if delta.Error != nil {
			return fmt.Errorf("API error: %s", delta.Error.Message)
		}
		for _, choice := range delta.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			if err := onDelta(choice.Delta.Content); err != nil {
				return &callbackError{err: err}
			}
		}
	}
	return scanner.Err()
}

// completionsURL accepts either a full chat-completions URL or an API base
// such as http://localhost:11434/v1/.
func completionsURL(endpoint string) string {
	trimmed := strings.TrimRight(endpoint, "/")
	if strings.HasSuffix(trimmed, "/v1") {
		return trimmed + "/chat/completions"
	}
	return endpoint
}

// ====================================================================================
// JSON path extraction
// ====================================================================================

// extractJSONPath extracts a string value from a nested JSON structure using a simple path notation.
// Example: "choices[0].message.content".
func extractJSONPath(data map[string]interface{}, path string) (string, error) {
	var current interface{} = data

	for _, part := range parseJSONPath(path) {
		switch part.kind {
		case pathField:
			obj, ok := current.(map[string]interface{})
			if !ok {
				return "", fmt.Errorf("expected object at '%s'", part.value)
			}
			var found bool
			current, found = obj[part.value]
			if !found {
				return "", fmt.Errorf("field '%s' not found", part.value)
			}

		case pathIndex:
			arr, ok := current.([]interface{})
			if !ok {
				return "", fmt.Errorf("expected array at index %s", part.value)
			}
			idx, err := strconv.Atoi(part.value)
			if err != nil {
				return "", fmt.Errorf("invalid index %q", part.value)
			}
			if idx < 0 || idx >= len(arr) {
				return "", fmt.Errorf("index %d out of bounds (len=%d)", idx, len(arr))
			}
			current = arr[idx]
		}
	}

	if str, ok := current.(string); ok {
		return str, nil
	}
	return "", fmt.Errorf("final value is not a string: %T", current)
}

type pathKind int

const (
	pathField pathKind = iota
	pathIndex
)

type pathPart struct {
	kind  pathKind
	value string
}

// parseJSONPath converts "choices[0].message.content" into
// [{field choices} {index 0} {field message} {field content}].
func parseJSONPath(path string) []pathPart {
	var (
		parts   []pathPart
		current strings.Builder
	)
	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, pathPart{kind: pathField, value: current.String()})
			current.Reset()
		}
	}

	for i := 0; i < len(path); i++ {
		switch ch := path[i]; ch {
		case '.':
			flush()
		case '[':
			flush()
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				return parts
			}
			parts = append(parts, pathPart{kind: pathIndex, value: path[i+1 : i+end]})
			i += end
		default:
			current.WriteByte(ch)
		}
	}
	flush()
	return parts
}

func resolveAuth(primary string, fallbacks ...string) string {
	if primary != "" {
		if value := os.Getenv(primary); value != "" {
			return value
		}
	}
	for _, name := range fallbacks {
		if value := os.Getenv(name); value != "" {
			return value
		}
	}
	return ""
}
