package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/doeshing/aicmd-go/internal/domain"
	"github.com/doeshing/aicmd-go/internal/ports"
)

// geminiClient streams completions through the Google GenAI SDK.
type geminiClient struct {
	backend domain.BackendDefinition
	client  *genai.Client
	logger  ports.Logger
}

func newGeminiClient(ctx context.Context, backend domain.BackendDefinition, httpClient *http.Client, logger ports.Logger) (*geminiClient, error) {
	apiKey := resolveAuth(backend.AuthEnvVar, "GEMINI_API_KEY", "GOOGLE_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("backend %s: missing API key, set %s or GEMINI_API_KEY", backend.Name, backend.AuthEnvVar)
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if backend.Endpoint != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: backend.Endpoint}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &geminiClient{backend: backend, client: client, logger: logger}, nil
}

func (g *geminiClient) Name() string {
	return g.backend.Name
}

func (g *geminiClient) Backend() domain.BackendDefinition {
	return g.backend
}

// Stream sends the conversation and forwards each response's text. When the
// backend is not configured to stream, the whole reply arrives as one delta.
func (g *geminiClient) Stream(ctx context.Context, messages []domain.ChatMessage, onDelta func(string) error) error {
	system, contents := toGeminiContents(messages)
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(g.backend.GetTemperature())),
		MaxOutputTokens: int32(g.backend.GetMaxTokens()),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	if g.logger != nil {
		g.logger.Debug("sending gemini request", map[string]interface{}{
			"model":    g.backend.ModelID,
			"stream":   g.backend.Stream,
			"messages": len(messages),
		})
	}

	if !g.backend.Stream {
		resp, err := g.client.Models.GenerateContent(ctx, g.backend.ModelID, contents, config)
		if err != nil {
			return classifyError(err, g.backend.ModelID)
		}
		return onDelta(resp.Text())
	}

	for resp, err := range g.client.Models.GenerateContentStream(ctx, g.backend.ModelID, contents, config) {
		if err != nil {
			return classifyError(err, g.backend.ModelID)
		}
		text := resp.Text()
		if text == "" {
			continue
		}
		if err := onDelta(text); err != nil {
			return err
		}
	}
	return nil
}

// toGeminiContents folds system messages into one instruction and maps the
// remaining roles onto user/model turns.
func toGeminiContents(messages []domain.ChatMessage) (string, []*genai.Content) {
	var (
		system   []string
		contents []*genai.Content
	)
	for _, msg := range messages {
		switch msg.Role {
		case domain.RoleSystem:
			system = append(system, msg.Content)
		case domain.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	return strings.Join(system, "\n\n"), contents
}

var _ ports.ChatClient = (*geminiClient)(nil)
