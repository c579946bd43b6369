// Package domain defines core business entities and value objects for aicmd.
//
// This file contains AI backend definitions. The two chat client flavours the
// assistant talks to (OpenAI-compatible HTTP and Gemini) are one responsibility
// selected by BackendKind rather than separate components.
package domain

// BackendKind selects the wire protocol used to reach a model.
type BackendKind string

const (
	// BackendOpenAI speaks the chat-completions protocol. Ollama, DeepSeek and
	// SiliconFlow all expose it.
	BackendOpenAI BackendKind = "openai"
	// BackendGemini uses the Google GenAI SDK.
	BackendGemini BackendKind = "gemini"
)

// BackendDefinition describes one AI backend declared in the config file.
type BackendDefinition struct {
	Name             string      `yaml:"name"`
	Kind             BackendKind `yaml:"kind"`
	Endpoint         string      `yaml:"endpoint"`
	AuthEnvVar       string      `yaml:"auth_env_var,omitempty"`
	ModelID          string      `yaml:"model_id"`
	MaxTokens        int         `yaml:"max_tokens"`
	Temperature      float64     `yaml:"temperature"`
	Stream           bool        `yaml:"stream"`
	ResponseJSONPath string      `yaml:"response_json_path,omitempty"`
}

// Response JSON paths
const (
	DefaultResponsePath = "choices[0].message.content"
)

// GetKind returns the backend kind with the OpenAI-compatible default.
func (b BackendDefinition) GetKind() BackendKind {
	if b.Kind == "" {
		return BackendOpenAI
	}
	return b.Kind
}

// GetResponseJSONPath returns the JSON path for non-streamed replies.
func (b BackendDefinition) GetResponseJSONPath() string {
	if b.ResponseJSONPath == "" {
		return DefaultResponsePath
	}
	return b.ResponseJSONPath
}

// GetMaxTokens returns the token budget with a default fallback.
func (b BackendDefinition) GetMaxTokens() int {
	if b.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return b.MaxTokens
}

// GetTemperature returns the sampling temperature with a default fallback.
func (b BackendDefinition) GetTemperature() float64 {
	if b.Temperature <= 0 {
		return DefaultTemperature
	}
	return b.Temperature
}

// ChatMessage follows the role/content pair required by chat APIs.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
