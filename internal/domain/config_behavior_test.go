package domain_test

import (
	"testing"
	"time"

	"github.com/doeshing/aicmd-go/internal/domain"
)

// TestConfig_GetDefaultBackend tests retrieving the default backend
func TestConfig_GetDefaultBackend(t *testing.T) {
	tests := []struct {
		name        string
		config      domain.Config
		wantError   bool
		wantModelID string
	}{
		{
			name: "returns default backend successfully",
			config: domain.Config{
				DefaultBackend: "local",
				Backends: []domain.BackendDefinition{
					{Name: "gemini", Kind: domain.BackendGemini, ModelID: "gemini-2.0-flash"},
					{Name: "local", Endpoint: "http://localhost:11434/v1/chat/completions", ModelID: "qwen2.5"},
				},
			},
			wantModelID: "qwen2.5",
		},
		{
			name: "falls back to first backend when no default configured",
			config: domain.Config{
				Backends: []domain.BackendDefinition{
					{Name: "gemini", Kind: domain.BackendGemini, ModelID: "gemini-2.0-flash"},
				},
			},
			wantModelID: "gemini-2.0-flash",
		},
		{
			name: "returns error when default backend not found",
			config: domain.Config{
				DefaultBackend: "missing",
				Backends: []domain.BackendDefinition{
					{Name: "local", ModelID: "qwen2.5"},
				},
			},
			wantError: true,
		},
		{
			name:      "returns error when nothing configured",
			config:    domain.Config{},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, err := tt.config.GetDefaultBackend()

			if tt.wantError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if backend.ModelID != tt.wantModelID {
				t.Errorf("got model ID %s, want %s", backend.ModelID, tt.wantModelID)
			}
		})
	}
}

func TestConfig_PickBackend(t *testing.T) {
	cfg := domain.Config{
		DefaultBackend: "local",
		Backends: []domain.BackendDefinition{
			{Name: "local", ModelID: "qwen2.5"},
			{Name: "gemini", Kind: domain.BackendGemini, ModelID: "gemini-2.0-flash"},
		},
	}

	backend, err := cfg.PickBackend("")
	if err != nil || backend.Name != "local" {
		t.Fatalf("PickBackend(\"\") = %v, %v", backend.Name, err)
	}

	backend, err = cfg.PickBackend("gemini")
	if err != nil || backend.Name != "gemini" {
		t.Fatalf("PickBackend(gemini) = %v, %v", backend.Name, err)
	}

	if _, err := cfg.PickBackend("nope"); err == nil {
		t.Fatal("expected error for unknown override")
	}
}

func TestConfig_Defaults(t *testing.T) {
	var cfg domain.Config

	openMarker, closeMarker := cfg.GetThinkMarkers()
	if openMarker != "<think>" || closeMarker != "</think>" {
		t.Errorf("markers = %q %q", openMarker, closeMarker)
	}
	if got := cfg.GetContextWindow(); got != 10 {
		t.Errorf("GetContextWindow() = %d, want 10", got)
	}
	if got := cfg.GetSearchMaxResults(); got != 5 {
		t.Errorf("GetSearchMaxResults() = %d, want 5", got)
	}
	if got := cfg.GetSearchWorkers(); got != 3 {
		t.Errorf("GetSearchWorkers() = %d, want 3", got)
	}
	if got := cfg.GetSearchTimeout(); got != 10*time.Second {
		t.Errorf("GetSearchTimeout() = %v, want 10s", got)
	}
	if got := cfg.GetSearchBodyChars(); got != 1000 {
		t.Errorf("GetSearchBodyChars() = %d, want 1000", got)
	}
	if got := cfg.GetSearchCacheTTL(); got != time.Hour {
		t.Errorf("GetSearchCacheTTL() = %v, want 1h", got)
	}
	cfg.Search.CacheTTLMinutes = 5
	if got := cfg.GetSearchCacheTTL(); got != 5*time.Minute {
		t.Errorf("GetSearchCacheTTL() = %v, want 5m", got)
	}
}

func TestConfig_GetContextRetention(t *testing.T) {
	cfg := domain.Config{Assistant: domain.AssistantSettings{ContextWindow: 20, ContextRetention: 5}}
	if got := cfg.GetContextRetention(); got != 20 {
		t.Errorf("retention below window should be raised to window, got %d", got)
	}
}

func TestConfig_GetExecutionShell(t *testing.T) {
	tests := []struct {
		shell string
		want  string
	}{
		{shell: "auto", want: ""},
		{shell: "", want: ""},
		{shell: "/bin/zsh", want: "/bin/zsh"},
	}
	for _, tt := range tests {
		cfg := domain.Config{Execution: domain.ExecutionSettings{Shell: tt.shell}}
		if got := cfg.GetExecutionShell(); got != tt.want {
			t.Errorf("GetExecutionShell(%q) = %q, want %q", tt.shell, got, tt.want)
		}
	}
}

// TestConfig_ValidateConsistency tests configuration consistency validation
func TestConfig_ValidateConsistency(t *testing.T) {
	tests := []struct {
		name      string
		config    domain.Config
		wantError bool
	}{
		{
			name: "valid configuration",
			config: domain.Config{
				DefaultBackend: "local",
				Backends: []domain.BackendDefinition{
					{Name: "local", Endpoint: "http://localhost:11434/v1/chat/completions"},
					{Name: "gemini", Kind: domain.BackendGemini},
				},
			},
		},
		{
			name: "default backend does not exist",
			config: domain.Config{
				DefaultBackend: "gpt",
				Backends:       []domain.BackendDefinition{{Name: "local", Endpoint: "http://x"}},
			},
			wantError: true,
		},
		{
			name: "duplicate backend names",
			config: domain.Config{
				Backends: []domain.BackendDefinition{
					{Name: "local", Endpoint: "http://x"},
					{Name: "local", Endpoint: "http://y"},
				},
			},
			wantError: true,
		},
		{
			name: "openai backend without endpoint",
			config: domain.Config{
				Backends: []domain.BackendDefinition{{Name: "local"}},
			},
			wantError: true,
		},
		{
			name: "unknown kind",
			config: domain.Config{
				Backends: []domain.BackendDefinition{{Name: "x", Kind: "claude", Endpoint: "http://x"}},
			},
			wantError: true,
		},
		{
			name: "identical think markers",
			config: domain.Config{
				Assistant: domain.AssistantSettings{ThinkOpen: "##", ThinkClose: "##"},
			},
			wantError: true,
		},
		{
			name: "trusted score out of range",
			config: domain.Config{
				Search: domain.SearchSettings{
					TrustedDomains: []domain.CredibilityEntry{{Domain: "example.com", Score: 1.5}},
				},
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.ValidateConsistency()
			if tt.wantError && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
