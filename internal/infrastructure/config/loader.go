package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/aicmd-go/assets"
	"github.com/doeshing/aicmd-go/internal/domain"
	"github.com/doeshing/aicmd-go/internal/pkg/filesystem"
	"github.com/doeshing/aicmd-go/internal/ports"
)

// EnvConfigPath overrides the config location.
const EnvConfigPath = "AICMD_CONFIG"

// FileLoader loads YAML configuration from ~/.aicmd/config.yaml (overridable
// via AICMD_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader. An empty path uses the environment or
// the default location.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. The embedded defaults are written out
// the first time the file is missing.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return domain.Config{}, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := writeDefaults(path); err != nil {
			return domain.Config{}, err
		}
		data = assets.DefaultConfigYAML
	} else if err != nil {
		return domain.Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return domain.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Path returns the file Load reads.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandHome(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return filesystem.ExpandHome(custom)
	}
	return filesystem.AppPath("config.yaml")
}

// Save writes cfg to Path. A system prompt equal to the built-in one is left
// out so later releases can update it.
func (l *FileLoader) Save(cfg domain.Config) error {
	if cfg.Assistant.SystemPrompt == assets.DefaultSystemPrompt {
		cfg.Assistant.SystemPrompt = ""
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	path := l.Path()
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

// Backup copies the current file to <path>.<timestamp>.bak and returns the
// copy's path.
func (l *FileLoader) Backup() (string, error) {
	path := l.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	backup := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102T150405"))
	if err := os.WriteFile(backup, data, domain.SecureFilePermissions); err != nil {
		return "", err
	}
	return backup, nil
}

// Defaults returns the embedded default configuration.
func Defaults() domain.Config {
	cfg, err := Parse(assets.DefaultConfigYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded default config is invalid: %v", err))
	}
	return cfg
}

// Parse decodes a config document and fills the fields that have no getter
// default.
func Parse(data []byte) (domain.Config, error) {
	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return hydrateDefaults(cfg), nil
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.DefaultBackend == "" && len(cfg.Backends) > 0 {
		cfg.DefaultBackend = cfg.Backends[0].Name
	}
	if strings.TrimSpace(cfg.Assistant.SystemPrompt) == "" {
		cfg.Assistant.SystemPrompt = assets.DefaultSystemPrompt
	}
	return cfg
}

// writeDefaults creates the config file and, when absent, the example
// denylist beside it.
func writeDefaults(path string) error {
	if err := os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}
	denylist := filepath.Join(filepath.Dir(path), "denylist.yaml")
	if _, err := os.Stat(denylist); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(denylist, assets.DefaultDenylistYAML, domain.SecureFilePermissions); err != nil {
			return fmt.Errorf("failed to write default denylist: %w", err)
		}
	}
	return nil
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
