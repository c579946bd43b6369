package assets

import (
	_ "embed"
)

// DefaultConfigYAML contains the embedded default configuration.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte

// DefaultDenylistYAML contains the example denylist extension written next to
// the config on first run.
//
//go:embed defaults/denylist.yaml
var DefaultDenylistYAML []byte

// DefaultSystemPrompt is used when the config does not set
// assistant.system_prompt.
//
//go:embed defaults/system_prompt.md
var DefaultSystemPrompt string
