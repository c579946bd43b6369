package command

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/aicmd-go/internal/pkg/filesystem"
)

// DenyRule is one forbidden substring.
type DenyRule struct {
	Pattern string `yaml:"pattern"`
	Message string `yaml:"message"`
}

// DenylistFile is the YAML schema root of an extension file.
type DenylistFile struct {
	Denylist struct {
		Patterns []DenyRule `yaml:"patterns"`
	} `yaml:"denylist"`
}

// Denylist rejects catastrophic commands by case-insensitive substring
// containment. Any command containing a pattern is rejected, including
// benign ones that merely mention it.
type Denylist struct {
	rules []DenyRule
}

// NewDenylist returns the built-in rules plus any loaded from path. A missing
// file is not an error; rules from disk can only add to the defaults.
func NewDenylist(path string) (*Denylist, error) {
	rules := defaultRules()
	if path == "" {
		return &Denylist{rules: rules}, nil
	}

	extra, err := loadRules(filesystem.ExpandHome(path))
	if err != nil {
		return nil, err
	}
	for _, rule := range extra {
		if strings.TrimSpace(rule.Pattern) == "" {
			continue
		}
		rules = append(rules, DenyRule{
			Pattern: strings.ToLower(rule.Pattern),
			Message: rule.Message,
		})
	}
	return &Denylist{rules: rules}, nil
}

// Match returns the first rule contained in command.
func (d *Denylist) Match(command string) (DenyRule, bool) {
	if d == nil {
		return DenyRule{}, false
	}
	lowered := strings.ToLower(command)
	for _, rule := range d.rules {
		if strings.Contains(lowered, rule.Pattern) {
			return rule, true
		}
	}
	return DenyRule{}, false
}

// Rules returns a copy of the active rules.
func (d *Denylist) Rules() []DenyRule {
	out := make([]DenyRule, len(d.rules))
	copy(out, d.rules)
	return out
}

func loadRules(path string) ([]DenyRule, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read denylist: %w", err)
	}
	var file DenylistFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse denylist %s: %w", path, err)
	}
	return file.Denylist.Patterns, nil
}

func defaultRules() []DenyRule {
	return []DenyRule{
		{Pattern: "rm -rf /", Message: "Deleting root directory"},
		{Pattern: "rm -rf *", Message: "Recursive delete everything"},
		{Pattern: "format", Message: "Formatting a drive"},
		{Pattern: "mkfs", Message: "Formatting filesystem"},
		{Pattern: ":(){:|:&};:", Message: "Fork bomb"},
		{Pattern: ":(){ :|:& };:", Message: "Fork bomb"},
		{Pattern: "> /dev/sda", Message: "Writing to block device"},
		{Pattern: "dd if=/dev/zero", Message: "Raw disk wipe"},
	}
}
