package cli

import (
	"fmt"
	"os/exec"
	"strings"
)

// Clipboard copies suggested commands using whatever tool the host has.
type Clipboard struct {
	goos     string
	lookPath func(string) (string, error)
	run      func(name string, args []string, input string) error
}

// NewClipboard builds the clipboard helper for goos.
func NewClipboard(goos string) *Clipboard {
	return &Clipboard{goos: goos, lookPath: exec.LookPath, run: runWithInput}
}

// Copy copies text to the system clipboard.
func (c *Clipboard) Copy(text string) error {
	name, args, err := c.tool()
	if err != nil {
		return err
	}
	return c.run(name, args, text)
}

func (c *Clipboard) tool() (string, []string, error) {
	switch c.goos {
	case "darwin":
		return "pbcopy", nil, nil
	case "windows":
		return "clip", nil, nil
	}
	candidates := []struct {
		name string
		args []string
	}{
		{"wl-copy", nil},
		{"xclip", []string{"-selection", "clipboard"}},
		{"xsel", []string{"--clipboard", "--input"}},
	}
	for _, candidate := range candidates {
		if _, err := c.lookPath(candidate.name); err == nil {
			return candidate.name, candidate.args, nil
		}
	}
	return "", nil, fmt.Errorf("no clipboard utility found (install wl-copy, xclip or xsel)")
}

func runWithInput(name string, args []string, input string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(input)
	return cmd.Run()
}
