package domain

import "strings"

// Platform names the command vocabulary a host understands.
type Platform string

const (
	PlatformUnix    Platform = "unix"
	PlatformWindows Platform = "windows"
)

// NormalizedCommand is a quote-balanced, operator-padded command line that
// passed the denylist. Text stays a shell-legal string; Fields only splits it
// for inspection.
type NormalizedCommand struct {
	Text string
}

// NewNormalizedCommand wraps already normalized text.
func NewNormalizedCommand(text string) NormalizedCommand {
	return NormalizedCommand{Text: text}
}

// String returns the command line.
func (c NormalizedCommand) String() string {
	return c.Text
}

// IsEmpty reports whether the command carries no tokens.
func (c NormalizedCommand) IsEmpty() bool {
	return strings.TrimSpace(c.Text) == ""
}

// Fields splits the command on whitespace outside quotes. Quote characters
// and escapes are kept in the returned tokens.
func (c NormalizedCommand) Fields() []string {
	return SplitFields(c.Text)
}

// Name returns the first token, or "" for an empty command.
func (c NormalizedCommand) Name() string {
	fields := c.Fields()
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Args returns every token after the name.
func (c NormalizedCommand) Args() []string {
	fields := c.Fields()
	if len(fields) < 2 {
		return nil
	}
	return fields[1:]
}

// SplitFields splits s on unquoted whitespace, keeping quotes and backslash
// escapes verbatim inside each token.
func SplitFields(s string) []string {
	var (
		fields  []string
		current strings.Builder
		quote   rune
		escaped bool
		inToken bool
	)

	flush := func() {
		if inToken {
			fields = append(fields, current.String())
			current.Reset()
			inToken = false
		}
	}

	for _, r := range s {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			current.WriteRune(r)
			escaped = true
			inToken = true
		case quote != 0:
			current.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			current.WriteRune(r)
			quote = r
			inToken = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			current.WriteRune(r)
			inToken = true
		}
	}
	flush()
	return fields
}

// Unquote removes one level of shell quoting and backslash escapes from a
// single token.
func Unquote(token string) string {
	var (
		out     strings.Builder
		quote   rune
		escaped bool
	)
	for _, r := range token {
		switch {
		case escaped:
			out.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '"' || r == '\''):
			quote = r
		default:
			out.WriteRune(r)
		}
	}
	if escaped {
		out.WriteRune('\\')
	}
	return out.String()
}

// IsOperatorToken reports whether a token is made only of control or
// redirection characters.
func IsOperatorToken(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !IsOperatorRune(r) {
			return false
		}
	}
	return true
}

// IsSeparatorToken reports whether token ends one command and starts the
// next: | || && ; or &.
func IsSeparatorToken(token string) bool {
	switch token {
	case "|", "||", "&&", ";", "&":
		return true
	}
	return false
}

// IsRedirectToken reports whether token is a redirection operator whose
// target is the following token, such as >, >>, <, 2> or &>.
func IsRedirectToken(token string) bool {
	switch strings.TrimLeft(token, "0123456789") {
	case ">", ">>", "<", "&>", "&>>":
		return true
	}
	return false
}

// IsOperatorRune reports whether r is one of | > < & ;
func IsOperatorRune(r rune) bool {
	switch r {
	case '|', '>', '<', '&', ';':
		return true
	}
	return false
}
