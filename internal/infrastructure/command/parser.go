// Package command normalizes raw shell input and maps it between platform
// vocabularies.
package command

import (
	"strings"

	"github.com/doeshing/aicmd-go/internal/domain"
	"github.com/doeshing/aicmd-go/internal/ports"
)

// Parser implements ports.CommandParser.
type Parser struct {
	denylist *Denylist
	logger   ports.Logger
}

// NewParser wires a parser to a denylist.
func NewParser(denylist *Denylist, logger ports.Logger) *Parser {
	return &Parser{denylist: denylist, logger: logger}
}

// Parse trims, screens and re-pads raw input. It has no side effects besides
// a debug log line on rejection.
func (p *Parser) Parse(raw string) (domain.NormalizedCommand, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return domain.NormalizedCommand{}, &domain.RejectedError{Reason: domain.RejectEmpty}
	}

	if rule, hit := p.denylist.Match(trimmed); hit {
		p.debug("input denylisted", map[string]interface{}{"pattern": rule.Pattern})
		return domain.NormalizedCommand{}, &domain.RejectedError{
			Reason:  domain.RejectDenylisted,
			Pattern: rule.Pattern,
		}
	}

	normalized, ok := padOperators(trimmed)
	if !ok {
		return domain.NormalizedCommand{}, &domain.RejectedError{Reason: domain.RejectUnterminatedQuote}
	}
	return domain.NewNormalizedCommand(normalized), nil
}

func (p *Parser) debug(msg string, fields map[string]interface{}) {
	if p.logger != nil {
		p.logger.Debug(msg, fields)
	}
}

// padOperators surrounds each unquoted run of | > < & ; with single spaces so
// "a&&b" becomes "a && b". Quotes and backslash escapes are copied through
// unchanged. A backslash is literal inside single quotes. ok is false when a
// quote is left open.
func padOperators(s string) (string, bool) {
	var (
		out     strings.Builder
		quote   rune
		escaped bool
		inRun   bool
	)
	out.Grow(len(s) + 8)

	lastIsSpace := func() bool {
		str := out.String()
		return str == "" || strings.HasSuffix(str, " ") || strings.HasSuffix(str, "\t")
	}

	for _, r := range s {
		operator := quote == 0 && !escaped && domain.IsOperatorRune(r)

		if inRun && !operator {
			inRun = false
			if r != ' ' && r != '\t' {
				out.WriteByte(' ')
			}
		}

		switch {
		case escaped:
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case operator && !inRun:
			inRun = true
			if !lastIsSpace() {
				out.WriteByte(' ')
			}
		}
		out.WriteRune(r)
	}

	if quote != 0 {
		return "", false
	}
	return out.String(), true
}

var _ ports.CommandParser = (*Parser)(nil)
