package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/doeshing/aicmd-go/internal/domain"
)

// PromptInput is everything that goes into one AI request.
type PromptInput struct {
	SystemPrompt string
	SystemInfo   domain.SystemInfo
	Transcript   string
	Query        string
	References   []domain.SearchResult
}

const userTemplate = `Recent history:
{{.Transcript}}
Current question: {{.Query}}
{{- if .References}}

Web references, most credible first:
{{- range $i, $r := .References}}
[{{inc $i}}] {{$r.Title}} ({{$r.URL}}, credibility {{printf "%.2f" $r.CredibilityScore}})
{{- if $r.Snippet}}
{{$r.Snippet}}
{{- end}}
{{- if $r.Body}}
{{$r.Body}}
{{- end}}
{{- end}}
{{- end}}`

var userMessageTemplate = template.Must(template.New("user").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(userTemplate))

// BuildMessages renders the role-tagged message list: the system prompt, the
// host description as indented JSON, then the framed user question.
func BuildMessages(in PromptInput) ([]domain.ChatMessage, error) {
	info, err := json.MarshalIndent(in.SystemInfo, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode system info: %w", err)
	}

	var buf bytes.Buffer
	if err := userMessageTemplate.Execute(&buf, in); err != nil {
		return nil, fmt.Errorf("render user message: %w", err)
	}

	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: strings.TrimSpace(in.SystemPrompt)},
		{Role: domain.RoleSystem, Content: "System information:\n" + string(info)},
		{Role: domain.RoleUser, Content: buf.String()},
	}, nil
}
