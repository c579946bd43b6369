// Package assistant implements the request/response cycle behind every line
// the user submits: classify it, run it as a command or ask the AI about it,
// and remember what happened for the next turn.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/doeshing/aicmd-go/internal/domain"
	"github.com/doeshing/aicmd-go/internal/infrastructure/ai"
	"github.com/doeshing/aicmd-go/internal/ports"
)

// Service orchestrates one turn end-to-end.
type Service struct {
	Config     domain.Config
	Parser     ports.CommandParser
	Translator ports.CommandTranslator
	Executor   ports.CommandExecutor
	Clients    ports.ChatClientFactory
	Context    ports.ContextStore
	SystemInfo ports.SystemInfoCollector
	Search     ports.SearchAggregator
	History    ports.HistoryStore
	Logger     ports.Logger

	SessionID string
	// BackendOverride selects a backend by name instead of default_backend.
	BackendOverride string
	// AgentMode and WebSearch add to the config switches; they never turn a
	// configured behaviour off.
	AgentMode bool
	WebSearch bool
}

// Classify decides how a line is routed and returns the text to act on.
// A leading "/" or a CJK ideograph as the first rune marks an AI query.
func Classify(line string) (domain.TurnKind, string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return domain.TurnEmpty, ""
	}
	if strings.HasPrefix(trimmed, "/") {
		return domain.TurnQuery, strings.TrimSpace(trimmed[1:])
	}
	if r, _ := utf8.DecodeRuneInString(trimmed); r >= 0x4E00 && r <= 0x9FFF {
		return domain.TurnQuery, trimmed
	}
	return domain.TurnCommand, trimmed
}

// HandleLine runs one line through the pipeline it classifies into and
// records it in the input history. Visible answer text is written to out as
// it streams.
func (s *Service) HandleLine(ctx context.Context, line string, out ports.StreamWriter) domain.TurnResult {
	kind, payload := Classify(line)

	var result domain.TurnResult
	switch kind {
	case domain.TurnEmpty:
		return domain.TurnResult{Kind: domain.TurnEmpty}
	case domain.TurnQuery:
		if payload == "" {
			return domain.TurnResult{Kind: domain.TurnEmpty, Input: line}
		}
		result = s.Ask(ctx, payload, out)
	default:
		result = s.RunCommand(ctx, payload)
	}

	s.remember(context.WithoutCancel(ctx), strings.TrimSpace(line), result)
	return result
}

// RunCommand validates, translates and executes a command line, then adds the
// outcome to the context.
func (s *Service) RunCommand(ctx context.Context, raw string) domain.TurnResult {
	if err := s.requireCommandPipeline(); err != nil {
		return domain.TurnResult{Kind: domain.TurnCommand, Input: raw, Err: err}
	}

	cmd, err := s.Parser.Parse(raw)
	if err != nil {
		kind := domain.TurnRejected
		var rejected *domain.RejectedError
		if errors.As(err, &rejected) && rejected.Reason == domain.RejectEmpty {
			kind = domain.TurnEmpty
		}
		s.debug("command rejected", map[string]interface{}{"input": raw, "reason": err.Error()})
		return domain.TurnResult{Kind: kind, Input: raw, Err: err}
	}

	target := s.Translator.Translate(cmd, s.Executor.Platform())
	if target.Text != cmd.Text {
		s.debug("command translated", map[string]interface{}{"from": cmd.Text, "to": target.Text})
	}

	exec := s.Executor.Execute(ctx, target)
	s.Context.Record(domain.CommandEntry(cmd.Text, exec.Stdout, exec.Stderr))

	return domain.TurnResult{Kind: domain.TurnCommand, Input: raw, Execution: &exec}
}

// Ask sends a question with the recent transcript and host description to the
// selected backend and interprets the streamed reply.
func (s *Service) Ask(ctx context.Context, query string, out ports.StreamWriter) domain.TurnResult {
	result := domain.TurnResult{Kind: domain.TurnQuery, Input: query}
	if s.Clients == nil || s.Context == nil {
		result.Err = errors.New("assistant: AI pipeline dependencies not satisfied")
		return result
	}

	backend, err := s.Config.PickBackend(s.BackendOverride)
	if err != nil {
		result.Err = err
		return result
	}
	result.Backend = backend.Name

	client, err := s.Clients.ForBackend(backend)
	if err != nil {
		result.Err = fmt.Errorf("backend %s: %w", backend.Name, err)
		return result
	}

	if s.Config.Assistant.AgentMode || s.AgentMode {
		query = domain.AgentModePrefix + query
	}

	result.Sources = s.references(ctx, query)
	messages, err := ai.BuildMessages(ai.PromptInput{
		SystemPrompt: s.Config.Assistant.SystemPrompt,
		SystemInfo:   s.systemInfo(ctx),
		Transcript:   s.Context.Transcript(s.Config.GetContextWindow()),
		Query:        query,
		References:   result.Sources,
	})
	if err != nil {
		result.Err = err
		return result
	}

	s.info("calling backend", map[string]interface{}{
		"backend":  backend.Name,
		"model":    backend.ModelID,
		"messages": len(messages),
	})

	answer, err := s.stream(ctx, client, messages, out)
	if err != nil {
		s.warn("AI turn failed", err, map[string]interface{}{"backend": backend.Name})
		result.Err = err
		return result
	}

	s.Context.Record(domain.QueryEntry(query, answer.Text))
	if answer.Command != "" {
		s.suggest(ctx, answer.Command, backend.Name)
	}
	result.Answer = &answer
	return result
}

// stream feeds every delta through a fresh interpreter. out sees only visible
// text; Done is called whether or not the stream succeeds.
func (s *Service) stream(ctx context.Context, client ports.ChatClient, messages []domain.ChatMessage, out ports.StreamWriter) (domain.Answer, error) {
	openMarker, closeMarker := s.Config.GetThinkMarkers()
	interpreter := ai.NewInterpreter(openMarker, closeMarker)

	write := func(text string) {
		if text != "" && out != nil {
			out.WriteChunk(text)
		}
	}
	if out != nil {
		defer out.Done()
	}

	err := client.Stream(ctx, messages, func(delta string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		write(interpreter.Feed(delta))
		return nil
	})
	if err != nil {
		return domain.Answer{}, err
	}

	tail, err := interpreter.Finish()
	write(tail)
	if err != nil {
		return domain.Answer{}, err
	}

	answer := domain.Answer{
		Text:      strings.TrimSpace(interpreter.Visible()),
		Reasoning: strings.TrimSpace(interpreter.Suppressed()),
	}
	if command, ok := ai.ExtractCommand(answer.Text); ok {
		answer.Command = command
		answer.RequiresPrivilege = ai.RequiresPrivilege(command)
	}
	return answer, nil
}

// suggest stores an extracted command in the input history so the front end
// can recall it.
func (s *Service) suggest(ctx context.Context, command, backend string) {
	if s.History == nil {
		return
	}
	err := s.History.Append(ctx, domain.HistoryRecord{
		Timestamp: time.Now(),
		SessionID: s.SessionID,
		Kind:      domain.TurnSuggested,
		Input:     command,
		Backend:   backend,
	})
	if err != nil {
		s.warn("history append failed", err, map[string]interface{}{"input": command})
	}
}

// remember appends the submitted line to the input history. Callers pass a
// context that outlives an interrupted turn.
func (s *Service) remember(ctx context.Context, line string, result domain.TurnResult) {
	if s.History == nil || line == "" {
		return
	}
	record := domain.HistoryRecord{
		Timestamp: time.Now(),
		SessionID: s.SessionID,
		Kind:      result.Kind,
		Input:     line,
		Backend:   result.Backend,
		Success:   result.Succeeded(),
	}
	if result.Execution != nil {
		record.ExitCode = result.Execution.ExitCode
		record.DurationMS = result.Execution.DurationMS
	}
	if err := s.History.Append(ctx, record); err != nil {
		s.warn("history append failed", err, map[string]interface{}{"input": line})
	}
}

func (s *Service) requireCommandPipeline() error {
	if s.Parser == nil || s.Translator == nil || s.Executor == nil || s.Context == nil {
		return errors.New("assistant: command pipeline dependencies not satisfied")
	}
	return nil
}

func (s *Service) debug(msg string, fields map[string]interface{}) {
	if s.Logger != nil {
		s.Logger.Debug(msg, fields)
	}
}

func (s *Service) info(msg string, fields map[string]interface{}) {
	if s.Logger != nil {
		s.Logger.Info(msg, fields)
	}
}

func (s *Service) warn(msg string, err error, fields map[string]interface{}) {
	if s.Logger == nil {
		return
	}
	fields["error"] = err.Error()
	s.Logger.Warn(msg, fields)
}
