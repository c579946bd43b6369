package assistant

import (
	"context"
	"strings"

	"github.com/doeshing/aicmd-go/internal/domain"
)

// references runs the web search when it is switched on by config or by the
// caller. The agent prefix is not part of the search terms.
func (s *Service) references(ctx context.Context, query string) []domain.SearchResult {
	if s.Search == nil || !(s.Config.Search.Enabled || s.WebSearch) {
		return nil
	}
	terms := strings.TrimPrefix(query, domain.AgentModePrefix)
	results := s.Search.Search(ctx, terms)
	s.debug("web references collected", map[string]interface{}{
		"query":   terms,
		"results": len(results),
	})
	return results
}

// systemInfo describes the host, falling back to the executor's view when no
// collector is wired.
func (s *Service) systemInfo(ctx context.Context) domain.SystemInfo {
	if s.SystemInfo != nil {
		return s.SystemInfo.Collect(ctx)
	}
	info := domain.SystemInfo{Env: map[string]string{}}
	if s.Executor != nil {
		info.OS.System = string(s.Executor.Platform())
		info.WorkDir = s.Executor.WorkDir()
	}
	return info
}
