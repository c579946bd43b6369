package search

import (
	"net/url"
	"strings"

	"github.com/doeshing/aicmd-go/internal/domain"
)

// CredibilityTable scores URLs by the trusted domain they belong to.
type CredibilityTable struct {
	entries []domain.CredibilityEntry
}

// NewCredibilityTable keeps entries in order; on equal match length the
// earlier entry wins.
func NewCredibilityTable(entries []domain.CredibilityEntry) CredibilityTable {
	return CredibilityTable{entries: entries}
}

// Score returns the score of the longest table domain contained in the URL's
// host. Hosts matching nothing score domain.NeutralCredibility; URLs without
// an http(s) scheme or a host score 0.
func (t CredibilityTable) Score(rawURL string) float64 {
	host := hostOf(rawURL)
	if host == "" {
		return 0
	}

	best, bestLen := domain.NeutralCredibility, 0
	for _, entry := range t.entries {
		d := strings.ToLower(entry.Domain)
		if d == "" || len(d) <= bestLen {
			continue
		}
		if strings.Contains(host, d) {
			best, bestLen = entry.Score, len(d)
		}
	}
	return best
}

func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
