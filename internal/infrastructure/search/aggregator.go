// Package search looks up web pages that can back an AI answer. A single
// query against a DuckDuckGo style HTML endpoint yields candidates, which are
// ranked by a table of trusted domains and enriched with page text fetched by
// a small worker pool.
package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/doeshing/aicmd-go/internal/domain"
	"github.com/doeshing/aicmd-go/internal/ports"
)

const (
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	maxPageBytes = 1 << 20
)

// Options configures an Aggregator. Zero values fall back to the defaults in
// the domain package.
type Options struct {
	Endpoint   string
	MaxResults int
	Workers    int
	Timeout    time.Duration
	BodyChars  int
	Table      []domain.CredibilityEntry
	HTTPClient *http.Client
	Logger     ports.Logger
}

// OptionsFromConfig maps the search section of the config onto Options.
func OptionsFromConfig(cfg domain.Config) Options {
	return Options{
		Endpoint:   cfg.GetSearchEndpoint(),
		MaxResults: cfg.GetSearchMaxResults(),
		Workers:    cfg.GetSearchWorkers(),
		Timeout:    cfg.GetSearchTimeout(),
		BodyChars:  cfg.GetSearchBodyChars(),
		Table:      cfg.GetCredibilityTable(),
	}
}

// Aggregator implements ports.SearchAggregator.
type Aggregator struct {
	endpoint   string
	maxResults int
	workers    int
	timeout    time.Duration
	bodyChars  int
	table      CredibilityTable
	client     *http.Client
	logger     ports.Logger
}

// NewAggregator builds an aggregator from opts.
func NewAggregator(opts Options) *Aggregator {
	a := &Aggregator{
		endpoint:   opts.Endpoint,
		maxResults: opts.MaxResults,
		workers:    opts.Workers,
		timeout:    opts.Timeout,
		bodyChars:  opts.BodyChars,
		table:      NewCredibilityTable(opts.Table),
		client:     opts.HTTPClient,
		logger:     opts.Logger,
	}
	if a.endpoint == "" {
		a.endpoint = domain.DefaultSearchEndpoint
	}
	if a.maxResults <= 0 {
		a.maxResults = domain.DefaultSearchMaxResults
	}
	if a.workers <= 0 {
		a.workers = domain.DefaultSearchWorkers
	}
	if a.timeout <= 0 {
		a.timeout = domain.DefaultSearchTimeout
	}
	if a.bodyChars <= 0 {
		a.bodyChars = domain.DefaultSearchBodyChars
	}
	if opts.Table == nil {
		a.table = NewCredibilityTable(domain.DefaultCredibilityTable())
	}
	if a.client == nil {
		a.client = &http.Client{}
	}
	return a
}

// Search returns candidates with fetched bodies, most credible first. Any
// failure of the results page yields an empty slice; a failed page fetch drops
// only that candidate.
func (a *Aggregator) Search(ctx context.Context, query string) []domain.SearchResult {
	page, err := a.fetchResultsPage(ctx, query)
	if err != nil {
		a.warn("search request failed", err, map[string]interface{}{"query": query})
		return []domain.SearchResult{}
	}

	candidates := parseResults(page)
	if len(candidates) > a.maxResults {
		candidates = candidates[:a.maxResults]
	}

	scored := make([]domain.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		score := a.table.Score(c.URL)
		if score <= 0 {
			continue
		}
		scored = append(scored, domain.SearchResult{
			URL:              c.URL,
			Title:            c.Title,
			Snippet:          c.Snippet,
			CredibilityScore: score,
		})
	}

	results := a.fetchBodies(ctx, scored)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CredibilityScore > results[j].CredibilityScore
	})

	a.debug("search finished", map[string]interface{}{
		"query":      query,
		"candidates": len(candidates),
		"results":    len(results),
	})
	return results
}

func (a *Aggregator) fetchResultsPage(ctx context.Context, query string) (string, error) {
	u, err := url.Parse(a.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid search endpoint %q: %w", a.endpoint, err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.get(ctx, u.String())
}

// fetchBodies fills in page text with at most a.workers requests in flight.
// Each worker writes only its own slot.
func (a *Aggregator) fetchBodies(ctx context.Context, candidates []domain.SearchResult) []domain.SearchResult {
	slots := make([]*domain.SearchResult, len(candidates))

	var g errgroup.Group
	g.SetLimit(a.workers)
	for i := range candidates {
		i := i
		g.Go(func() error {
			taskCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			page, err := a.get(taskCtx, candidates[i].URL)
			if err != nil {
				a.warn("page fetch failed", err, map[string]interface{}{"url": candidates[i].URL})
				return nil
			}
			result := candidates[i]
			result.Body = extractBody(page, a.bodyChars)
			slots[i] = &result
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.SearchResult, 0, len(slots))
	for _, slot := range slots {
		if slot != nil {
			out = append(out, *slot)
		}
	}
	return out
}

func (a *Aggregator) get(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, target)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(body), nil
}

func (a *Aggregator) warn(msg string, err error, fields map[string]interface{}) {
	if a.logger == nil {
		return
	}
	fields["error"] = err.Error()
	a.logger.Warn(msg, fields)
}

func (a *Aggregator) debug(msg string, fields map[string]interface{}) {
	if a.logger != nil {
		a.logger.Debug(msg, fields)
	}
}

var _ ports.SearchAggregator = (*Aggregator)(nil)
