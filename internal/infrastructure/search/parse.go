package search

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const redirectPrefix = "//duckduckgo.com/l/?uddg="

var (
	anchorPattern = regexp.MustCompile(`(?is)<a\s([^>]*)>(.*?)</a>`)
	classPattern  = regexp.MustCompile(`(?i)\bclass\s*=\s*"([^"]*)"`)
	hrefPattern   = regexp.MustCompile(`(?i)\bhref\s*=\s*"([^"]*)"`)
	tagPattern    = regexp.MustCompile(`(?s)<[^>]*>`)
)

// candidate is a search hit before scoring.
type candidate struct {
	URL     string
	Title   string
	Snippet string
}

// parseResults pulls result links and their snippets out of a DuckDuckGo HTML
// results page, in page order. A snippet attaches to the link before it.
func parseResults(page string) []candidate {
	var (
		out  []candidate
		seen = map[string]bool{}
	)
	for _, m := range anchorPattern.FindAllStringSubmatch(page, -1) {
		attrs, inner := m[1], m[2]
		class := firstGroup(classPattern, attrs)

		switch {
		case hasClass(class, "result__snippet"):
			if len(out) > 0 && out[len(out)-1].Snippet == "" {
				out[len(out)-1].Snippet = cleanText(inner)
			}
		case hasClass(class, "result__a"), hasClass(class, "result__url"):
			link := unwrapRedirect(html.UnescapeString(firstGroup(hrefPattern, attrs)))
			if link == "" || seen[link] {
				continue
			}
			seen[link] = true
			out = append(out, candidate{URL: link, Title: cleanText(inner)})
		}
	}
	return out
}

func firstGroup(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

func hasClass(classAttr, name string) bool {
	for _, c := range strings.Fields(classAttr) {
		if c == name {
			return true
		}
	}
	return false
}

// unwrapRedirect turns a DuckDuckGo click-tracking href into its target.
func unwrapRedirect(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "https:"+redirectPrefix) {
		href = strings.TrimPrefix(href, "https:")
	}
	if !strings.HasPrefix(href, redirectPrefix) {
		return href
	}
	u, err := url.Parse("https:" + href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

// cleanText drops inline markup, decodes entities and collapses whitespace.
func cleanText(fragment string) string {
	text := html.UnescapeString(tagPattern.ReplaceAllString(fragment, ""))
	return strings.Join(strings.Fields(text), " ")
}

// extractBody returns the visible text of an HTML document with whitespace
// collapsed, cut to at most limit runes.
func extractBody(doc string, limit int) string {
	var (
		words []string
		skip  int
	)
	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return truncateRunes(strings.Join(words, " "), limit)
		case html.StartTagToken, html.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Script, atom.Style, atom.Noscript, atom.Template:
				if tt == html.StartTagToken {
					skip++
				} else if skip > 0 {
					skip--
				}
			}
		case html.TextToken:
			if skip == 0 {
				words = append(words, strings.Fields(string(z.Text()))...)
			}
		}
	}
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
