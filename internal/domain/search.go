package domain

// SearchResult is one ranked candidate produced by the search aggregator.
type SearchResult struct {
	URL              string  `json:"url"`
	Title            string  `json:"title"`
	Snippet          string  `json:"snippet"`
	CredibilityScore float64 `json:"credibility"`
	Body             string  `json:"body,omitempty"`
}

// CredibilityEntry maps a domain substring to a trust score in [0,1].
type CredibilityEntry struct {
	Domain string  `yaml:"domain"`
	Score  float64 `yaml:"score"`
}

// DefaultCredibilityTable lists the trusted domains consulted when ranking
// search results.
func DefaultCredibilityTable() []CredibilityEntry {
	return []CredibilityEntry{
		{Domain: "stackoverflow.com", Score: 0.9},
		{Domain: "github.com", Score: 0.9},
		{Domain: "docs.microsoft.com", Score: 0.8},
		{Domain: "learn.microsoft.com", Score: 0.8},
		{Domain: "linux.die.net", Score: 0.8},
		{Domain: "serverfault.com", Score: 0.8},
		{Domain: "superuser.com", Score: 0.8},
		{Domain: "askubuntu.com", Score: 0.8},
		{Domain: "digitalocean.com", Score: 0.7},
		{Domain: "redhat.com", Score: 0.8},
		{Domain: "ubuntu.com", Score: 0.8},
		{Domain: "debian.org", Score: 0.8},
		{Domain: "archlinux.org", Score: 0.8},
		{Domain: "kubernetes.io", Score: 0.8},
		{Domain: "docker.com", Score: 0.8},
		{Domain: "python.org", Score: 0.9},
		{Domain: "apache.org", Score: 0.8},
		{Domain: "nginx.com", Score: 0.8},
		{Domain: "elastic.co", Score: 0.8},
	}
}
