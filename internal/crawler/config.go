package crawler

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Crawl defaults. Config files may override them; production runs use these values.
const (
	DefaultBaseURL      = "https://www.myinstants.com/pt"
	DefaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
	DefaultPerTermCap   = 108
	DefaultPageDelay    = 500 * time.Millisecond
	DefaultFetchTimeout = 15 * time.Second
	DefaultSelectorWait = 5 * time.Second
)

// DefaultTerms is the ordered list of search terms crawled on every run.
var DefaultTerms = []string{
	"brasil",
	"Trending Brasil",
	"br",
	"viral",
	"whatsapp audios",
}

// Config captures the knobs that shape a crawl run.
type Config struct {
	BaseURL    string
	Terms      []string
	PerTermCap int
	PageDelay  time.Duration
}

// DefaultConfig returns the production crawl configuration.
func DefaultConfig() Config {
	terms := make([]string, len(DefaultTerms))
	copy(terms, DefaultTerms)
	return Config{
		BaseURL:    DefaultBaseURL,
		Terms:      terms,
		PerTermCap: DefaultPerTermCap,
		PageDelay:  DefaultPageDelay,
	}
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("crawler base url must be set")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("parse crawler base url: %w", err)
	}
	if len(c.Terms) == 0 {
		return fmt.Errorf("at least one search term is required")
	}
	if c.PerTermCap <= 0 {
		return fmt.Errorf("per-term cap must be > 0")
	}
	if c.PageDelay < 0 {
		return fmt.Errorf("page delay must be >= 0")
	}
	return nil
}

// SearchURL builds the listing URL for term at the 1-based page number.
// Spaces in term are sent as %20, which is how the site's own search links encode them.
func SearchURL(base, term string, page int) string {
	name := strings.ReplaceAll(url.QueryEscape(term), "+", "%20")
	return strings.TrimRight(base, "/") + "/search/?name=" + name + "&page=" + strconv.Itoa(page)
}
