// Package scrape extracts article body text from news pages via a
// descending-specificity selector cascade, and validates the result against
// simple quality heuristics.
package scrape

import (
	"context"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxBodyBytes     = 512 * 1024
	maxContentLen    = 2000

	// A cascade hit below this length is treated as trivial and the
	// cascade keeps going.
	minSelectorContent = 200
)

// removeSelectors are stripped from the document before extraction.
const removeSelectors = "script, style, nav, header, footer, aside, .advertisement, .ads, .social-share"

// contentSelectors is the extraction cascade, most specific first.
var contentSelectors = []string{
	`[data-module="ArticleBody"]`,
	".article-body",
	".article-content",
	".post-content",
	".entry-content",
	".story-body",
	"article",
	"main",
	".content",
	".post-body",
}

// Scraper fetches article pages with a realistic client identity and
// reduces them to prompt-sized plaintext.
type Scraper struct {
	client    *http.Client
	userAgent string
	maxLen    int
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) { s.client = c }
}

// WithMaxContentLength overrides the output truncation length.
func WithMaxContentLength(n int) Option {
	return func(s *Scraper) { s.maxLen = n }
}

// NewScraper creates a Scraper with a 15s timeout and redirect-follow
// enabled (the default http.Client behavior).
func NewScraper(opts ...Option) *Scraper {
	s := &Scraper{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		userAgent: defaultUserAgent,
		maxLen:    maxContentLen,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scrape fetches a URL and extracts its body text. A 4xx status is
// non-fatal and yields ("", nil); 5xx and transport failures return an
// error with empty text. Extraction walks the selector cascade, then falls
// back to paragraph concatenation, then whole-page text.
func (s *Scraper) Scrape(ctx context.Context, targetURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "scrape: create request")
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "scrape: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		zap.L().Debug("scrape: client error status, skipping page",
			zap.String("url", targetURL),
			zap.Int("status", resp.StatusCode),
		)
		return "", nil
	}
	if resp.StatusCode >= 500 {
		return "", eris.Errorf("scrape: status %d from %s", resp.StatusCode, targetURL)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", eris.Wrap(err, "scrape: parse html")
	}

	text := extract(doc)
	return clean(text, s.maxLen), nil
}

// extract runs the selector cascade over a parsed document.
func extract(doc *goquery.Document) string {
	doc.Find(removeSelectors).Remove()

	for _, sel := range contentSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if text := strings.TrimSpace(node.Text()); len(text) > minSelectorContent {
			return text
		}
	}

	// Fallback: join paragraph text.
	var parts []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if t := strings.TrimSpace(p.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	if joined := strings.Join(parts, " "); strings.TrimSpace(joined) != "" {
		return joined
	}

	// Last resort: whole-page text.
	return doc.Text()
}

var (
	citationRe    = regexp.MustCompile(`\[\d+\]`)
	parentheticRe = regexp.MustCompile(`\([^()]*\)`)
	whitespaceRe  = regexp.MustCompile(`\s+`)

	boilerplate = strings.NewReplacer(
		"Advertisement", "",
		"Subscribe", "",
		"Sign up", "",
	)
)

// clean collapses whitespace, strips citation markers, parenthetical
// asides, and boilerplate phrases, and truncates to maxLen runes.
func clean(text string, maxLen int) string {
	text = citationRe.ReplaceAllString(text, "")
	text = parentheticRe.ReplaceAllString(text, "")
	text = boilerplate.Replace(text)
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	if runes := []rune(text); len(runes) > maxLen {
		text = strings.TrimSpace(string(runes[:maxLen]))
	}
	return text
}
