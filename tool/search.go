package tool

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/jsonschema-go/jsonschema"
)

// SearchResult is one web search hit.
type SearchResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Body  string `json:"body"`
}

// Searcher runs web searches.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// DuckDuckGo searches the DuckDuckGo HTML endpoint, which needs no API key.
type DuckDuckGo struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

type DuckDuckGoOption func(*DuckDuckGo)

// WithDuckDuckGoBaseURL sets the search endpoint.
func WithDuckDuckGoBaseURL(baseURL string) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.BaseURL = baseURL
	}
}

// WithDuckDuckGoHTTPClient sets the HTTP client.
func WithDuckDuckGoHTTPClient(c *http.Client) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.HTTPClient = c
	}
}

// NewDuckDuckGo creates a DuckDuckGo searcher.
func NewDuckDuckGo(opts ...DuckDuckGoOption) *DuckDuckGo {
	d := &DuckDuckGo{
		BaseURL:    "https://html.duckduckgo.com/html/",
		UserAgent:  "Mozilla/5.0 (compatible; langgraphlab/1.0)",
		HTTPClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	reqURL := d.BaseURL + "?" + url.Values{"q": {query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.UserAgent)

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo returned status: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	var results []SearchResult
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if maxResults > 0 && len(results) >= maxResults {
			return false
		}
		link := s.Find(".result__a").First()
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return true
		}
		href, _ := link.Attr("href")
		results = append(results, SearchResult{
			Title: title,
			URL:   resultURL(href),
			Body:  strings.TrimSpace(s.Find(".result__snippet").First().Text()),
		})
		return true
	})
	return results, nil
}

// resultURL unwraps DuckDuckGo's redirect links.
func resultURL(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}

// FormatResults renders results as a numbered list.
func FormatResults(results []SearchResult) string {
	if len(results) == 0 {
		return "No results found"
	}
	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. Title: %s\nURL: %s\nDescription: %s\n\n", i+1, r.Title, r.URL, r.Body)
	}
	return sb.String()
}

// NewSearchTool exposes a Searcher as a tool with arguments
// {"query": string, "max_results": integer}.
func NewSearchTool(name, description string, searcher Searcher, defaultMax int) Tool {
	one := 1.0
	twenty := 20.0
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"query":       {Type: "string", Description: "The search query"},
			"max_results": {Type: "integer", Description: "Maximum number of results", Minimum: &one, Maximum: &twenty},
		},
		Required: []string{"query"},
	}
	return NewFunc(name, description, schema, func(ctx context.Context, args map[string]any) (string, error) {
		query, _ := args["query"].(string)
		n := defaultMax
		if v, ok := args["max_results"].(float64); ok {
			n = int(v)
		}
		results, err := searcher.Search(ctx, query, n)
		if err != nil {
			return "", err
		}
		return FormatResults(results), nil
	})
}
