package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
)

// BraveSearch is a Searcher backed by the Brave Search API.
type BraveSearch struct {
	APIKey     string
	BaseURL    string
	Count      int
	Country    string
	Lang       string
	HTTPClient *http.Client
}

var (
	_ Searcher = (*BraveSearch)(nil)
	_ Searcher = (*DuckDuckGo)(nil)
)

// ErrMissingAPIKey is returned when no Brave API key is configured.
var ErrMissingAPIKey = errors.New("BRAVE_API_KEY not set")

type BraveOption func(*BraveSearch)

// WithBraveBaseURL sets the base URL for the Brave Search API.
func WithBraveBaseURL(baseURL string) BraveOption {
	return func(b *BraveSearch) {
		b.BaseURL = baseURL
	}
}

// WithBraveCount sets the number of results to return (1-20).
func WithBraveCount(count int) BraveOption {
	return func(b *BraveSearch) {
		if count < 1 {
			count = 1
		}
		if count > 20 {
			count = 20
		}
		b.Count = count
	}
}

// WithBraveCountry sets the country code for search results (e.g., "US", "CN").
func WithBraveCountry(country string) BraveOption {
	return func(b *BraveSearch) {
		b.Country = country
	}
}

// WithBraveHTTPClient sets the HTTP client.
func WithBraveHTTPClient(c *http.Client) BraveOption {
	return func(b *BraveSearch) {
		b.HTTPClient = c
	}
}

// WithBraveLang sets the language code for search results (e.g., "en", "zh").
func WithBraveLang(lang string) BraveOption {
	return func(b *BraveSearch) {
		b.Lang = lang
	}
}

// NewBraveSearch creates a new BraveSearch searcher.
// If apiKey is empty, it tries to read from BRAVE_API_KEY environment variable.
func NewBraveSearch(apiKey string, opts ...BraveOption) (*BraveSearch, error) {
	if apiKey == "" {
		apiKey = os.Getenv("BRAVE_API_KEY")
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	b := &BraveSearch{
		APIKey:     apiKey,
		BaseURL:    "https://api.search.brave.com/res/v1/web/search",
		Count:      10,
		Country:    "US",
		Lang:       "en",
		HTTPClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

// Search queries the Brave web search API.
func (b *BraveSearch) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	count := b.Count
	if maxResults > 0 && maxResults < count {
		count = maxResults
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))
	if b.Country != "" {
		params.Set("country", b.Country)
	}
	if b.Lang != "" {
		params.Set("search_lang", b.Lang)
	}

	reqURL := fmt.Sprintf("%s?%s", b.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.APIKey)

	resp, err := b.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave api returned status: %d", resp.StatusCode)
	}

	var body braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]SearchResult, 0, len(body.Web.Results))
	for _, r := range body.Web.Results {
		if len(results) == count {
			break
		}
		results = append(results, SearchResult{Title: r.Title, URL: r.URL, Body: r.Description})
	}
	return results, nil
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}
