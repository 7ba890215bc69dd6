package tool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const duckPage = `<html><body>
<div class="result results_links">
  <h2 class="result__title"><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgithub.com%2Flangchain-ai%2Flanggraph&rut=abc">LangGraph - GitHub</a></h2>
  <a class="result__snippet">Build resilient language agents as graphs.</a>
</div>
<div class="result results_links">
  <h2 class="result__title"><a class="result__a" href="https://langchain-ai.github.io/langgraph/">LangGraph docs</a></h2>
  <a class="result__snippet">  Low-level orchestration framework.  </a>
</div>
<div class="result results_links">
  <h2 class="result__title"><a class="result__a" href="https://example.com/third">Third</a></h2>
  <a class="result__snippet">third</a>
</div>
</body></html>`

func TestDuckDuckGoSearch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "What is LangGraph?", r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(duckPage))
	}))
	defer server.Close()

	ddg := NewDuckDuckGo(WithDuckDuckGoBaseURL(server.URL+"/html/"), WithDuckDuckGoHTTPClient(server.Client()))
	results, err := ddg.Search(context.Background(), "What is LangGraph?", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, SearchResult{
		Title: "LangGraph - GitHub",
		URL:   "https://github.com/langchain-ai/langgraph",
		Body:  "Build resilient language agents as graphs.",
	}, results[0])
	assert.Equal(t, "https://langchain-ai.github.io/langgraph/", results[1].URL)
	assert.Equal(t, "Low-level orchestration framework.", results[1].Body)
}

func TestDuckDuckGoErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewDuckDuckGo(WithDuckDuckGoBaseURL(server.URL)).Search(context.Background(), "q", 2)
	assert.ErrorContains(t, err, "status: 429")

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>No results.</body></html>"))
	}))
	defer empty.Close()

	results, err := NewDuckDuckGo(WithDuckDuckGoBaseURL(empty.URL)).Search(context.Background(), "q", 2)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBraveSearch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Subscription-Token"))
		assert.Equal(t, "golang", r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("count"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"web":{"results":[
			{"title":"Go","url":"https://go.dev","description":"The Go language"},
			{"title":"Tour","url":"https://go.dev/tour","description":"A tour of Go"},
			{"title":"Extra","url":"https://example.com","description":"ignored"}
		]}}`))
	}))
	defer server.Close()

	b, err := NewBraveSearch("secret", WithBraveBaseURL(server.URL), WithBraveHTTPClient(server.Client()))
	require.NoError(t, err)

	results, err := b.Search(context.Background(), "golang", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, SearchResult{Title: "Go", URL: "https://go.dev", Body: "The Go language"}, results[0])
}

func TestBraveSearchErrors(t *testing.T) {
	t.Setenv("BRAVE_API_KEY", "")
	_, err := NewBraveSearch("")
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	b, err := NewBraveSearch("bad", WithBraveBaseURL(server.URL), WithBraveCount(50))
	require.NoError(t, err)
	assert.Equal(t, 20, b.Count)

	_, err = b.Search(context.Background(), "q", 0)
	assert.ErrorContains(t, err, "status: 401")
}

type fixedSearcher struct {
	results []SearchResult
	gotMax  int
}

func (f *fixedSearcher) Search(_ context.Context, _ string, maxResults int) ([]SearchResult, error) {
	f.gotMax = maxResults
	return f.results, nil
}

func TestSearchTool(t *testing.T) {
	t.Parallel()

	s := &fixedSearcher{results: []SearchResult{{Title: "Go", URL: "https://go.dev", Body: "The Go language"}}}
	reg, err := NewRegistry(NewSearchTool("web_search", "Search the web.", s, 2))
	require.NoError(t, err)

	out, err := reg.Call(context.Background(), "web_search", `{"query":"golang"}`)
	require.NoError(t, err)
	assert.Equal(t, "1. Title: Go\nURL: https://go.dev\nDescription: The Go language\n\n", out)
	assert.Equal(t, 2, s.gotMax)

	_, err = reg.Call(context.Background(), "web_search", `{"query":"golang","max_results":5}`)
	require.NoError(t, err)
	assert.Equal(t, 5, s.gotMax)

	_, err = reg.Call(context.Background(), "web_search", `{"query":"golang","max_results":99}`)
	assert.ErrorIs(t, err, ErrInvalidArguments)

	assert.Equal(t, "No results found", FormatResults(nil))
}
