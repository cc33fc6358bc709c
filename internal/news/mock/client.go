package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/kitbuilder587/newsquery/internal/news"
)

// Client returns canned responses. A nil response field reproduces the
// failure sentinel of the real client.
type Client struct {
	SearchResponse    *news.Response
	HeadlinesResponse *news.Response
	SourcesResponse   *news.Response

	SearchCalls    []SearchCall
	HeadlinesCalls []news.HeadlinesParams
	SourcesCalls   []news.SourcesParams

	mu sync.Mutex
}

type SearchCall struct {
	Query   string
	Options news.SearchOptions
}

func New() *Client {
	return &Client{
		SearchResponse:    &news.Response{Status: "ok"},
		HeadlinesResponse: &news.Response{Status: "ok"},
		SourcesResponse:   &news.Response{Status: "ok"},
	}
}

// WithHeadlines makes TopHeadlines and Search return articles with the given titles.
func (c *Client) WithHeadlines(titles ...string) *Client {
	articles := make([]news.Article, 0, len(titles))
	for i, t := range titles {
		articles = append(articles, news.Article{
			Title:  t,
			Source: news.ArticleSource{Name: "Mock"},
			URL:    fmt.Sprintf("https://example.com/%d", i),
		})
	}
	resp := &news.Response{Status: "ok", TotalResults: len(articles), Articles: articles}
	c.HeadlinesResponse = resp
	c.SearchResponse = resp
	return c
}

func (c *Client) WithSources(sources ...news.Source) *Client {
	c.SourcesResponse = &news.Response{Status: "ok", Sources: sources}
	return c
}

// Failing makes every call return nil.
func (c *Client) Failing() *Client {
	c.SearchResponse = nil
	c.HeadlinesResponse = nil
	c.SourcesResponse = nil
	return c
}

func (c *Client) Search(_ context.Context, query string, opts news.SearchOptions) *news.Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SearchCalls = append(c.SearchCalls, SearchCall{Query: query, Options: opts})
	return c.SearchResponse
}

func (c *Client) TopHeadlines(_ context.Context, params news.HeadlinesParams) *news.Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.HeadlinesCalls = append(c.HeadlinesCalls, params)
	return c.HeadlinesResponse
}

func (c *Client) Sources(_ context.Context, params news.SourcesParams) *news.Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SourcesCalls = append(c.SourcesCalls, params)
	return c.SourcesResponse
}

func (c *Client) TotalCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.SearchCalls) + len(c.HeadlinesCalls) + len(c.SourcesCalls)
}

var _ news.Client = (*Client)(nil)
