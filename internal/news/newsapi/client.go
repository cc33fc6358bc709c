// Package newsapi implements news.Client on top of the NewsAPI.org v2 REST API.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/newsquery/internal/metrics"
	"github.com/kitbuilder587/newsquery/internal/news"
)

const (
	endpointEverything   = "/everything"
	endpointTopHeadlines = "/top-headlines"
	endpointSources      = "/sources"
)

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func New(cfg Config, logger *zap.Logger, m *metrics.Metrics) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://newsapi.org/v2"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		metrics: m,
	}
}

func (c *Client) Search(ctx context.Context, query string, opts news.SearchOptions) *news.Response {
	if err := opts.Validate(); err != nil {
		c.logger.Error("error fetching news", zap.Error(err))
		c.record(endpointEverything, "rejected", 0)
		return nil
	}
	return c.get(ctx, endpointEverything, opts.Values(query))
}

func (c *Client) TopHeadlines(ctx context.Context, params news.HeadlinesParams) *news.Response {
	if err := params.Validate(); err != nil {
		c.logger.Error("error fetching top headlines", zap.Error(err))
		c.record(endpointTopHeadlines, "rejected", 0)
		return nil
	}
	return c.get(ctx, endpointTopHeadlines, params.Values())
}

func (c *Client) Sources(ctx context.Context, params news.SourcesParams) *news.Response {
	if err := params.Validate(); err != nil {
		c.logger.Error("error fetching news sources", zap.Error(err))
		c.record(endpointSources, "rejected", 0)
		return nil
	}
	return c.get(ctx, endpointSources, params.Values())
}

// get never returns an error: every failure is logged and becomes nil.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) *news.Response {
	start := time.Now()

	resp, err := c.do(ctx, endpoint, params)
	if err != nil {
		c.logger.Error("news request failed",
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		c.record(endpoint, "failed", time.Since(start))
		return nil
	}

	c.logger.Debug("news request completed",
		zap.String("endpoint", endpoint),
		zap.Int("total_results", resp.TotalResults),
		zap.Int("articles", len(resp.Articles)),
		zap.Int("sources", len(resp.Sources)),
		zap.Duration("duration", time.Since(start)),
	)
	c.record(endpoint, "ok", time.Since(start))
	return resp
}

func (c *Client) do(ctx context.Context, endpoint string, params url.Values) (*news.Response, error) {
	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 512))
	}

	var out news.Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if out.Status == "error" {
		return nil, fmt.Errorf("newsapi error %s: %s", out.Code, out.Message)
	}

	return &out, nil
}

func (c *Client) record(endpoint, status string, d time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordNewsRequest(endpoint, status, d)
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

var _ news.Client = (*Client)(nil)
