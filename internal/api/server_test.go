package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kitbuilder587/newsquery/internal/domain"
	"github.com/kitbuilder587/newsquery/internal/llm"
	llmMock "github.com/kitbuilder587/newsquery/internal/llm/mock"
	"github.com/kitbuilder587/newsquery/internal/metrics"
	"github.com/kitbuilder587/newsquery/internal/news"
	newsMock "github.com/kitbuilder587/newsquery/internal/news/mock"
	"github.com/kitbuilder587/newsquery/internal/service"
)

type testServer struct {
	handler http.Handler
	llm     *llmMock.Client
	news    *newsMock.Client
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{
		llm:     llmMock.New(),
		news:    newsMock.New(),
		metrics: metrics.NewWithRegistry(prometheus.NewRegistry()),
	}
	summarizer := service.NewSummarizer(service.SummarizerDeps{LLM: ts.llm, Model: "gpt-4o"})

	srv := NewServer(Deps{
		Queries:    service.NewQueryGenerator(service.QueryGeneratorDeps{LLM: ts.llm, Model: "gpt-4-turbo"}),
		Summarizer: summarizer,
		Briefing:   service.NewBriefing(ts.news, summarizer, zap.NewNop()),
		News:       ts.news,
		Logger:     zap.NewNop(),
		Metrics:    ts.metrics,
	})
	ts.handler = srv.Router()
	return ts
}

func (ts *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestID_Propagated(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestQuery(t *testing.T) {
	ts := newTestServer(t)
	completion := "title:(\"ESG\")\n{\"published_at.start\": \"NOW-7DAYS\", \"published_at.end\": \"NOW\"}"
	ts.llm.WithResponse(completion)

	rec := ts.do(http.MethodPost, "/v1/query", `{"request":"What's the latest news about ESG?"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[queryResponse](t, rec)
	assert.Equal(t, completion, resp.Query)
	assert.Equal(t, `title:("ESG")`, resp.Filter)
	assert.Equal(t, `{"published_at.start": "NOW-7DAYS", "published_at.end": "NOW"}`, resp.Constraint)
	assert.Equal(t, "gpt-4-turbo", ts.llm.LastRequest.Model)

	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.RequestsTotal.WithLabelValues("http", "POST /v1/query", "200")))
}

func TestQuery_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		llmErr     error
		wantStatus int
		wantError  string
	}{
		{name: "bad json", body: `{"request":`, wantStatus: http.StatusBadRequest},
		{name: "unknown field", body: `{"prompt":"x"}`, wantStatus: http.StatusBadRequest},
		{name: "empty request", body: `{"request":"   "}`, wantStatus: http.StatusBadRequest, wantError: "empty query"},
		{name: "too long", body: fmt.Sprintf(`{"request":%q}`, strings.Repeat("a", 1001)), wantStatus: http.StatusBadRequest, wantError: "query too long"},
		{
			name:       "completion failed",
			body:       `{"request":"Apple"}`,
			llmErr:     fmt.Errorf("%w: %w", llm.ErrAuthFailed, errors.New("invalid api key")),
			wantStatus: http.StatusBadGateway,
			wantError:  "authentication failed: invalid api key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			if tt.llmErr != nil {
				ts.llm.WithError(tt.llmErr)
			}

			rec := ts.do(http.MethodPost, "/v1/query", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decode[errorResponse](t, rec).Error)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.WithResponse("Two things happened.")

	rec := ts.do(http.MethodPost, "/v1/summarize", `{"headlines":["A happened","B happened"],"sentences":1}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Two things happened.", decode[summarizeResponse](t, rec).Summary)
	assert.Contains(t, ts.llm.LastPrompt(), "with 1 sentences")
	assert.Equal(t, "gpt-4o", ts.llm.LastRequest.Model)
}

func TestSummarize_DefaultSentences(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/v1/summarize", `{"headlines":["A"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, ts.llm.LastPrompt(), "with 3 sentences")
}

func TestSummarize_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		llmErr     error
		wantStatus int
	}{
		{name: "no headlines", body: `{"headlines":[],"sentences":2}`, wantStatus: http.StatusBadRequest},
		{name: "negative sentences", body: `{"headlines":["a"],"sentences":-1}`, wantStatus: http.StatusBadRequest},
		{name: "too many sentences", body: `{"headlines":["a"],"sentences":11}`, wantStatus: http.StatusBadRequest},
		{name: "completion failed", body: `{"headlines":["a"]}`, llmErr: llm.ErrRateLimit, wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			if tt.llmErr != nil {
				ts.llm.WithError(tt.llmErr)
			}

			rec := ts.do(http.MethodPost, "/v1/summarize", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.llmErr == nil {
				assert.Zero(t, ts.llm.CallCount, "invalid input must not reach the model")
			}
		})
	}
}

func TestSearch(t *testing.T) {
	ts := newTestServer(t)
	ts.news.WithHeadlines("Bitcoin climbs")

	rec := ts.do(http.MethodGet, "/v1/search?q=bitcoin&sources=coindesk,%20wired&from=2024-05-01&sortBy=popularity&pageSize=500", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[news.Response](t, rec)
	require.Len(t, resp.Articles, 1)
	assert.Equal(t, "Bitcoin climbs", resp.Articles[0].Title)

	require.Len(t, ts.news.SearchCalls, 1)
	call := ts.news.SearchCalls[0]
	assert.Equal(t, "bitcoin", call.Query)
	assert.Equal(t, []string{"coindesk", "wired"}, call.Options.Sources)
	assert.Equal(t, "2024-05-01", call.Options.From)
	assert.Equal(t, domain.SortPopularity, call.Options.SortBy)
	assert.Equal(t, maxPageSize, call.Options.PageSize)
}

func TestSearch_Validation(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/v1/search", "").Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/v1/search?q=x&sortBy=newest", "").Code)
	assert.Zero(t, ts.news.TotalCalls())
}

func TestNewsFailureIsBadGateway(t *testing.T) {
	targets := []string{
		"/v1/search?q=x",
		"/v1/top-headlines?country=us",
		"/v1/sources",
		"/v1/brief",
	}

	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			ts := newTestServer(t)
			ts.news.Failing()

			rec := ts.do(http.MethodGet, target, "")

			assert.Equal(t, http.StatusBadGateway, rec.Code)
			assert.Equal(t, "news request failed", decode[errorResponse](t, rec).Error)
		})
	}
}

func TestTopHeadlines(t *testing.T) {
	ts := newTestServer(t)
	ts.news.WithHeadlines("One")

	rec := ts.do(http.MethodGet, "/v1/top-headlines?country=US&category=Technology", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, ts.news.HeadlinesCalls, 1)
	assert.Equal(t, news.HeadlinesParams{Country: "us", Category: domain.CategoryTechnology}, ts.news.HeadlinesCalls[0])
}

func TestTopHeadlines_InvalidCategory(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/v1/top-headlines?category=politics", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, ts.news.TotalCalls())
}

func TestSources(t *testing.T) {
	ts := newTestServer(t)
	ts.news.WithSources(news.Source{ID: "bbc-news", Name: "BBC News"})

	rec := ts.do(http.MethodGet, "/v1/sources?language=EN", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[news.Response](t, rec)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, news.SourcesParams{Language: "en"}, ts.news.SourcesCalls[0])
}

func TestBrief(t *testing.T) {
	ts := newTestServer(t)
	ts.news.WithHeadlines("Rates held", "Oil slips")
	ts.llm.WithResponse("Rates held and oil slipped.")

	rec := ts.do(http.MethodGet, "/v1/brief?country=us&category=business&sentences=1", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[briefResponse](t, rec)
	assert.Equal(t, "Rates held and oil slipped.", resp.Summary)
	require.Len(t, resp.Headlines, 2)
	assert.Equal(t, "Rates held", resp.Headlines[0].Title)
	assert.Contains(t, ts.llm.LastPrompt(), "with 1 sentences")
}

func TestBrief_Errors(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		setup      func(*testServer)
		wantStatus int
	}{
		{name: "bad sentences", target: "/v1/brief?sentences=abc", setup: func(*testServer) {}, wantStatus: http.StatusBadRequest},
		{name: "too many sentences", target: "/v1/brief?sentences=11", setup: func(*testServer) {}, wantStatus: http.StatusBadRequest},
		{name: "bad category", target: "/v1/brief?category=x", setup: func(*testServer) {}, wantStatus: http.StatusBadRequest},
		{name: "no headlines", target: "/v1/brief", setup: func(*testServer) {}, wantStatus: http.StatusNotFound},
		{
			name:   "summary failed",
			target: "/v1/brief",
			setup: func(ts *testServer) {
				ts.news.WithHeadlines("a")
				ts.llm.WithError(llm.ErrRequestFailed)
			},
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			tt.setup(ts)

			rec := ts.do(http.MethodGet, tt.target, "")

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, 5, clampInt("", 5, 10))
	assert.Equal(t, 5, clampInt("abc", 5, 10))
	assert.Equal(t, 5, clampInt("-1", 5, 10))
	assert.Equal(t, 7, clampInt("7", 5, 10))
	assert.Equal(t, 10, clampInt("70", 5, 10))
}

func TestParseCSV(t *testing.T) {
	assert.Nil(t, parseCSV(""))
	assert.Equal(t, []string{"a", "b"}, parseCSV(" a, ,b "))
}
