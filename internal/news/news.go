// Package news describes the news search backend the assistant reads from.
package news

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/kitbuilder587/newsquery/internal/domain"
)

// Client wraps the three read-only endpoints of the news backend.
//
// Every method returns a nil *Response when the call did not complete.
// nil carries no reason. A transport error, a non-2xx status, an
// undecodable body, an error payload and a parameter rejected before
// sending all look the same to the caller. The reason only reaches the
// log, so callers cannot tell an auth failure from a timeout. A non-nil
// Response with zero articles is a successful, empty result.
type Client interface {
	Search(ctx context.Context, query string, opts SearchOptions) *Response
	TopHeadlines(ctx context.Context, params HeadlinesParams) *Response
	Sources(ctx context.Context, params SourcesParams) *Response
}

type Response struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults,omitempty"`
	Articles     []Article `json:"articles,omitempty"`
	Sources      []Source  `json:"sources,omitempty"`
	Code         string    `json:"code,omitempty"`
	Message      string    `json:"message,omitempty"`
}

type Article struct {
	Source      ArticleSource `json:"source"`
	Author      string        `json:"author"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	URLToImage  string        `json:"urlToImage"`
	PublishedAt string        `json:"publishedAt"`
	Content     string        `json:"content"`
}

type ArticleSource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Source struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Category    string `json:"category"`
	Language    string `json:"language"`
	Country     string `json:"country"`
}

// Titles returns the non-empty article titles in response order.
func (r *Response) Titles() []string {
	if r == nil {
		return nil
	}
	titles := make([]string, 0, len(r.Articles))
	for _, a := range r.Articles {
		if t := strings.TrimSpace(a.Title); t != "" {
			titles = append(titles, t)
		}
	}
	return titles
}

// SearchOptions are passed to /everything as-is; zero values are omitted.
type SearchOptions struct {
	Sources  []string
	Domains  []string
	From     string // YYYY-MM-DD or ISO 8601, sent verbatim
	To       string
	Language string
	SortBy   domain.SortBy
	PageSize int
	Page     int
	// Extra carries any other backend parameter untouched.
	Extra url.Values
}

func (o SearchOptions) Validate() error {
	if o.SortBy != "" && !o.SortBy.IsValid() {
		return domain.ErrInvalidSortBy
	}
	return nil
}

// Values merges the query under "q"; the query always wins over Extra.
func (o SearchOptions) Values(query string) url.Values {
	v := cloneValues(o.Extra)
	setList(v, "sources", o.Sources)
	setList(v, "domains", o.Domains)
	setString(v, "from", o.From)
	setString(v, "to", o.To)
	setString(v, "language", o.Language)
	setString(v, "sortBy", string(o.SortBy))
	setInt(v, "pageSize", o.PageSize)
	setInt(v, "page", o.Page)
	v.Set("q", query)
	return v
}

type HeadlinesParams struct {
	Country  string
	Category domain.Category
	Sources  []string
	Query    string
	PageSize int
	Page     int
	Extra    url.Values
}

func (p HeadlinesParams) Validate() error {
	if p.Category != "" && !p.Category.IsValid() {
		return domain.ErrInvalidCategory
	}
	return nil
}

func (p HeadlinesParams) Values() url.Values {
	v := cloneValues(p.Extra)
	setString(v, "country", p.Country)
	setString(v, "category", string(p.Category))
	setList(v, "sources", p.Sources)
	setString(v, "q", p.Query)
	setInt(v, "pageSize", p.PageSize)
	setInt(v, "page", p.Page)
	return v
}

type SourcesParams struct {
	Category domain.Category
	Language string
	Country  string
}

func (p SourcesParams) Validate() error {
	if p.Category != "" && !p.Category.IsValid() {
		return domain.ErrInvalidCategory
	}
	return nil
}

func (p SourcesParams) Values() url.Values {
	v := url.Values{}
	setString(v, "category", string(p.Category))
	setString(v, "language", p.Language)
	setString(v, "country", p.Country)
	return v
}

func cloneValues(src url.Values) url.Values {
	v := url.Values{}
	for k, vals := range src {
		for _, val := range vals {
			if val != "" {
				v.Add(k, val)
			}
		}
	}
	return v
}

func setString(v url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		v.Set(key, value)
	}
}

func setList(v url.Values, key string, values []string) {
	parts := make([]string, 0, len(values))
	for _, s := range values {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) > 0 {
		v.Set(key, strings.Join(parts, ","))
	}
}

func setInt(v url.Values, key string, value int) {
	if value > 0 {
		v.Set(key, strconv.Itoa(value))
	}
}
