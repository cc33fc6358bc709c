package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kitbuilder587/newsquery/internal/domain"
	"github.com/kitbuilder587/newsquery/internal/news"
	"github.com/kitbuilder587/newsquery/internal/service"
)

const (
	maxBodyBytes = 1 << 20
	maxPageSize  = 100
)

type errorResponse struct {
	Error string `json:"error"`
}

type queryRequest struct {
	Request string `json:"request"`
}

type queryResponse struct {
	Query      string `json:"query"`
	Filter     string `json:"filter"`
	Constraint string `json:"constraint"`
}

type summarizeRequest struct {
	Headlines []string `json:"headlines"`
	Sentences int      `json:"sentences"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

type headlineDTO struct {
	Title  string `json:"title"`
	Source string `json:"source,omitempty"`
	URL    string `json:"url,omitempty"`
}

type briefResponse struct {
	Summary   string        `json:"summary"`
	Headlines []headlineDTO `json:"headlines"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	q, err := s.queries.Generate(r.Context(), req.Request)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Query:      q.String(),
		Filter:     q.FilterLine(),
		Constraint: q.ConstraintLine(),
	})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Sentences == 0 {
		req.Sentences = s.defaultSentences
	}
	if err := domain.ValidateSentenceCount(req.Sentences); err != nil {
		s.writeError(w, r, err)
		return
	}

	summary, err := s.summarizer.Summarize(r.Context(), req.Headlines, req.Sentences)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summarizeResponse{Summary: summary})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := strings.TrimSpace(q.Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "q is required"})
		return
	}

	opts := news.SearchOptions{
		Sources:  parseCSV(q.Get("sources")),
		Domains:  parseCSV(q.Get("domains")),
		From:     q.Get("from"),
		To:       q.Get("to"),
		Language: q.Get("language"),
		SortBy:   domain.SortBy(strings.TrimSpace(q.Get("sortBy"))),
		PageSize: clampInt(q.Get("pageSize"), 0, maxPageSize),
		Page:     clampInt(q.Get("page"), 0, 10_000),
	}
	if err := opts.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeNews(w, r, s.news.Search(r.Context(), query, opts))
}

func (s *Server) handleTopHeadlines(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := news.HeadlinesParams{
		Country:  strings.ToLower(q.Get("country")),
		Category: domain.Category(strings.ToLower(strings.TrimSpace(q.Get("category")))),
		Sources:  parseCSV(q.Get("sources")),
		Query:    q.Get("q"),
		PageSize: clampInt(q.Get("pageSize"), 0, maxPageSize),
		Page:     clampInt(q.Get("page"), 0, 10_000),
	}
	if err := params.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeNews(w, r, s.news.TopHeadlines(r.Context(), params))
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := news.SourcesParams{
		Category: domain.Category(strings.ToLower(strings.TrimSpace(q.Get("category")))),
		Language: strings.ToLower(q.Get("language")),
		Country:  strings.ToLower(q.Get("country")),
	}
	if err := params.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeNews(w, r, s.news.Sources(r.Context(), params))
}

func (s *Server) handleBrief(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sentences := s.defaultSentences
	if raw := strings.TrimSpace(q.Get("sentences")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, r, domain.ErrInvalidSentenceCount)
			return
		}
		sentences = n
	}
	if err := domain.ValidateSentenceCount(sentences); err != nil {
		s.writeError(w, r, err)
		return
	}

	category := domain.Category(strings.ToLower(strings.TrimSpace(q.Get("category"))))
	if category != "" && !category.IsValid() {
		s.writeError(w, r, domain.ErrInvalidCategory)
		return
	}

	b, err := s.briefing.Brief(r.Context(), service.BriefRequest{
		Country:   strings.ToLower(q.Get("country")),
		Category:  category,
		Sources:   parseCSV(q.Get("sources")),
		PageSize:  clampInt(q.Get("pageSize"), 0, maxPageSize),
		Sentences: sentences,
	})
	if errors.Is(err, domain.ErrNoHeadlines) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := briefResponse{Summary: b.Summary, Headlines: make([]headlineDTO, 0, len(b.Headlines))}
	for _, h := range b.Headlines {
		resp.Headlines = append(resp.Headlines, headlineDTO(h))
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeNews turns the news client's nil sentinel into 502.
func (s *Server) writeNews(w http.ResponseWriter, r *http.Request, resp *news.Response) {
	if resp == nil {
		s.writeError(w, r, domain.ErrNewsUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyQuery),
		errors.Is(err, domain.ErrQueryTooLong),
		errors.Is(err, domain.ErrNoHeadlines),
		errors.Is(err, domain.ErrInvalidSentenceCount),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrInvalidCountry),
		errors.Is(err, domain.ErrInvalidLanguage),
		errors.Is(err, domain.ErrInvalidSortBy):
		return http.StatusBadRequest
	default:
		// сбой модели или новостного API
		return http.StatusBadGateway
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func parseCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// clampInt returns fallback for empty, invalid or non-positive input.
func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
