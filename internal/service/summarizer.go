package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/newsquery/internal/domain"
	"github.com/kitbuilder587/newsquery/internal/llm"
	"github.com/kitbuilder587/newsquery/internal/metrics"
)

const DefaultSummaryModel = "gpt-4o"

type Summarizer interface {
	Summarize(ctx context.Context, headlines []string, sentences int) (string, error)
}

type SummarizerDeps struct {
	LLM     llm.Client
	Model   string
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

type summarizer struct {
	llm     llm.Client
	model   string
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewSummarizer(deps SummarizerDeps) Summarizer {
	if deps.Model == "" {
		deps.Model = DefaultSummaryModel
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &summarizer{
		llm:     deps.LLM,
		model:   deps.Model,
		logger:  deps.Logger,
		metrics: deps.Metrics,
	}
}

// Summarize sends all headlines in a single prompt, no chunking.
func (s *summarizer) Summarize(ctx context.Context, headlines []string, sentences int) (string, error) {
	if sentences < 1 {
		return "", domain.ErrInvalidSentenceCount
	}
	if len(headlines) == 0 {
		return "", domain.ErrNoHeadlines
	}

	prompt, err := renderPrompt(summaryPrompt, struct {
		Headlines []string
		Sentences int
	}{headlines, sentences})
	if err != nil {
		return "", fmt.Errorf("render summary prompt: %w", err)
	}

	start := time.Now()
	out, err := s.llm.Complete(ctx, llm.UserPrompt(s.model, prompt))
	if err != nil {
		s.record("error", time.Since(start))
		s.logger.Warn("summarization failed",
			zap.String("model", s.model),
			zap.Int("headlines", len(headlines)),
			zap.Error(err),
		)
		return "", err
	}
	s.record("success", time.Since(start))

	return out, nil
}

func (s *summarizer) record(status string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordLLMRequest("summarize", s.model, status, d)
	}
}
