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

const DefaultQueryModel = "gpt-4-turbo"

// QueryGenerator turns a free-text request into a two-line structured news
// query. The completion is returned exactly as received.
type QueryGenerator interface {
	Generate(ctx context.Context, request string) (domain.StructuredQuery, error)
}

type QueryGeneratorDeps struct {
	LLM     llm.Client
	Model   string
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

type queryGenerator struct {
	llm     llm.Client
	model   string
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewQueryGenerator(deps QueryGeneratorDeps) QueryGenerator {
	if deps.Model == "" {
		deps.Model = DefaultQueryModel
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &queryGenerator{
		llm:     deps.LLM,
		model:   deps.Model,
		logger:  deps.Logger,
		metrics: deps.Metrics,
	}
}

func (g *queryGenerator) Generate(ctx context.Context, request string) (domain.StructuredQuery, error) {
	req := domain.QueryRequest{Text: request}
	if err := req.Validate(); err != nil {
		return "", err
	}
	req.Sanitize()

	prompt, err := renderPrompt(queryPrompt, struct{ Request string }{req.Text})
	if err != nil {
		return "", fmt.Errorf("render query prompt: %w", err)
	}

	start := time.Now()
	out, err := g.llm.Complete(ctx, llm.UserPrompt(g.model, prompt))
	if err != nil {
		g.record("error", time.Since(start))
		g.logger.Warn("query generation failed",
			zap.String("model", g.model),
			zap.Error(err),
		)
		// наверх как есть, без обёртки
		return "", err
	}
	g.record("success", time.Since(start))

	g.logger.Debug("query generated",
		zap.String("model", g.model),
		zap.Int("request_length", len(req.Text)),
		zap.Int("query_length", len(out)),
	)

	return domain.StructuredQuery(out), nil
}

func (g *queryGenerator) record(status string, d time.Duration) {
	if g.metrics != nil {
		g.metrics.RecordLLMRequest("generate_query", g.model, status, d)
	}
}
