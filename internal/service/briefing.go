package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kitbuilder587/newsquery/internal/domain"
	"github.com/kitbuilder587/newsquery/internal/news"
)

type BriefRequest struct {
	Country   string
	Category  domain.Category
	Sources   []string
	PageSize  int
	Sentences int
}

// Briefing fetches top headlines and summarises their titles.
type Briefing interface {
	Brief(ctx context.Context, req BriefRequest) (*domain.Briefing, error)
}

type briefing struct {
	news       news.Client
	summarizer Summarizer
	logger     *zap.Logger
}

func NewBriefing(newsClient news.Client, summarizer Summarizer, logger *zap.Logger) Briefing {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &briefing{
		news:       newsClient,
		summarizer: summarizer,
		logger:     logger,
	}
}

func (b *briefing) Brief(ctx context.Context, req BriefRequest) (*domain.Briefing, error) {
	sentences := req.Sentences
	if sentences == 0 {
		sentences = domain.DefaultSummarySentences
	}
	if sentences < 1 {
		return nil, domain.ErrInvalidSentenceCount
	}

	resp := b.news.TopHeadlines(ctx, news.HeadlinesParams{
		Country:  req.Country,
		Category: req.Category,
		Sources:  req.Sources,
		PageSize: req.PageSize,
	})
	if resp == nil {
		return nil, domain.ErrNewsUnavailable
	}

	var headlines []domain.Headline
	for _, a := range resp.Articles {
		title := strings.TrimSpace(a.Title)
		if title == "" {
			continue
		}
		headlines = append(headlines, domain.Headline{
			Title:  title,
			Source: a.Source.Name,
			URL:    a.URL,
		})
	}
	if len(headlines) == 0 {
		return nil, domain.ErrNoHeadlines
	}

	summary, err := b.summarizer.Summarize(ctx, resp.Titles(), sentences)
	if err != nil {
		return nil, err
	}

	b.logger.Info("briefing built",
		zap.String("country", req.Country),
		zap.String("category", string(req.Category)),
		zap.Int("headlines", len(headlines)),
		zap.Int("sentences", sentences),
	)

	return &domain.Briefing{Headlines: headlines, Summary: summary}, nil
}
