package main

import (
	"github.com/kitbuilder587/newsquery/internal/config"
	"github.com/kitbuilder587/newsquery/internal/llm"
	llmMock "github.com/kitbuilder587/newsquery/internal/llm/mock"
	"github.com/kitbuilder587/newsquery/internal/llm/openai"
	"github.com/kitbuilder587/newsquery/internal/llm/openrouter"
	"github.com/kitbuilder587/newsquery/internal/news"
	"github.com/kitbuilder587/newsquery/internal/news/newsapi"
	"github.com/kitbuilder587/newsquery/internal/service"
)

func (a *app) llmClient() (llm.Client, error) {
	cfg := a.cfg.LLM

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openai.New(openai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Timeout: cfg.Timeout,
		}, a.logger), nil
	case config.ProviderOpenRouter:
		return openrouter.New(openrouter.Config{
			APIKey:  cfg.OpenRouter.APIKey,
			BaseURL: cfg.OpenRouter.BaseURL,
			Model:   cfg.QueryModel,
			Timeout: cfg.Timeout,
		}, a.logger), nil
	case config.ProviderMock:
		// офлайн, отвечает заготовкой
		return llmMock.New(), nil
	default:
		return nil, config.ErrInvalidProvider
	}
}

func (a *app) newsClient() news.Client {
	return newsapi.New(newsapi.Config{
		APIKey:  a.cfg.NewsAPI.APIKey,
		BaseURL: a.cfg.NewsAPI.BaseURL,
		Timeout: a.cfg.NewsAPI.Timeout,
	}, a.logger, a.metrics)
}

type services struct {
	queries    service.QueryGenerator
	summarizer service.Summarizer
	briefing   service.Briefing
	news       news.Client
}

func (a *app) services() (*services, error) {
	client, err := a.llmClient()
	if err != nil {
		return nil, err
	}

	newsClient := a.newsClient()
	summarizer := service.NewSummarizer(service.SummarizerDeps{
		LLM:     client,
		Model:   a.cfg.LLM.SummaryModel,
		Logger:  a.logger,
		Metrics: a.metrics,
	})

	return &services{
		queries: service.NewQueryGenerator(service.QueryGeneratorDeps{
			LLM:     client,
			Model:   a.cfg.LLM.QueryModel,
			Logger:  a.logger,
			Metrics: a.metrics,
		}),
		summarizer: summarizer,
		briefing:   service.NewBriefing(newsClient, summarizer, a.logger),
		news:       newsClient,
	}, nil
}
