package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kitbuilder587/newsquery/internal/config"
	"github.com/kitbuilder587/newsquery/internal/domain"
	"github.com/kitbuilder587/newsquery/internal/news"
)

type outputFlags struct {
	json bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.json, "json", false, "print the raw backend response")
}

func (a *app) requireNewsKey() error {
	if a.cfg.NewsAPI.APIKey == "" {
		return config.ErrMissingNewsKey
	}
	return nil
}

func headlinesCmd(a *app) *cobra.Command {
	var (
		out    outputFlags
		params news.HeadlinesParams
		cat    string
	)

	cmd := &cobra.Command{
		Use:   "headlines",
		Short: "List top headlines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireNewsKey(); err != nil {
				return err
			}
			category, err := parseCategory(cat)
			if err != nil {
				return err
			}
			params.Category = category
			params.Country = strings.ToLower(params.Country)

			resp := a.newsClient().TopHeadlines(cmd.Context(), params)
			return printResponse(cmd.OutOrStdout(), resp, out.json)
		},
	}
	cmd.Flags().StringVar(&params.Country, "country", "", "two-letter country code")
	cmd.Flags().StringVar(&cat, "category", "", "news category")
	cmd.Flags().StringSliceVar(&params.Sources, "sources", nil, "source ids")
	cmd.Flags().StringVarP(&params.Query, "query", "q", "", "keywords")
	cmd.Flags().IntVar(&params.PageSize, "page-size", 0, "results per page")
	cmd.Flags().IntVar(&params.Page, "page", 0, "page number")
	out.register(cmd)

	return cmd
}

func searchCmd(a *app) *cobra.Command {
	var (
		out    outputFlags
		opts   news.SearchOptions
		sortBy string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search all articles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireNewsKey(); err != nil {
				return err
			}
			opts.SortBy = domain.SortBy(sortBy)
			if err := opts.Validate(); err != nil {
				return err
			}

			resp := a.newsClient().Search(cmd.Context(), strings.Join(args, " "), opts)
			return printResponse(cmd.OutOrStdout(), resp, out.json)
		},
	}
	cmd.Flags().StringSliceVar(&opts.Sources, "sources", nil, "source ids")
	cmd.Flags().StringSliceVar(&opts.Domains, "domains", nil, "domains, e.g. bbc.co.uk")
	cmd.Flags().StringVar(&opts.From, "from", "", "oldest article date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.To, "to", "", "newest article date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.Language, "language", "", "two-letter language code")
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "relevancy, popularity or publishedAt")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "results per page")
	cmd.Flags().IntVar(&opts.Page, "page", 0, "page number")
	out.register(cmd)

	return cmd
}

func sourcesCmd(a *app) *cobra.Command {
	var (
		out    outputFlags
		params news.SourcesParams
		cat    string
	)

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List news sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireNewsKey(); err != nil {
				return err
			}
			category, err := parseCategory(cat)
			if err != nil {
				return err
			}
			params.Category = category

			resp := a.newsClient().Sources(cmd.Context(), params)
			return printResponse(cmd.OutOrStdout(), resp, out.json)
		},
	}
	cmd.Flags().StringVar(&cat, "category", "", "news category")
	cmd.Flags().StringVar(&params.Language, "language", "", "two-letter language code")
	cmd.Flags().StringVar(&params.Country, "country", "", "two-letter country code")
	out.register(cmd)

	return cmd
}

func printResponse(w io.Writer, resp *news.Response, raw bool) error {
	if resp == nil {
		// причина уже в логе
		return domain.ErrNewsUnavailable
	}

	if raw {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	for i, article := range resp.Articles {
		fmt.Fprintf(w, "%d. %s\n", i+1, article.Title)
		if article.Source.Name != "" {
			fmt.Fprintf(w, "   %s", article.Source.Name)
			if article.PublishedAt != "" {
				fmt.Fprintf(w, ", %s", article.PublishedAt)
			}
			fmt.Fprintln(w)
		}
		if article.URL != "" {
			fmt.Fprintf(w, "   %s\n", article.URL)
		}
	}
	for _, src := range resp.Sources {
		fmt.Fprintf(w, "%-24s %s (%s, %s)\n", src.ID, src.Name, src.Category, src.Country)
	}
	if len(resp.Articles) == 0 && len(resp.Sources) == 0 {
		fmt.Fprintln(w, "nothing found")
	}
	return nil
}
