package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kitbuilder587/newsquery/internal/domain"
	"github.com/kitbuilder587/newsquery/internal/service"
)

func queryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "query <request>",
		Short: "Turn a natural-language request into a structured news query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.ValidateLLM(); err != nil {
				return err
			}
			svc, err := a.services()
			if err != nil {
				return err
			}

			q, err := svc.queries.Generate(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			// ровно то, что вернула модель
			fmt.Fprintln(cmd.OutOrStdout(), q.String())
			return nil
		},
	}
}

func summarizeCmd(a *app) *cobra.Command {
	var sentences int

	cmd := &cobra.Command{
		Use:   "summarize <headline>...",
		Short: "Summarise headlines into one paragraph",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.ValidateLLM(); err != nil {
				return err
			}
			if sentences == 0 {
				sentences = a.cfg.DefaultSummarySentences
			}
			svc, err := a.services()
			if err != nil {
				return err
			}

			summary, err := svc.summarizer.Summarize(cmd.Context(), args, sentences)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	cmd.Flags().IntVarP(&sentences, "sentences", "n", 0, "sentences in the summary (default DEFAULT_SUMMARY_SENTENCES)")

	return cmd
}

func briefCmd(a *app) *cobra.Command {
	var (
		country   string
		category  string
		sources   []string
		sentences int
	)

	cmd := &cobra.Command{
		Use:   "brief",
		Short: "Fetch top headlines and summarise them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			if sentences == 0 {
				sentences = a.cfg.DefaultSummarySentences
			}
			cat, err := parseCategory(category)
			if err != nil {
				return err
			}
			svc, err := a.services()
			if err != nil {
				return err
			}

			b, err := svc.briefing.Brief(cmd.Context(), service.BriefRequest{
				Country:   strings.ToLower(country),
				Category:  cat,
				Sources:   sources,
				Sentences: sentences,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, b.Summary)
			fmt.Fprintln(out)
			for i, h := range b.Headlines {
				fmt.Fprintf(out, "%d. %s\n", i+1, h.Title)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&country, "country", "", "two-letter country code")
	cmd.Flags().StringVar(&category, "category", "", "business, entertainment, general, health, science, sports or technology")
	cmd.Flags().StringSliceVar(&sources, "sources", nil, "source ids")
	cmd.Flags().IntVarP(&sentences, "sentences", "n", 0, "sentences in the summary")

	return cmd
}

func parseCategory(raw string) (domain.Category, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return domain.ParseCategory(raw)
}
