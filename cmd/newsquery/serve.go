package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kitbuilder587/newsquery/internal/api"
)

func serveCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.HTTP.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, err := a.services()
			if err != nil {
				return err
			}

			srv := api.NewServer(api.Deps{
				Queries:          svc.queries,
				Summarizer:       svc.summarizer,
				Briefing:         svc.briefing,
				News:             svc.news,
				Logger:           a.logger,
				Metrics:          a.metrics,
				DefaultSentences: a.cfg.DefaultSummarySentences,
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default HTTP_ADDR)")

	return cmd
}
