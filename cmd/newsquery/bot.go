package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kitbuilder587/newsquery/internal/metrics"
	"github.com/kitbuilder587/newsquery/internal/repository/postgres"
	"github.com/kitbuilder587/newsquery/internal/service"
	"github.com/kitbuilder587/newsquery/internal/telegram"
)

func botCmd(a *app) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.ValidateBot(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := postgres.New(ctx, a.cfg.Database.URL)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(ctx); err != nil {
				return err
			}

			svc, err := a.services()
			if err != nil {
				return err
			}

			bot, err := telegram.New(telegram.BotConfig{
				Token:            a.cfg.Telegram.Token,
				Debug:            debug,
				DefaultSentences: a.cfg.DefaultSummarySentences,
			}, telegram.Services{
				Users:    service.NewUserService(postgres.NewUserRepo(db), a.logger, a.metrics),
				Queries:  svc.queries,
				Briefing: svc.briefing,
				News:     svc.news,
			}, a.logger, a.metrics)
			if err != nil {
				return err
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return ignoreCanceled(bot.Run(gctx))
			})
			g.Go(func() error {
				return serveMetrics(gctx, a.cfg.HTTP.MetricsAddr, a.logger)
			})
			return g.Wait()
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "log Telegram API traffic")

	return cmd
}

// serveMetrics exposes /metrics until ctx is done.
func serveMetrics(ctx context.Context, addr string, logger *zap.Logger) error {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listener starting", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
