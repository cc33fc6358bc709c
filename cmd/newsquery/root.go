package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kitbuilder587/newsquery/internal/config"
	"github.com/kitbuilder587/newsquery/internal/metrics"
)

// app is filled by the root command before any subcommand runs.
type app struct {
	cfgPath  string
	logLevel string

	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics

	registry prometheus.Registerer
}

func newRootCmd(reg prometheus.Registerer) *cobra.Command {
	a := &app{registry: reg}

	root := &cobra.Command{
		Use:           "newsquery",
		Short:         "News query assistant: structured queries, headlines and summaries",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "config file (env variables win over it)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	root.AddCommand(
		botCmd(a),
		serveCmd(a),
		migrateCmd(a),
		queryCmd(a),
		summarizeCmd(a),
		briefCmd(a),
		headlinesCmd(a),
		searchCmd(a),
		sourcesCmd(a),
	)

	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.metrics = metrics.NewWithRegistry(a.registry)
	return nil
}
