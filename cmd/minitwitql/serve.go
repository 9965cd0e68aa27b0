package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"minitwitql/internal/app"
	"minitwitql/internal/config"
)

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the GraphQL server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(c.conf)
			if err != nil {
				return err
			}
			log, err := c.logger(cfg.Log)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			st, err := app.OpenStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			a, err := app.New(cfg, st, log)
			if err != nil {
				st.Close()
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					log.Warn("closing store", zap.Error(err))
				}
			}()

			log.Info("starting minitwitql",
				zap.String("version", version),
				zap.String("store", cfg.Store.Driver),
				zap.Duration("request_timeout", cfg.Server.RequestTimeout))
			return a.Run(ctx)
		},
	}
}
