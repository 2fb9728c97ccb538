package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/portfolio-ai/internal/server"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP insight server",
	Long: `Starts the HTTP server exposing the insight functions under /functions/v1,
the portfolio and interaction APIs under /api, chat over /ws/chat,
/healthz and /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		port := a.cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = serverPort
		}

		srv := server.New(server.Config{
			Port:           port,
			AllowedOrigins: a.cfg.Server.AllowedOrigins,
			RequestTimeout: a.cfg.Server.RequestTimeout,
		}, server.Deps{
			DB:           a.db,
			Engine:       a.engine,
			Portfolio:    a.portfolio,
			Interactions: a.interactions,
			Metrics:      a.metrics,
			Logger:       a.logger,
		})

		go func() {
			<-ctx.Done()
			a.logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error().Err(err).Msg("server shutdown")
			}
		}()

		a.logger.Info().
			Str("version", Version).
			Int("port", port).
			Str("provider", a.engine.Provider()).
			Str("model", a.cfg.Model).
			Str("database", string(a.cfg.Database.Driver)).
			Msg("portfolioai server starting")

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "port to listen on (overrides config)")
	rootCmd.AddCommand(serverCmd)
}
