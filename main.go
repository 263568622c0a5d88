package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nubank/butu-chat/internal/config"
	"github.com/nubank/butu-chat/internal/logger"
	"github.com/nubank/butu-chat/internal/provider"
	"github.com/nubank/butu-chat/internal/server"
)

func main() {
	root := &cobra.Command{
		Use:           "butu",
		Short:         "Butu chat relay and terminal chat widget",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newChatCmd())

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("butu failed")
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the POST /chat relay and serve the widget assets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger.Setup(cfg.LogLevel, cfg.LogPretty)
			return serve(cmd.Context(), cfg)
		},
	}
}

// newProvider uses OpenRouter when a key is configured and the mock otherwise.
func newProvider(cfg *config.Config) provider.ChatProvider {
	if cfg.MockProvider() {
		log.Warn().Msg("OPENROUTER_API_KEY not set or BUTU_USE_MOCK enabled, using mock provider")
		return provider.MockProvider{}
	}
	p, err := provider.NewOpenRouterProvider(cfg.Provider, cfg.Persona)
	if err != nil {
		log.Warn().Err(err).Msg("falling back to mock provider")
		return provider.MockProvider{}
	}
	return p
}

func serve(ctx context.Context, cfg *config.Config) error {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	chat := newProvider(cfg)
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.NewRouter(cfg, chat),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Provider.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", "http://localhost:"+cfg.Port).Str("model", chat.Model()).Msg("Butu AI running")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
