package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"campaignflow/internal/http/handlers"
	httpapi "campaignflow/internal/http/httpapi"
	"campaignflow/internal/infra"
	"campaignflow/internal/mediacheck"
	"campaignflow/internal/pipeline"
	"campaignflow/internal/providers/render"
	"campaignflow/internal/providers/text"
	"campaignflow/internal/publish"
)

func main() {
	// Muat .env (opsional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	runner, err := buildRunner(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build pipeline")
	}

	app := handlers.NewApp(runner, logger, cfg.StreamTimeout)
	router := httpapi.NewRouter(app, logger, cfg.AllowedOrigins)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != os.ErrClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func buildRunner(cfg *infra.Config, logger infra.Logger) (*pipeline.Runner, error) {
	registry := text.NewRegistry()
	if cfg.GeminiAPIKey != "" {
		gemini, err := text.NewGemini(text.GeminiOptions{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
		})
		if err != nil {
			return nil, err
		}
		registry.Bind(text.CapConcepts, gemini)
		registry.Bind(text.CapCaptions, gemini)
		registry.Bind(text.CapPromptSynthesis, gemini)
	} else {
		logger.Warn().Msg("GEMINI_API_KEY not set, text capabilities unbound")
	}

	renderClient, err := render.NewClient(render.Options{
		APIKey:       cfg.RenderAPIKey,
		BaseURL:      cfg.RenderBaseURL,
		PollInterval: cfg.RenderPollInterval,
		Budget:       cfg.RenderBudget,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	var video pipeline.VideoRenderer = renderClient
	if cfg.VideoMockMode {
		logger.Info().Msg("video mock mode enabled, renders return a canned clip")
		video = render.NewMockVideoRenderer(2 * time.Second)
	}

	var publisher pipeline.AssetPublisher
	if cfg.PublishBaseURL != "" {
		p, err := publish.NewPublisher(publish.Options{
			BaseURL:     cfg.PublishBaseURL,
			AccessToken: cfg.PublishAccessToken,
			Logger:      logger,
		})
		if err != nil {
			return nil, err
		}
		publisher = p
	} else {
		logger.Warn().Msg("PUBLISH_BASE_URL not set, publish stage disabled")
	}

	return &pipeline.Runner{
		Registry:             registry,
		Images:               renderClient,
		Video:                video,
		Publisher:            publisher,
		Validator:            mediacheck.NewValidator(nil, cfg.ProbeTimeout, logger),
		Logger:               logger,
		VideoDurationSeconds: cfg.VideoDurationSeconds,
		DefaultSeedImageURL:  cfg.DefaultSeedImageURL,
	}, nil
}
