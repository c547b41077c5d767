package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"lyrics-search/internal/config"
	"lyrics-search/internal/metrics"
	"lyrics-search/internal/search"
	"lyrics-search/internal/server"
	"lyrics-search/pkg/ai"
	"lyrics-search/pkg/ai/gemini"
	"lyrics-search/pkg/ai/openai"
	"lyrics-search/pkg/music"
	"lyrics-search/pkg/music/providers"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	cfg           *config.Config
	server        *server.Server
	metricsServer *metrics.Server
	closers       []io.Closer
}

// SetupLogging 设置 zerolog 的全局配置
func SetupLogging(cfg config.LogConfig) {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	// Requests without a logger in their context fall back to the global one.
	zerolog.DefaultContextLogger = &log.Logger
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	SetupLogging(cfg.Log)

	m := metrics.New()

	// 创建歌词提供商
	list, err := providers.CreateAll(cfg.Search.Providers, cfg.Search.ProviderTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create lyrics providers: %w", err)
	}

	a := &App{cfg: cfg}

	opts := []music.ManagerOption{music.WithObserver(m)}
	if cfg.AI.Enabled() {
		aiClient, err := a.newAIClient(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, music.WithQueryParser(ai.NewQueryParser(aiClient)))
		log.Info().Str("module", aiClient.Name()).Msg("AI query parsing enabled")
	}

	manager := music.NewManager(list, opts...)
	log.Info().Strs("providers", manager.ProviderNames()).Msg("Lyrics providers ready")

	if !cfg.Search.WarmBothModes {
		log.Warn().Msg("search.warm_both_modes is off, each request calls the searcher once")
	}

	service := search.NewService(manager, cfg.Search.WarmBothModes, m)
	a.server = server.New(cfg.Server, service, m)

	if cfg.Metrics.Addr != "" {
		a.metricsServer = metrics.NewServer(m, cfg.Metrics.Addr)
	}
	return a, nil
}

func (a *App) newAIClient(ctx context.Context) (ai.AiInterface, error) {
	if strings.HasPrefix(a.cfg.AI.ModuleName, "gemini") {
		g, err := gemini.NewGemini(ctx, a.cfg.AI.APIKey, a.cfg.AI.ModuleName)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		a.closers = append(a.closers, g)
		return g, nil
	}
	return openai.NewOpenAi(a.cfg.AI.APIKey, a.cfg.AI.ModuleName, a.cfg.AI.BaseURL), nil
}

// Run serves until ctx is cancelled or a listener fails, then shuts
// everything down.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		errCh <- a.server.Start()
	}()
	if a.metricsServer != nil {
		go func() {
			errCh <- a.metricsServer.Start()
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
	case runErr = <-errCh:
		log.Error().Err(runErr).Msg("Listener stopped")
	}

	return errors.Join(runErr, a.shutdown())
}

func (a *App) shutdown() error {
	var errs []error
	if err := a.server.Shutdown(shutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(shutdownTimeout); err != nil {
			errs = append(errs, fmt.Errorf("metrics shutdown: %w", err))
		}
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
