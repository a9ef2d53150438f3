package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/inkognitroz/Virtual-Company/internal/api"
	"github.com/inkognitroz/Virtual-Company/internal/auth"
	"github.com/inkognitroz/Virtual-Company/internal/config"
	"github.com/inkognitroz/Virtual-Company/internal/llm"
	"github.com/inkognitroz/Virtual-Company/internal/logger"
	"github.com/inkognitroz/Virtual-Company/internal/pidfile"
	"github.com/inkognitroz/Virtual-Company/internal/store"
	"github.com/inkognitroz/Virtual-Company/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is fine; the environment alone is enough
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Init(logger.ParseLevel(cfg.LogLevel), cfg.LogPath); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Global().Close()

	if cfg.PidPath != "" {
		pf := pidfile.New(cfg.PidPath)
		if err := pf.Acquire(); err != nil {
			return err
		}
		defer pf.Release()
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	verifier := auth.NewVerifier(cfg.SecretKey, st)
	bridge := llm.NewBridge(llm.Keys{
		OpenAI:     cfg.OpenAIAPIKey,
		Anthropic:  cfg.AnthropicAPIKey,
		OpenRouter: cfg.OpenRouterAPIKey,
		Google:     cfg.GoogleAPIKey,
	}, cfg.DefaultModel)

	server := web.NewServer(cfg.Addr(), verifier, st, bridge)

	tokenTTL := time.Duration(cfg.TokenExpireMinutes) * time.Minute
	api.NewHandler(st, verifier, cfg.SecretKey, tokenTTL).Register(server.Router())

	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Received %s, shutting down", sig)

	if err := server.Stop(); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	return nil
}
