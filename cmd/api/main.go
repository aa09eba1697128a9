package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"meraki_leads_backend/internal/events"
	apphttp "meraki_leads_backend/internal/http"
	"meraki_leads_backend/internal/http/router"
	"meraki_leads_backend/internal/leads"
	"meraki_leads_backend/internal/scheduler"
	"meraki_leads_backend/platform/ai"
	"meraki_leads_backend/platform/ai/gemini"
	"meraki_leads_backend/platform/ai/openai"
	"meraki_leads_backend/platform/config"
	"meraki_leads_backend/platform/logger"
	"meraki_leads_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr, "llm_provider", cfg.LLMProvider)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	chat, err := newChatBackend(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize LLM collaborator", "error", err)
		panic("failed to initialize LLM collaborator: " + err.Error())
	}

	// Follow-up scheduling is optional: without Redis the API still serves,
	// committed leads just get no scheduled touch.
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not configured; lead follow-ups disabled")
	} else {
		schedulerClient, err := scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize follow-up scheduler", "error", err)
		} else {
			defer func() {
				_ = schedulerClient.Close()
			}()
			scheduler.NewSubscriber(schedulerClient, log).RegisterHandlers(eventBus)
		}
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	leadsModule := leads.NewModule(chat, cfg, eventBus, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Modules: []apphttp.Module{
			leadsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func newChatBackend(ctx context.Context, cfg *config.Config) (ai.Chat, error) {
	switch cfg.GetLLMProvider() {
	case config.ProviderOpenAI:
		return openai.New(openai.Config{
			APIKey:  cfg.GetOpenAIAPIKey(),
			BaseURL: cfg.GetOpenAIBaseURL(),
			Model:   cfg.GetOpenAIModel(),
		}), nil
	case config.ProviderGemini:
		return gemini.New(ctx, gemini.Config{
			APIKey: cfg.GetGeminiAPIKey(),
			Model:  cfg.GetGeminiModel(),
		})
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.GetLLMProvider())
	}
}
