package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"meraki_leads_backend/internal/scheduler"
	"meraki_leads_backend/internal/whatsapp"
	"meraki_leads_backend/platform/config"
	"meraki_leads_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	whatsappClient := whatsapp.NewClient(cfg, log)
	if whatsappClient == nil {
		log.Warn("WHATSAPP_API_URL not configured; whatsapp follow-ups will be dropped")
	}

	worker, err := scheduler.NewWorker(cfg, whatsappClient, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	log.Info("scheduler worker listening", "queue", cfg.AsynqQueue)
	worker.Run(ctx)
}
