package scheduler

import (
	"context"
	"fmt"

	"meraki_leads_backend/internal/leads/domain"
	"meraki_leads_backend/internal/whatsapp"
	"meraki_leads_backend/platform/config"
	"meraki_leads_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker consumes scheduled follow-up tasks.
type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	whatsapp *whatsapp.Client
	log      *logger.Logger
}

// NewWorker creates the asynq worker.
func NewWorker(cfg config.SchedulerConfig, whatsappClient *whatsapp.Client, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		whatsapp: whatsappClient,
		log:      log,
	}

	mux.HandleFunc(TaskLeadFollowUp, w.handleLeadFollowUp)

	return w, nil
}

func (w *Worker) handleLeadFollowUp(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadFollowUpPayload(task)
	if err != nil {
		return err
	}

	switch domain.FollowUpChannel(payload.Channel) {
	case domain.FollowUpWhatsApp:
		if err := w.whatsapp.SendMessage(ctx, payload.Phone, payload.Message); err != nil {
			// Returning the error lets asynq retry with backoff.
			return fmt.Errorf("send whatsapp follow-up for lead %s: %w", payload.LeadID, err)
		}
	case domain.FollowUpChat:
		// Chat check-ins surface the next time the buyer opens the widget;
		// nothing to push from here.
		w.log.Info("chat follow-up due", "leadId", payload.LeadID, "stage", payload.Stage)
	default:
		// none
	}

	return nil
}

// Run starts the worker and blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
