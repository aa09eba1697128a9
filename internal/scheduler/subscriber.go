package scheduler

import (
	"context"
	"fmt"

	"meraki_leads_backend/internal/events"
	"meraki_leads_backend/internal/leads/domain"
	"meraki_leads_backend/platform/logger"
)

// Subscriber turns LeadCommitted events into scheduled follow-up tasks.
type Subscriber struct {
	scheduler FollowUpScheduler
	log       *logger.Logger
}

// NewSubscriber creates the event subscriber.
func NewSubscriber(scheduler FollowUpScheduler, log *logger.Logger) *Subscriber {
	return &Subscriber{scheduler: scheduler, log: log}
}

// RegisterHandlers subscribes to the events this module reacts to.
func (s *Subscriber) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadCommitted{}.EventName(), events.HandlerFunc(s.handleLeadCommitted))
}

func (s *Subscriber) handleLeadCommitted(ctx context.Context, event events.Event) error {
	committed, ok := event.(events.LeadCommitted)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	followUp := committed.FollowUp
	delay := followUp.DelayDuration()
	if followUp.Type == domain.FollowUpNone || delay <= 0 {
		return nil
	}

	payload := LeadFollowUpPayload{
		LeadID:  committed.LeadID.String(),
		Phone:   committed.Phone,
		Stage:   string(committed.LeadStage),
		Channel: string(followUp.Type),
		Message: followUp.Message,
	}

	if err := s.scheduler.ScheduleLeadFollowUp(ctx, payload, delay); err != nil {
		return fmt.Errorf("schedule follow-up for lead %s: %w", committed.LeadID, err)
	}

	s.log.Info("follow-up scheduled",
		"leadId", committed.LeadID,
		"channel", followUp.Type,
		"delay", followUp.Delay,
	)
	return nil
}
