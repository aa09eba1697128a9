// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"meraki_leads_backend/internal/leads/domain"
	"meraki_leads_backend/platform/events"
	"meraki_leads_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCommitted is published after a lead record passes validation and is
// handed to the sink dispatcher. Subscribers must not assume the sinks
// accepted it.
type LeadCommitted struct {
	BaseEvent
	LeadID    uuid.UUID        `json:"leadId"`
	Phone     string           `json:"phone"`
	LeadStage domain.LeadStage `json:"leadStage"`
	FollowUp  domain.FollowUp  `json:"followUp"`
}

func (e LeadCommitted) EventName() string { return "leads.lead.committed" }
