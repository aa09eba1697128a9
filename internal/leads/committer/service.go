// Package committer builds lead records from classifications plus contact
// details and forwards them to external sinks, best effort.
package committer

import (
	"context"
	"strings"
	"sync"
	"time"

	"meraki_leads_backend/internal/events"
	"meraki_leads_backend/internal/leads/domain"
	"meraki_leads_backend/internal/sinks"
	"meraki_leads_backend/platform/apperr"
	"meraki_leads_backend/platform/logger"
	"meraki_leads_backend/platform/phone"

	"github.com/google/uuid"
)

const msgInvalidPhone = "Phone must be a valid 10-digit Indian mobile number"

// dedupWindow is how long a phone number suppresses re-dispatch. Repeated UI
// retries inside the window would otherwise create duplicate CRM entries.
const dedupWindow = 60 * time.Second

// CommitInput carries a classification plus the raw contact and intake
// fields needed to build a lead record.
type CommitInput struct {
	Classification   domain.LeadClassification
	Phone            string
	Email            string
	BudgetRange      string
	UnitType         string
	PurchaseTimeline string
	Source           string
	PageURL          string
}

// Service normalizes and commits qualified leads.
type Service struct {
	dispatcher *sinks.Dispatcher
	bus        events.Bus
	log        *logger.Logger
	now        func() time.Time

	mu     sync.Mutex
	recent map[string]time.Time
}

// New creates a committer.
func New(dispatcher *sinks.Dispatcher, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		dispatcher: dispatcher,
		bus:        bus,
		log:        log,
		now:        time.Now,
		recent:     make(map[string]time.Time),
	}
}

// Commit validates the phone, builds the record, and hands it to the sink
// dispatcher without waiting for sink results. The returned record is the
// caller's acknowledgement; sink outcomes never change it.
func (s *Service) Commit(ctx context.Context, input CommitInput) (domain.LeadRecord, error) {
	if !phone.IsValidMobile(input.Phone) {
		return domain.LeadRecord{}, apperr.Validation(msgInvalidPhone)
	}

	record := s.buildRecord(input)

	if s.isRecentDuplicate(record.Phone) {
		// Better a suppressed duplicate than double CRM rows; the caller
		// still gets a committed acknowledgement.
		s.log.Info("duplicate commit suppressed", "phone", record.Phone)
		return record, nil
	}

	s.dispatcher.DispatchAll(ctx, record)

	s.bus.Publish(ctx, events.LeadCommitted{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    record.ID,
		Phone:     record.Phone,
		LeadStage: record.LeadStage,
		FollowUp:  domain.FollowUpFor(record.LeadStage),
	})

	return record, nil
}

func (s *Service) buildRecord(input CommitInput) domain.LeadRecord {
	classification := input.Classification

	if classification.Budget == nil {
		if budget, ok := domain.ParseBudgetRange(input.BudgetRange); ok {
			classification.Budget = &budget
		}
	}
	if classification.PropertyType == domain.PropertyUnknown && input.UnitType != "" {
		classification.PropertyType = domain.ParsePropertyType(domain.NormalizeUnitType(input.UnitType))
	}

	source := strings.TrimSpace(input.Source)
	if source == "" {
		source = domain.DefaultSource
	}

	timeline := strings.TrimSpace(input.PurchaseTimeline)
	if timeline == "" {
		timeline = "unknown"
	}

	return domain.LeadRecord{
		ID:                 uuid.New(),
		LeadClassification: classification,
		Phone:              strings.TrimSpace(input.Phone),
		Email:              strings.TrimSpace(input.Email),
		PurchaseTimeline:   timeline,
		Source:             source,
		PageURL:            strings.TrimSpace(input.PageURL),
		CreatedAt:          s.now().UTC(),
	}
}

// isRecentDuplicate records the commit time for the phone and reports
// whether another commit for it landed inside the dedup window. In-process
// only: a restart forgets the window, matching the best-effort contract.
func (s *Service) isRecentDuplicate(phoneNumber string) bool {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	last, seen := s.recent[phoneNumber]
	s.recent[phoneNumber] = now

	// Drop stale entries so the map does not grow with traffic.
	for key, at := range s.recent {
		if now.Sub(at) > dedupWindow && key != phoneNumber {
			delete(s.recent, key)
		}
	}

	return seen && now.Sub(last) <= dedupWindow
}
