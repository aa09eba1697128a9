// Package sinks delivers committed lead records to external CRM and
// sales-tracking endpoints. Delivery is best effort and at most once: there
// is no retry, no queue, and no persistence of failed dispatches.
package sinks

import (
	"context"

	"meraki_leads_backend/internal/leads/domain"
)

// Sink delivers a lead record to one external endpoint.
type Sink interface {
	// Name identifies the sink for logging and test assertions.
	Name() string
	// Send posts the record. A non-nil error means the sink did not accept it.
	Send(ctx context.Context, record domain.LeadRecord) error
}
