package sinks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"meraki_leads_backend/internal/leads/domain"
)

// SalesTrackerSink posts a flat contact row to the sales-tracking service.
// Classification detail travels in a free-text notes block.
type SalesTrackerSink struct {
	url  string
	http *http.Client
}

type salesTrackerPayload struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Email  string `json:"email,omitempty"`
	Source string `json:"source"`
	Notes  string `json:"notes"`
}

// NewSalesTrackerSink creates the sales-tracker sink. Returns nil when no URL
// is configured, which disables the sink.
func NewSalesTrackerSink(url string, timeout time.Duration) *SalesTrackerSink {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SalesTrackerSink{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

// Name identifies the sink.
func (s *SalesTrackerSink) Name() string { return "sales-tracker" }

// Send posts the notes-style payload built from the record.
func (s *SalesTrackerSink) Send(ctx context.Context, record domain.LeadRecord) error {
	body, err := json.Marshal(buildSalesTrackerPayload(record))
	if err != nil {
		return fmt.Errorf("marshal sales-tracker payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("sales-tracker request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sales-tracker sink returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	return nil
}

func buildSalesTrackerPayload(record domain.LeadRecord) salesTrackerPayload {
	var notes strings.Builder
	fmt.Fprintf(&notes, "Stage: %s\n", record.LeadStage)
	fmt.Fprintf(&notes, "Intent: %s\n", record.Intent)
	fmt.Fprintf(&notes, "Property: %s\n", record.PropertyType)
	if record.Budget != nil {
		fmt.Fprintf(&notes, "Budget: %d\n", *record.Budget)
	}
	if record.Location != nil {
		fmt.Fprintf(&notes, "Location: %s\n", *record.Location)
	}
	if record.PurchaseTimeline != "" {
		fmt.Fprintf(&notes, "Timeline: %s\n", record.PurchaseTimeline)
	}
	fmt.Fprintf(&notes, "Next action: %s", record.RecommendedAction)

	return salesTrackerPayload{
		Name:   "Website Lead",
		Phone:  record.Phone,
		Email:  record.Email,
		Source: record.Source,
		Notes:  notes.String(),
	}
}
