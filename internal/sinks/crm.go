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

// CRMSink posts the full lead record to the CRM/spreadsheet webhook.
type CRMSink struct {
	url  string
	http *http.Client
}

// NewCRMSink creates the CRM sink. Returns nil when no URL is configured,
// which disables the sink.
func NewCRMSink(url string, timeout time.Duration) *CRMSink {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CRMSink{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

// Name identifies the sink.
func (s *CRMSink) Name() string { return "crm" }

// Send posts the lead record as JSON.
func (s *CRMSink) Send(ctx context.Context, record domain.LeadRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal crm payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("crm request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("crm sink returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	return nil
}
