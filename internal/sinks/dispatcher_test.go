package sinks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"meraki_leads_backend/internal/leads/domain"
	"meraki_leads_backend/platform/logger"
)

func testRecord() domain.LeadRecord {
	budget := int64(5_000_000)
	location := "Whitefield"
	return domain.LeadRecord{
		LeadClassification: domain.LeadClassification{
			Intent:            domain.IntentBuy,
			Budget:            &budget,
			Location:          &location,
			PropertyType:      domain.Property3BHK,
			LeadStage:         domain.StageHot,
			RecommendedAction: domain.ActionWhatsApp,
			AskContact:        true,
		},
		Phone:            "9876543210",
		PurchaseTimeline: "immediate",
		Source:           domain.DefaultSource,
		CreatedAt:        time.Now().UTC(),
	}
}

func TestDisabledSinksAreNil(t *testing.T) {
	if NewCRMSink("", time.Second) != nil {
		t.Fatal("empty CRM URL must disable the sink")
	}
	if NewSalesTrackerSink("  ", time.Second) != nil {
		t.Fatal("blank sales-tracker URL must disable the sink")
	}
}

func TestCRMSink_PostsRecord(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := NewCRMSink(server.URL, time.Second)
	if err := sink.Send(context.Background(), testRecord()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected one request, got %d", hits)
	}
}

func TestCRMSink_Non2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	sink := NewCRMSink(server.URL, time.Second)
	if err := sink.Send(context.Background(), testRecord()); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestDispatcher_SwallowsFailuresAndRecordsAttempts(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer failing.Close()

	dispatcher := NewDispatcherWithSinks(logger.New("development"), time.Second,
		NewCRMSink(failing.URL, time.Second),
		NewSalesTrackerSink(ok.URL, time.Second),
	)

	dispatcher.DispatchAllSync(context.Background(), testRecord())

	attempts := dispatcher.Attempts()
	if len(attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(attempts))
	}

	outcomes := map[string]bool{}
	for _, attempt := range attempts {
		outcomes[attempt.Sink] = attempt.OK()
	}
	if outcomes["crm"] {
		t.Fatal("crm attempt should have failed")
	}
	if !outcomes["sales-tracker"] {
		t.Fatal("sales-tracker attempt should have succeeded")
	}
}

func TestSalesTrackerPayload_NotesBlock(t *testing.T) {
	payload := buildSalesTrackerPayload(testRecord())
	if payload.Phone != "9876543210" {
		t.Fatalf("unexpected phone %q", payload.Phone)
	}
	if payload.Source != domain.DefaultSource {
		t.Fatalf("unexpected source %q", payload.Source)
	}
	for _, want := range []string{"Stage: hot", "Intent: buy", "Budget: 5000000", "Location: Whitefield", "Next action: whatsapp"} {
		if !strings.Contains(payload.Notes, want) {
			t.Fatalf("notes missing %q:\n%s", want, payload.Notes)
		}
	}
}
