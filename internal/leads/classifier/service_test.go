package classifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"meraki_leads_backend/internal/leads/domain"
	"meraki_leads_backend/platform/apperr"
	"meraki_leads_backend/platform/logger"
)

// stubChat returns a canned response and records calls.
type stubChat struct {
	response string
	err      error
	calls    int
}

func (s *stubChat) Name() string { return "stub" }

func (s *stubChat) Complete(ctx context.Context, system, user string) (string, error) {
	s.calls++
	return s.response, s.err
}

func newTestService(chat *stubChat) *Service {
	return New(chat, 5*time.Second, logger.New("development"))
}

func TestClassify_ConformingChatOutput(t *testing.T) {
	chat := &stubChat{response: `{
		"reply": "Great choice, Whitefield has strong appreciation.",
		"lead_meta": {
			"intent": "buy",
			"budget": 7500000,
			"location": "Whitefield",
			"property_type": "3BHK",
			"lead_stage": "hot",
			"recommended_action": "whatsapp"
		}
	}`}

	result, err := newTestService(chat).Classify(context.Background(), domain.LeadSignal{Message: "3BHK in Whitefield, budget 75 lakhs, need it soon"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Degraded {
		t.Fatal("conforming output must not degrade")
	}
	if result.Classification.LeadStage != domain.StageHot {
		t.Fatalf("expected hot, got %q", result.Classification.LeadStage)
	}
	if result.Classification.RecommendedAction != domain.ActionWhatsApp {
		t.Fatalf("expected whatsapp, got %q", result.Classification.RecommendedAction)
	}
	if !result.Classification.AskContact {
		t.Fatal("whatsapp action must ask for contact")
	}
	// Hot leads that ask for contact get the soft contact request appended.
	if !strings.Contains(result.Reply, "phone number") {
		t.Fatalf("expected contact request appended to reply, got %q", result.Reply)
	}
	if result.FollowUp.Type != domain.FollowUpWhatsApp {
		t.Fatalf("expected whatsapp follow-up, got %q", result.FollowUp.Type)
	}
}

func TestClassify_UnparsableOutputFallsBack(t *testing.T) {
	chat := &stubChat{response: "Sure! Here are some great properties for you..."}

	result, err := newTestService(chat).Classify(context.Background(), domain.LeadSignal{Message: "hello"})
	if err != nil {
		t.Fatalf("fallback must not surface an error, got %v", err)
	}
	if !result.Degraded {
		t.Fatal("expected degraded result")
	}
	if result.Classification.LeadStage != domain.StageWarm {
		t.Fatalf("expected warm fallback, got %q", result.Classification.LeadStage)
	}
	if result.Classification.RecommendedAction != domain.ActionEducate {
		t.Fatalf("expected educate fallback, got %q", result.Classification.RecommendedAction)
	}
	if result.Reply == "" {
		t.Fatal("conversational fallback must still produce a reply")
	}
}

func TestClassify_CollaboratorErrorFallsBack(t *testing.T) {
	chat := &stubChat{err: errors.New("connect: connection refused")}

	result, err := newTestService(chat).Classify(context.Background(), domain.LeadSignal{Message: "hello"})
	if err != nil {
		t.Fatalf("collaborator failure must not surface an error, got %v", err)
	}
	if !result.Degraded {
		t.Fatal("expected degraded result")
	}
}

func TestClassify_NonEnumeratedStageFallsBack(t *testing.T) {
	chat := &stubChat{response: `{"reply":"ok","lead_meta":{"intent":"buy","lead_stage":"scorching","recommended_action":"whatsapp"}}`}

	result, err := newTestService(chat).Classify(context.Background(), domain.LeadSignal{Message: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Degraded {
		t.Fatal("non-enumerated stage must degrade to the default")
	}
}

func TestClassify_StructuredRequiresIntent(t *testing.T) {
	chat := &stubChat{}

	_, err := newTestService(chat).Classify(context.Background(), domain.LeadSignal{Location: "Pune"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if chat.calls != 0 {
		t.Fatal("no collaborator call may happen on validation failure")
	}
}

func TestClassify_StructuredMode(t *testing.T) {
	chat := &stubChat{response: `{"lead_meta":{"intent":"invest","budget":null,"location":"Pune","property_type":"plot","lead_stage":"warm","recommended_action":"educate"}}`}

	result, err := newTestService(chat).Classify(context.Background(), domain.LeadSignal{
		Intent:      "investment plot",
		Location:    "Pune",
		BudgetRange: "30-40",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Classification.Intent != domain.IntentInvest {
		t.Fatalf("expected invest, got %q", result.Classification.Intent)
	}
	if result.Classification.AskContact {
		t.Fatal("educate action must not ask for contact")
	}
	if result.Reply != "" {
		t.Fatal("structured mode must not produce a conversational reply")
	}
}

func TestValidateChatMessage(t *testing.T) {
	err := ValidateChatMessage("   ")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err.Error() != "Message is required" {
		t.Fatalf("expected 'Message is required', got %q", err.Error())
	}
	if ValidateChatMessage("hello") != nil {
		t.Fatal("non-empty message must validate")
	}
}
