package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"meraki_leads_backend/internal/events"
	"meraki_leads_backend/internal/leads/classifier"
	"meraki_leads_backend/internal/leads/committer"
	"meraki_leads_backend/internal/sinks"
	"meraki_leads_backend/platform/logger"
	"meraki_leads_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type stubChat struct {
	response string
	err      error
	calls    int32
}

func (s *stubChat) Name() string { return "stub" }

func (s *stubChat) Complete(ctx context.Context, system, user string) (string, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.response, s.err
}

const hotChatResponse = `{
	"reply": "Lakeview in HSR fits that budget nicely.",
	"lead_meta": {
		"intent": "buy",
		"budget": 6000000,
		"location": "HSR Layout",
		"property_type": "2BHK",
		"lead_stage": "hot",
		"recommended_action": "whatsapp"
	}
}`

type testEnv struct {
	engine   *gin.Engine
	chat     *stubChat
	sinkHits *int32
}

func newTestEnv(t *testing.T, chatResponse string, sinkStatus int) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var hits int32
	sinkServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(sinkStatus)
	}))
	t.Cleanup(sinkServer.Close)

	log := logger.New("development")
	chat := &stubChat{response: chatResponse}
	dispatcher := sinks.NewDispatcherWithSinks(log, time.Second,
		sinks.NewCRMSink(sinkServer.URL, time.Second),
		sinks.NewSalesTrackerSink(sinkServer.URL, time.Second),
	)

	classifierSvc := classifier.New(chat, 5*time.Second, log)
	committerSvc := committer.New(dispatcher, events.NewInMemoryBus(log), log)
	h := New(classifierSvc, committerSvc, validator.New())

	engine := gin.New()
	engine.GET("/", h.HandleLiveness)
	engine.GET("/health", h.HandleHealth)
	engine.POST("/chat", h.HandleChat)
	engine.POST("/agent-brain", h.HandleAgentBrain)
	engine.POST("/agent-commit", h.HandleAgentCommit)
	engine.POST("/agent-intake", h.HandleAgentIntake)

	return testEnv{engine: engine, chat: chat, sinkHits: &hits}
}

func (e testEnv) post(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
	}
	return body
}

func waitForSinkHits(t *testing.T, hits *int32, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(hits) >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d sink hits, got %d", want, atomic.LoadInt32(hits))
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, hotChatResponse, http.StatusOK)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	env.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "ok" || body["service"] != serviceName {
		t.Fatalf("unexpected health body: %v", body)
	}
}

func TestChat_EmptyMessageRejectedWithoutCollaboratorCall(t *testing.T) {
	env := newTestEnv(t, hotChatResponse, http.StatusOK)

	rec := env.post(t, "/chat", `{"message":""}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Message is required" {
		t.Fatalf("unexpected error body: %v", body)
	}
	if atomic.LoadInt32(&env.chat.calls) != 0 {
		t.Fatal("no collaborator call may happen for an empty message")
	}
}

func TestChat_ReturnsReplyAndLeadMeta(t *testing.T) {
	env := newTestEnv(t, hotChatResponse, http.StatusOK)

	rec := env.post(t, "/chat", `{"message":"2BHK in HSR around 60 lakhs, ready to visit this week"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["reply"] == "" {
		t.Fatal("expected a reply")
	}
	leadMeta, ok := body["lead_meta"].(map[string]any)
	if !ok {
		t.Fatalf("expected lead_meta object, got %v", body["lead_meta"])
	}
	if leadMeta["lead_stage"] != "hot" || leadMeta["recommended_action"] != "whatsapp" {
		t.Fatalf("unexpected lead_meta: %v", leadMeta)
	}
	followUp, ok := body["follow_up"].(map[string]any)
	if !ok {
		t.Fatalf("expected follow_up object, got %v", body["follow_up"])
	}
	if followUp["type"] != "whatsapp" {
		t.Fatalf("unexpected follow_up: %v", followUp)
	}
}

func TestChat_CollaboratorGarbageStillAnswers(t *testing.T) {
	env := newTestEnv(t, "certainly! here is what I found", http.StatusOK)

	rec := env.post(t, "/chat", `{"message":"hello"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 under degraded classification, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	leadMeta := body["lead_meta"].(map[string]any)
	if leadMeta["lead_stage"] != "warm" || leadMeta["recommended_action"] != "educate" {
		t.Fatalf("expected warm/educate fallback, got %v", leadMeta)
	}
}

func TestAgentIntake_BrainOnlyWithoutPhone(t *testing.T) {
	env := newTestEnv(t, hotChatResponse, http.StatusOK)

	rec := env.post(t, "/agent-intake", `{"intent":"buy","location":"HSR","budget_range":"50-80"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Fatalf("expected success, got %v", body)
	}
	if _, present := body["committed"]; present {
		t.Fatal("brain-only response must not contain a committed field")
	}

	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(env.sinkHits) != 0 {
		t.Fatal("brain-only mode must not contact any sink")
	}
}

func TestAgentIntake_CommitWithPhone(t *testing.T) {
	env := newTestEnv(t, hotChatResponse, http.StatusOK)

	rec := env.post(t, "/agent-intake", `{"intent":"buy","budget_range":"50-80","phone":"9876543210"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true || body["committed"] != true {
		t.Fatalf("unexpected commit response: %v", body)
	}
	waitForSinkHits(t, env.sinkHits, 2)
}

func TestAgentIntake_InvalidPhoneRejected(t *testing.T) {
	env := newTestEnv(t, hotChatResponse, http.StatusOK)

	rec := env.post(t, "/agent-intake", `{"intent":"buy","phone":"1234567890"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(env.sinkHits) != 0 {
		t.Fatal("invalid phone must not reach any sink")
	}
}

func TestAgentCommit_SinkFailureDoesNotChangeResponse(t *testing.T) {
	env := newTestEnv(t, hotChatResponse, http.StatusInternalServerError)

	rec := env.post(t, "/agent-commit", `{"intent":"buy","phone":"9876543210"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 despite sink failure, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != true || body["committed"] != true {
		t.Fatalf("unexpected commit response: %v", body)
	}
	waitForSinkHits(t, env.sinkHits, 2)
}

func TestAgentBrain_NeverCommits(t *testing.T) {
	env := newTestEnv(t, hotChatResponse, http.StatusOK)

	rec := env.post(t, "/agent-brain", `{"intent":"buy","phone":"9876543210"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if _, present := body["committed"]; present {
		t.Fatal("agent-brain must never commit")
	}

	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(env.sinkHits) != 0 {
		t.Fatal("agent-brain must not contact any sink")
	}
}

func TestAgentIntake_MissingIntentRejected(t *testing.T) {
	env := newTestEnv(t, hotChatResponse, http.StatusOK)

	rec := env.post(t, "/agent-intake", `{"location":"HSR"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
