// Package classifier turns buyer signals into normalized lead
// classifications using an LLM collaborator, degrading to a fixed default
// whenever the collaborator misbehaves.
package classifier

import (
	"context"
	"strings"
	"time"

	"meraki_leads_backend/internal/leads/domain"
	"meraki_leads_backend/platform/ai"
	"meraki_leads_backend/platform/apperr"
	"meraki_leads_backend/platform/logger"
)

// Static reply used when the collaborator fails outright in conversational mode.
const fallbackReply = "Thanks for reaching out! Tell me a bit about the location and budget you have in mind, and I will line up a few options for you."

// Appended to hot-lead replies when the recommended action wants contact details.
const contactRequestSentence = " If you share your phone number, I can have our senior consultant send you a curated shortlist."

// Result is the classifier's full output for one signal.
type Result struct {
	Reply          string
	Classification domain.LeadClassification
	FollowUp       domain.FollowUp
	// Degraded reports that the fixed default was used instead of the
	// collaborator's output. Never surfaced to the caller as an error.
	Degraded bool
}

// Service classifies lead signals.
type Service struct {
	chat    ai.Chat
	timeout time.Duration
	log     *logger.Logger
}

// New creates a classifier backed by the given chat collaborator.
func New(chat ai.Chat, timeout time.Duration, log *logger.Logger) *Service {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Service{chat: chat, timeout: timeout, log: log}
}

// Classify validates the signal, consults the collaborator, and returns a
// well-formed result. Only validation can fail; collaborator failures
// degrade to the default classification.
func (s *Service) Classify(ctx context.Context, signal domain.LeadSignal) (Result, error) {
	var system, user string
	if signal.Conversational() {
		system = chatSystemPrompt
		user = buildChatContext(signal.Message)
	} else {
		if strings.TrimSpace(signal.Intent) == "" {
			return Result{}, apperr.Validation("Intent is required")
		}
		system = intakeSystemPrompt
		user = buildIntakeContext(signal)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.chat.Complete(callCtx, system, user)
	if err != nil {
		s.log.ClassificationDegraded(s.chat.Name(), err)
		return s.degraded(signal), nil
	}

	parsed, ok := parseOrDefault(raw)
	if !ok {
		s.log.ClassificationDegraded(s.chat.Name(), errNonConforming)
		return s.degraded(signal), nil
	}

	result := Result{
		Reply:          parsed.reply,
		Classification: parsed.classification,
		FollowUp:       domain.FollowUpFor(parsed.classification.LeadStage),
	}
	if signal.Conversational() {
		if result.Reply == "" {
			result.Reply = fallbackReply
		}
		result.Reply = augmentReply(result.Reply, result.Classification)
	}
	return result, nil
}

// ValidateChatMessage guards the conversational entry point. No collaborator
// call happens for an empty message.
func ValidateChatMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return apperr.Validation("Message is required")
	}
	return nil
}

func (s *Service) degraded(signal domain.LeadSignal) Result {
	classification := domain.DefaultClassification()
	result := Result{
		Classification: classification,
		FollowUp:       domain.FollowUpFor(classification.LeadStage),
		Degraded:       true,
	}
	if signal.Conversational() {
		result.Reply = fallbackReply
	}
	return result
}

// augmentReply appends the soft contact request for hot leads whose action
// asks for contact details.
func augmentReply(reply string, c domain.LeadClassification) string {
	if c.LeadStage == domain.StageHot && c.AskContact {
		return reply + contactRequestSentence
	}
	return reply
}
