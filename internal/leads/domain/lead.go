// Package domain holds the lead qualification types: buyer signals,
// classifications, and committed lead records.
package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Intent is the buyer's purchase intent.
type Intent string

const (
	IntentBuy     Intent = "buy"
	IntentInvest  Intent = "invest"
	IntentRent    Intent = "rent"
	IntentBrowse  Intent = "browse"
	IntentUnknown Intent = "unknown"
)

// ParseIntent maps free text onto a known intent, defaulting to unknown.
func ParseIntent(s string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentBuy:
		return IntentBuy
	case IntentInvest:
		return IntentInvest
	case IntentRent:
		return IntentRent
	case IntentBrowse:
		return IntentBrowse
	default:
		return IntentUnknown
	}
}

// PropertyType is the unit type the buyer is interested in.
type PropertyType string

const (
	Property2BHK    PropertyType = "2BHK"
	Property3BHK    PropertyType = "3BHK"
	PropertyVilla   PropertyType = "villa"
	PropertyPlot    PropertyType = "plot"
	PropertyUnknown PropertyType = "unknown"
)

// ParsePropertyType maps free text onto a known property type, defaulting to unknown.
func ParsePropertyType(s string) PropertyType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "2bhk":
		return Property2BHK
	case "3bhk":
		return Property3BHK
	case "villa":
		return PropertyVilla
	case "plot":
		return PropertyPlot
	default:
		return PropertyUnknown
	}
}

// LeadStage is the sales urgency classification. Ordinal: hot > warm > cold.
type LeadStage string

const (
	StageCold LeadStage = "cold"
	StageWarm LeadStage = "warm"
	StageHot  LeadStage = "hot"
)

// Rank returns the stage's sales urgency for ordering (hot highest).
func (s LeadStage) Rank() int {
	switch s {
	case StageHot:
		return 2
	case StageWarm:
		return 1
	default:
		return 0
	}
}

// ParseStage maps free text onto a known stage. The bool reports conformance.
func ParseStage(s string) (LeadStage, bool) {
	switch LeadStage(strings.ToLower(strings.TrimSpace(s))) {
	case StageCold:
		return StageCold, true
	case StageWarm:
		return StageWarm, true
	case StageHot:
		return StageHot, true
	default:
		return "", false
	}
}

// FollowupAction is the recommended next touch for a classified lead.
type FollowupAction string

const (
	ActionWhatsApp FollowupAction = "whatsapp"
	ActionCall     FollowupAction = "call"
	ActionEducate  FollowupAction = "educate"
)

// ParseAction maps free text onto a known action. The bool reports conformance.
func ParseAction(s string) (FollowupAction, bool) {
	switch FollowupAction(strings.ToLower(strings.TrimSpace(s))) {
	case ActionWhatsApp:
		return ActionWhatsApp, true
	case ActionCall:
		return ActionCall, true
	case ActionEducate:
		return ActionEducate, true
	default:
		return "", false
	}
}

// AsksContact reports whether this action requires contact details from the buyer.
func (a FollowupAction) AsksContact() bool {
	return a != ActionEducate
}

// DefaultSource labels leads that arrive without an explicit source.
const DefaultSource = "AI_Property_Match_Engine"

// LeadSignal is the raw input to classification: either a conversational
// message or structured intake fields. Signals are ephemeral; nothing
// identifies one request to the next.
type LeadSignal struct {
	Message          string
	Intent           string
	Location         string
	BudgetRange      string
	UnitType         string
	PurchaseTimeline string
	Source           string
	PageURL          string
}

// Conversational reports whether the signal is free-form chat rather than
// structured intake.
func (s LeadSignal) Conversational() bool {
	return s.Message != ""
}

// LeadClassification is the normalized output of one classification step.
// LeadStage and RecommendedAction are always produced together; deriving
// them separately could pair a hot stage with an educate action.
type LeadClassification struct {
	Intent            Intent         `json:"intent"`
	Budget            *int64         `json:"budget"`
	Location          *string        `json:"location"`
	PropertyType      PropertyType   `json:"property_type"`
	LeadStage         LeadStage      `json:"lead_stage"`
	RecommendedAction FollowupAction `json:"recommended_action"`
	AskContact        bool           `json:"ask_contact"`
}

// DefaultClassification is the fixed fallback used when the collaborator is
// unreachable or returns non-conforming output. The educate action keeps
// AskContact false, so a degraded run never nags the buyer for a number.
func DefaultClassification() LeadClassification {
	return LeadClassification{
		Intent:            IntentUnknown,
		PropertyType:      PropertyUnknown,
		LeadStage:         StageWarm,
		RecommendedAction: ActionEducate,
		AskContact:        false,
	}
}

// LeadRecord is a classification joined with contact details, ready for
// dispatch to external sinks. Records are built only in commit mode and are
// never persisted locally.
type LeadRecord struct {
	ID uuid.UUID `json:"id"`
	LeadClassification
	Phone            string    `json:"phone"`
	Email            string    `json:"email,omitempty"`
	PurchaseTimeline string    `json:"purchase_timeline"`
	Source           string    `json:"source"`
	PageURL          string    `json:"page_url"`
	CreatedAt        time.Time `json:"created_at"`
}

// Lakh is the Indian numbering unit budgets are quoted in.
const Lakh = 100_000

// ParseBudgetRange converts a "<low>-<high>" budget range in lakhs to an
// absolute amount, taking the lower bound. "50-80" yields 5000000.
func ParseBudgetRange(s string) (int64, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, false
	}

	low := trimmed
	if idx := strings.Index(trimmed, "-"); idx >= 0 {
		low = strings.TrimSpace(trimmed[:idx])
	}

	value, err := strconv.ParseInt(low, 10, 64)
	if err != nil || value < 0 {
		return 0, false
	}
	return value * Lakh, true
}

// NormalizeUnitType upper-cases intake unit types ("3bhk" becomes "3BHK").
func NormalizeUnitType(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
