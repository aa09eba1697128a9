package classifier

import (
	"encoding/json"
	"errors"
	"strings"

	"meraki_leads_backend/internal/leads/domain"
)

var errNonConforming = errors.New("collaborator output does not conform to the classification schema")

// llmOutput mirrors the JSON shape the system prompts demand.
type llmOutput struct {
	Reply    string      `json:"reply"`
	LeadMeta llmLeadMeta `json:"lead_meta"`
}

type llmLeadMeta struct {
	Intent            string   `json:"intent"`
	Budget            *float64 `json:"budget"`
	Location          *string  `json:"location"`
	PropertyType      string   `json:"property_type"`
	LeadStage         string   `json:"lead_stage"`
	RecommendedAction string   `json:"recommended_action"`
}

type parsedOutput struct {
	reply          string
	classification domain.LeadClassification
}

// parseOrDefault is the single parse path for collaborator responses.
// Conforming output yields a classification; anything else reports !ok and
// the caller substitutes the fixed default. Stage and action must both
// conform, since they are only meaningful as a pair. Intent and property
// type are parsed leniently down to "unknown".
func parseOrDefault(raw string) (parsedOutput, bool) {
	var out llmOutput
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &out); err != nil {
		return parsedOutput{}, false
	}

	stage, ok := domain.ParseStage(out.LeadMeta.LeadStage)
	if !ok {
		return parsedOutput{}, false
	}
	action, ok := domain.ParseAction(out.LeadMeta.RecommendedAction)
	if !ok {
		return parsedOutput{}, false
	}

	classification := domain.LeadClassification{
		Intent:            domain.ParseIntent(out.LeadMeta.Intent),
		Location:          normalizeLocation(out.LeadMeta.Location),
		PropertyType:      domain.ParsePropertyType(out.LeadMeta.PropertyType),
		LeadStage:         stage,
		RecommendedAction: action,
		AskContact:        action.AsksContact(),
	}
	if out.LeadMeta.Budget != nil && *out.LeadMeta.Budget >= 0 {
		budget := int64(*out.LeadMeta.Budget)
		classification.Budget = &budget
	}

	return parsedOutput{reply: out.Reply, classification: classification}, true
}

// stripCodeFence unwraps markdown-fenced JSON, which chat models emit even
// when told not to.
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func normalizeLocation(loc *string) *string {
	if loc == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*loc)
	if trimmed == "" || strings.EqualFold(trimmed, "null") {
		return nil
	}
	return &trimmed
}
