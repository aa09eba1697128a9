// Package transport defines the request and response shapes for the lead
// qualification HTTP surface.
package transport

import "meraki_leads_backend/internal/leads/domain"

// ChatRequest is the conversational entry point body.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the consultant reply plus the classification.
type ChatResponse struct {
	Reply    string                    `json:"reply"`
	LeadMeta domain.LeadClassification `json:"lead_meta"`
	FollowUp *domain.FollowUp          `json:"follow_up,omitempty"`
}

// IntakeRequest is the structured intake body shared by the agent endpoints.
// Phone decides the mode: present means commit, absent means brain-only.
type IntakeRequest struct {
	Intent           string `json:"intent" validate:"required"`
	Location         string `json:"location"`
	BudgetRange      string `json:"budget_range"`
	UnitType         string `json:"unit_type"`
	PurchaseTimeline string `json:"purchase_timeline"`
	Phone            string `json:"phone"`
	Email            string `json:"email" validate:"omitempty,email"`
	Source           string `json:"source"`
	PageURL          string `json:"page_url" validate:"omitempty,url"`
}

// BrainResponse acknowledges a brain-only classification. It deliberately
// has no committed field.
type BrainResponse struct {
	Success           bool                  `json:"success"`
	LeadStage         domain.LeadStage      `json:"lead_stage"`
	RecommendedAction domain.FollowupAction `json:"recommended_action"`
}

// CommitResponse acknowledges a committed lead. Sink outcomes are not
// reflected here.
type CommitResponse struct {
	Success           bool                  `json:"success"`
	Committed         bool                  `json:"committed"`
	LeadStage         domain.LeadStage      `json:"lead_stage"`
	RecommendedAction domain.FollowupAction `json:"recommended_action"`
}

// Signal converts the intake request to a domain lead signal.
func (r IntakeRequest) Signal() domain.LeadSignal {
	return domain.LeadSignal{
		Intent:           r.Intent,
		Location:         r.Location,
		BudgetRange:      r.BudgetRange,
		UnitType:         r.UnitType,
		PurchaseTimeline: r.PurchaseTimeline,
		Source:           r.Source,
		PageURL:          r.PageURL,
	}
}
