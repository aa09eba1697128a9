// Package handler exposes the lead qualification HTTP endpoints.
package handler

import (
	"net/http"
	"time"

	"meraki_leads_backend/internal/leads/classifier"
	"meraki_leads_backend/internal/leads/committer"
	"meraki_leads_backend/internal/leads/domain"
	"meraki_leads_backend/internal/leads/transport"
	"meraki_leads_backend/platform/httpkit"
	"meraki_leads_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const serviceName = "meraki-agentic-ai"

const (
	msgUnexpected       = "internal server error"
	msgValidationFailed = "validation failed"
)

// Handler serves the chat and agent intake endpoints.
type Handler struct {
	classifier *classifier.Service
	committer  *committer.Service
	val        *validator.Validator
}

// New creates a handler.
func New(classifierSvc *classifier.Service, committerSvc *committer.Service, val *validator.Validator) *Handler {
	return &Handler{classifier: classifierSvc, committer: committerSvc, val: val}
}

// HandleLiveness answers the root liveness probe.
func (h *Handler) HandleLiveness(c *gin.Context) {
	c.String(http.StatusOK, "Meraki AI - Agentic Real Estate Assistant is LIVE")
}

// HandleHealth answers the health probe.
func (h *Handler) HandleHealth(c *gin.Context) {
	httpkit.OK(c, gin.H{
		"status":  "ok",
		"service": serviceName,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleChat classifies a conversational message and replies in kind.
func (h *Handler) HandleChat(c *gin.Context) {
	var req transport.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Malformed body is an unexpected error, not a validation failure.
		httpkit.Error(c, http.StatusInternalServerError, msgUnexpected)
		return
	}
	if err := classifier.ValidateChatMessage(req.Message); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	result, err := h.classifier.Classify(c.Request.Context(), domain.LeadSignal{Message: req.Message})
	if httpkit.HandleError(c, err) {
		return
	}

	followUp := result.FollowUp
	httpkit.OK(c, transport.ChatResponse{
		Reply:    result.Reply,
		LeadMeta: result.Classification,
		FollowUp: &followUp,
	})
}

// HandleAgentBrain classifies structured intake without committing,
// regardless of whether contact details were sent.
func (h *Handler) HandleAgentBrain(c *gin.Context) {
	req, ok := h.bindIntake(c)
	if !ok {
		return
	}

	result, err := h.classifier.Classify(c.Request.Context(), req.Signal())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.BrainResponse{
		Success:           true,
		LeadStage:         result.Classification.LeadStage,
		RecommendedAction: result.Classification.RecommendedAction,
	})
}

// HandleAgentCommit classifies structured intake and commits the lead.
// The phone field is mandatory here.
func (h *Handler) HandleAgentCommit(c *gin.Context) {
	req, ok := h.bindIntake(c)
	if !ok {
		return
	}

	result, err := h.classifier.Classify(c.Request.Context(), req.Signal())
	if httpkit.HandleError(c, err) {
		return
	}

	h.commit(c, req, result)
}

// HandleAgentIntake is the combined endpoint: commit mode if and only if a
// phone number is present, brain-only otherwise. Anonymous signals never
// reach a sink.
func (h *Handler) HandleAgentIntake(c *gin.Context) {
	req, ok := h.bindIntake(c)
	if !ok {
		return
	}

	result, err := h.classifier.Classify(c.Request.Context(), req.Signal())
	if httpkit.HandleError(c, err) {
		return
	}

	if req.Phone == "" {
		httpkit.OK(c, transport.BrainResponse{
			Success:           true,
			LeadStage:         result.Classification.LeadStage,
			RecommendedAction: result.Classification.RecommendedAction,
		})
		return
	}

	h.commit(c, req, result)
}

func (h *Handler) commit(c *gin.Context, req transport.IntakeRequest, result classifier.Result) {
	record, err := h.committer.Commit(c.Request.Context(), committer.CommitInput{
		Classification:   result.Classification,
		Phone:            req.Phone,
		Email:            req.Email,
		BudgetRange:      req.BudgetRange,
		UnitType:         req.UnitType,
		PurchaseTimeline: req.PurchaseTimeline,
		Source:           req.Source,
		PageURL:          req.PageURL,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.CommitResponse{
		Success:           true,
		Committed:         true,
		LeadStage:         record.LeadStage,
		RecommendedAction: record.RecommendedAction,
	})
}

func (h *Handler) bindIntake(c *gin.Context) (transport.IntakeRequest, bool) {
	var req transport.IntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusInternalServerError, msgUnexpected)
		return req, false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed)
		return req, false
	}
	return req, true
}
