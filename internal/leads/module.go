// Package leads provides the lead qualification bounded context module.
// This file defines the module that encapsulates setup and route registration.
package leads

import (
	"meraki_leads_backend/internal/events"
	apphttp "meraki_leads_backend/internal/http"
	"meraki_leads_backend/internal/leads/classifier"
	"meraki_leads_backend/internal/leads/committer"
	"meraki_leads_backend/internal/leads/handler"
	"meraki_leads_backend/internal/sinks"
	"meraki_leads_backend/platform/ai"
	"meraki_leads_backend/platform/config"
	"meraki_leads_backend/platform/logger"
	"meraki_leads_backend/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler    *handler.Handler
	classifier *classifier.Service
	committer  *committer.Service
	dispatcher *sinks.Dispatcher
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(chat ai.Chat, cfg *config.Config, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	dispatcher := sinks.NewDispatcher(cfg, log)
	classifierSvc := classifier.New(chat, cfg.GetClassifyTimeout(), log)
	committerSvc := committer.New(dispatcher, eventBus, log)

	return &Module{
		handler:    handler.New(classifierSvc, committerSvc, val),
		classifier: classifierSvc,
		committer:  committerSvc,
		dispatcher: dispatcher,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Engine.GET("/", m.handler.HandleLiveness)
	ctx.Engine.GET("/health", m.handler.HandleHealth)

	ctx.Engine.POST("/chat", ctx.ChatRateLimiter.RateLimit(), m.handler.HandleChat)
	ctx.Engine.POST("/agent-brain", m.handler.HandleAgentBrain)
	ctx.Engine.POST("/agent-commit", m.handler.HandleAgentCommit)
	ctx.Engine.POST("/agent-intake", m.handler.HandleAgentIntake)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
