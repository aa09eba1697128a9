package domain

import "time"

// FollowUpChannel is the delivery channel for a scheduled follow-up.
type FollowUpChannel string

const (
	FollowUpWhatsApp FollowUpChannel = "whatsapp"
	FollowUpChat     FollowUpChannel = "chat"
	FollowUpNone     FollowUpChannel = "none"
)

// FollowUp describes the scheduled touch for a lead stage.
type FollowUp struct {
	Type    FollowUpChannel `json:"type"`
	Delay   string          `json:"delay"`
	Message string          `json:"message"`
}

const (
	hotFollowUpDelay  = 24 * time.Hour
	warmFollowUpDelay = 48 * time.Hour

	hotFollowUpMessage  = "I have shortlisted a few properties that match what you are looking for. Want me to send them over on WhatsApp?"
	warmFollowUpMessage = "Just checking in - still exploring properties? Happy to help whenever you are ready."
)

// FollowUpFor returns the fixed follow-up descriptor for a stage:
// hot gets a WhatsApp shortlist nudge after a day, warm a light chat
// check-in after two, cold nothing.
func FollowUpFor(stage LeadStage) FollowUp {
	switch stage {
	case StageHot:
		return FollowUp{Type: FollowUpWhatsApp, Delay: hotFollowUpDelay.String(), Message: hotFollowUpMessage}
	case StageWarm:
		return FollowUp{Type: FollowUpChat, Delay: warmFollowUpDelay.String(), Message: warmFollowUpMessage}
	default:
		return FollowUp{Type: FollowUpNone, Delay: "", Message: ""}
	}
}

// DelayDuration parses the follow-up delay for scheduling. Zero means no
// follow-up should be scheduled.
func (f FollowUp) DelayDuration() time.Duration {
	if f.Delay == "" {
		return 0
	}
	d, err := time.ParseDuration(f.Delay)
	if err != nil {
		return 0
	}
	return d
}
