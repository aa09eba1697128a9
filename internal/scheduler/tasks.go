package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadFollowUp = "leads.followup"

// LeadFollowUpPayload is the scheduled follow-up for a committed lead.
type LeadFollowUpPayload struct {
	LeadID  string `json:"leadId"`
	Phone   string `json:"phone"`
	Stage   string `json:"stage"`
	Channel string `json:"channel"`
	Message string `json:"message"`
}

func NewLeadFollowUpTask(payload LeadFollowUpPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadFollowUp, data), nil
}

func ParseLeadFollowUpPayload(task *asynq.Task) (LeadFollowUpPayload, error) {
	var payload LeadFollowUpPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadFollowUpPayload{}, err
	}
	return payload, nil
}
