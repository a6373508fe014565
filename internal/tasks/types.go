package tasks

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeTeamInvitation = "notification:team_invitation"
	TypeDemoReset      = "demo:reset"
)

// TeamInvitationPayload identifies the invitation to deliver. The worker
// reloads it so a cancelled or accepted invitation is not announced.
type TeamInvitationPayload struct {
	InvitationID uuid.UUID `json:"invitation_id"`
}

func NewTeamInvitationTask(payload TeamInvitationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeTeamInvitation, data, asynq.MaxRetry(5)), nil
}

// DemoResetPayload is empty - the reset always targets the configured demo user
type DemoResetPayload struct{}

func NewDemoResetTask() *asynq.Task {
	return asynq.NewTask(TypeDemoReset, nil, asynq.MaxRetry(1))
}
