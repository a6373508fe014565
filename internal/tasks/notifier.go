package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/hugh/teamhub/internal/database/models"
	"github.com/hugh/teamhub/internal/notifications"
	"github.com/hugh/teamhub/internal/teams"
	"github.com/hugh/teamhub/pkg/queue"
)

// Enqueuer is the part of *asynq.Client the notifier needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// InvitationNotifier hands issued invitations to the worker. Without a queue
// client the notice is written inline.
type InvitationNotifier struct {
	client        Enqueuer
	notifications *notifications.Service
	logger        *slog.Logger
}

var _ teams.Notifier = (*InvitationNotifier)(nil)

func NewInvitationNotifier(client Enqueuer, notes *notifications.Service, logger *slog.Logger) *InvitationNotifier {
	return &InvitationNotifier{client: client, notifications: notes, logger: logger}
}

func (n *InvitationNotifier) InvitationIssued(ctx context.Context, inv *models.Invitation) error {
	if n.client == nil {
		_, err := n.notifications.InvitationReceived(ctx, inv.PublicID)
		return err
	}

	task, err := NewTeamInvitationTask(TeamInvitationPayload{InvitationID: inv.PublicID})
	if err != nil {
		return fmt.Errorf("creating task: %w", err)
	}

	info, err := n.client.EnqueueContext(ctx, task, asynq.Queue(queue.QueueDefault))
	if err != nil {
		return fmt.Errorf("enqueueing invitation notice: %w", err)
	}

	n.logger.Debug("invitation notice enqueued", "invitation_id", inv.PublicID, "task_id", info.ID)
	return nil
}
