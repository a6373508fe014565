package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/hugh/teamhub/internal/demo"
	"github.com/hugh/teamhub/internal/notifications"
)

type Handler struct {
	logger        *slog.Logger
	notifications *notifications.Service
	demo          *demo.Service
}

func NewHandler(logger *slog.Logger, notes *notifications.Service, demoSvc *demo.Service) *Handler {
	return &Handler{
		logger:        logger,
		notifications: notes,
		demo:          demoSvc,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeTeamInvitation, h.HandleTeamInvitation)
	mux.HandleFunc(TypeDemoReset, h.HandleDemoReset)
}

func (h *Handler) HandleTeamInvitation(ctx context.Context, t *asynq.Task) error {
	var payload TeamInvitationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	delivered, err := h.notifications.InvitationReceived(ctx, payload.InvitationID)
	if err != nil {
		return err
	}
	if !delivered {
		h.logger.Info("invitation no longer deliverable", "invitation_id", payload.InvitationID)
	}
	return nil
}

func (h *Handler) HandleDemoReset(ctx context.Context, t *asynq.Task) error {
	err := h.demo.Reset(ctx)
	switch {
	case errors.Is(err, demo.ErrDisabled):
		h.logger.Info("demo reset skipped, demo mode is off")
		return nil
	case errors.Is(err, demo.ErrDemoUserMissing):
		h.logger.Warn("demo user missing, seeding from scratch")
		return h.demo.Seed(ctx)
	case err != nil:
		h.logger.Error("demo reset failed", "error", err)
		return err
	}
	return nil
}
