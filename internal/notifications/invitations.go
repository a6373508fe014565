package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hugh/teamhub/internal/database/models"
)

// InvitationReceived writes the in-app notice for a pending invitation that
// is linked to an existing account. It returns false when there is nothing
// to deliver: the invitation is gone, no longer pending or not linked.
func (s *Service) InvitationReceived(ctx context.Context, invitationID uuid.UUID) (bool, error) {
	var inv models.Invitation
	res := s.db.WithContext(ctx).
		Preload("Team").
		Preload("InvitedBy").
		Where("public_id = ?", invitationID).
		Limit(1).
		Find(&inv)
	if res.Error != nil {
		return false, fmt.Errorf("loading invitation: %w", res.Error)
	}
	if res.RowsAffected == 0 || !inv.IsPending() || inv.UserID == nil || inv.Team == nil {
		return false, nil
	}

	inviter := "Someone"
	if inv.InvitedBy != nil && inv.InvitedBy.Name != "" {
		inviter = inv.InvitedBy.Name
	}

	_, err := s.Create(ctx, CreateInput{
		RecipientID: *inv.UserID,
		SenderID:    &inv.InvitedByID,
		Title:       "Team invitation",
		Content:     fmt.Sprintf("%s has invited you to join %s as a %s.", inviter, inv.Team.Label, inv.Role),
		Type:        models.NotificationTeamInvitation,
		Link:        "/invitations",
	})
	if err != nil {
		return false, err
	}

	s.logger.Info("invitation notice created",
		"invitation_id", inv.PublicID,
		"team_id", inv.Team.PublicID,
	)
	return true, nil
}
