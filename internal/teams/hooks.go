package teams

import (
	"context"

	"github.com/hugh/teamhub/internal/database/models"
)

// Quota names a resource limited in demo mode.
type Quota string

const (
	QuotaUsers       Quota = "users"
	QuotaTeams       Quota = "teams"
	QuotaProjects    Quota = "projects"
	QuotaInvitations Quota = "invitations"
)

// Guard is the demo-mode policy hook. QuotaExceeded is consulted before a
// create; subjectID is the acting user for QuotaTeams and the team for
// QuotaProjects and QuotaInvitations.
type Guard interface {
	QuotaExceeded(ctx context.Context, quota Quota, subjectID uint) (bool, error)
	LimitMessage(quota Quota) string
	IsProtectedAccount(email string) bool
}

// Notifier delivers an invitation to a matched, existing account.
type Notifier interface {
	InvitationIssued(ctx context.Context, inv *models.Invitation) error
}

// NopGuard allows everything.
type NopGuard struct{}

func (NopGuard) QuotaExceeded(context.Context, Quota, uint) (bool, error) { return false, nil }
func (NopGuard) LimitMessage(Quota) string                                { return "" }
func (NopGuard) IsProtectedAccount(string) bool                           { return false }

type nopNotifier struct{}

func (nopNotifier) InvitationIssued(context.Context, *models.Invitation) error { return nil }

// CheckQuota converts a guard verdict into a QuotaExceeded error.
func CheckQuota(ctx context.Context, g Guard, quota Quota, subjectID uint) error {
	exceeded, err := g.QuotaExceeded(ctx, quota, subjectID)
	if err != nil {
		return err
	}
	if exceeded {
		return NewError(ErrQuotaExceeded, g.LimitMessage(quota))
	}
	return nil
}

var (
	_ Guard    = NopGuard{}
	_ Notifier = nopNotifier{}
)
