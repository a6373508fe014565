package demo

import (
	"time"

	"github.com/hugh/teamhub/pkg/config"
	"github.com/hugh/teamhub/pkg/util"
)

type Limits struct {
	MaxUsers              int `json:"max_users"`
	MaxTeamsPerUser       int `json:"max_teams_per_user"`
	MaxProjectsPerTeam    int `json:"max_projects_per_team"`
	MaxInvitationsPerTeam int `json:"max_invitations_per_team"`
}

type Status struct {
	DemoMode    bool       `json:"demo_mode"`
	Limits      *Limits    `json:"limits"`
	NextResetAt *time.Time `json:"next_reset_at,omitempty"`
}

// StatusFor describes the demo deployment. Limits are only reported while
// demo mode is on.
func StatusFor(cfg config.DemoConfig, now time.Time) Status {
	if !cfg.Enabled {
		return Status{}
	}

	st := Status{
		DemoMode: true,
		Limits: &Limits{
			MaxUsers:              cfg.MaxUsers,
			MaxTeamsPerUser:       cfg.MaxTeamsPerUser,
			MaxProjectsPerTeam:    cfg.MaxProjectsPerTeam,
			MaxInvitationsPerTeam: cfg.MaxInvitationsPerTeam,
		},
	}
	if cfg.ResetCron != "" {
		if next, err := util.NextCronTime(cfg.ResetCron, now); err == nil {
			st.NextResetAt = &next
		}
	}
	return st
}
