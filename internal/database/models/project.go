package models

import "gorm.io/datatypes"

type ProjectStatus string

const (
	ProjectDraft      ProjectStatus = "draft"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
)

// Story form steps in order.
const (
	StepIntro    = "intro"
	StepSectionA = "section-a"
	StepSectionB = "section-b"
	StepSectionC = "section-c"
	StepComplete = "complete"
)

// IsValidStep reports whether step names one of the story form steps.
func IsValidStep(step string) bool {
	switch step {
	case StepIntro, StepSectionA, StepSectionB, StepSectionC, StepComplete:
		return true
	}
	return false
}

// ParseProjectStatus accepts the lowercase wire values only.
func ParseProjectStatus(s string) (ProjectStatus, bool) {
	switch ProjectStatus(s) {
	case ProjectDraft, ProjectInProgress, ProjectCompleted:
		return ProjectStatus(s), true
	}
	return "", false
}

// Project is a multi-step story form. Responses maps step keys to the
// answers submitted for that step.
type Project struct {
	Base
	UserID      uint           `gorm:"not null;index" json:"-"`
	Key         string         `gorm:"uniqueIndex;not null" json:"key"`
	Label       string         `gorm:"not null" json:"title"`
	Description *string        `json:"description,omitempty"`
	Status      ProjectStatus  `gorm:"not null;default:'draft';index" json:"status"`
	CurrentStep string         `gorm:"not null;default:'intro'" json:"current_step"`
	Responses   datatypes.JSON `json:"responses"`

	Teams []Team `gorm:"many2many:team_projects" json:"-"`
}

func (Project) TableName() string {
	return "projects"
}

// TeamProject is the join row between teams and projects.
type TeamProject struct {
	TeamID    uint `gorm:"primaryKey"`
	ProjectID uint `gorm:"primaryKey;index"`
}

func (TeamProject) TableName() string {
	return "team_projects"
}
