package models

import (
	"strings"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type TeamStatus string

const (
	TeamStatusActive   TeamStatus = "active"
	TeamStatusInactive TeamStatus = "inactive"
	TeamStatusDeleted  TeamStatus = "deleted"
)

// Team is a named group of users with exactly one owner. Deletion is a
// status change; the row is kept.
type Team struct {
	Base
	Label       string     `gorm:"not null" json:"label"`
	Key         string     `gorm:"<-:create;uniqueIndex;not null" json:"key"`
	Description *string    `json:"description,omitempty"`
	Email       *string    `json:"email,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	Website     *string    `json:"website,omitempty"`
	Status      TeamStatus `gorm:"not null;default:'active';index" json:"status"`
	IsPersonal  bool       `gorm:"not null;default:false" json:"is_personal"`
	OwnerID     *uint      `gorm:"index" json:"-"`
}

func (Team) TableName() string {
	return "teams"
}

// BeforeCreate assigns the public id and derives the key from it. The key
// column is create-only, so renaming a team never touches it.
func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if err := t.Base.BeforeCreate(tx); err != nil {
		return err
	}
	if t.Key == "" {
		t.Key = Slugify(t.Label) + "-" + t.PublicID.String()
	}
	return nil
}

func (t *Team) IsDeleted() bool {
	return t.Status == TeamStatusDeleted
}

// IsOwnedBy reports whether userID is the recorded owner.
func (t *Team) IsOwnedBy(userID uint) bool {
	return t.OwnerID != nil && *t.OwnerID == userID
}

func (t Team) AgreementSubject() (string, uint) {
	return "team", t.ID
}

// Slugify lowercases and transliterates s into a URL-safe slug.
func Slugify(s string) string {
	out := slug.Make(strings.TrimSpace(s))
	if out == "" {
		return "team"
	}
	return out
}
