package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the internal numeric key and the opaque public id. Only
// PublicID is ever exposed outside the process.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	PublicID  uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.PublicID == uuid.Nil {
		b.PublicID = uuid.New()
	}
	return nil
}
