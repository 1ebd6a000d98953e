package models

import (
	"github.com/taskfleet/taskfleet/internal/domain"
	"gorm.io/gorm"
)

// Notification is always created as a side effect of another mutation,
// never directly by an end user.
type Notification struct {
	gorm.Model

	UserID uint              `gorm:"not null;index"`
	Text   string            `gorm:"not null"`
	Status domain.ReadStatus `gorm:"not null;default:NOT_READ"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
