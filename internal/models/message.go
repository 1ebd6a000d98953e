package models

import (
	"github.com/taskfleet/taskfleet/internal/domain"
	"gorm.io/gorm"
)

// Message rows keep insertion order via the auto-increment id, which
// is the project thread's display order.
type Message struct {
	gorm.Model

	ProjectID uint              `gorm:"not null;index"`
	UserID    uint              `gorm:"not null;index"`
	Text      string            `gorm:"not null"`
	Status    domain.ReadStatus `gorm:"not null;default:NOT_READ"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
