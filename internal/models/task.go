package models

import (
	"github.com/taskfleet/taskfleet/internal/domain"
	"gorm.io/gorm"
)

type Task struct {
	gorm.Model

	ProjectID   uint              `gorm:"not null;index;uniqueIndex:idx_project_title"`
	Title       string            `gorm:"not null;uniqueIndex:idx_project_title"`
	Description string            `gorm:"not null"`
	Status      domain.TaskStatus `gorm:"not null;default:TO_DO"`
	OwnerID     *uint             `gorm:"index"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Owner   *User   `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
