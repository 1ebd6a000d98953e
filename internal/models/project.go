package models

import (
	"github.com/taskfleet/taskfleet/internal/domain"
	"gorm.io/gorm"
)

type Project struct {
	gorm.Model

	Name        string               `gorm:"uniqueIndex;not null"`
	Description string
	Status      domain.ProjectStatus `gorm:"not null;default:ACTIVE"`

	// Relationships
	ProjectMemberships []ProjectMembership `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Tasks              []Task              `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Messages           []Message           `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
