package types

import (
	"time"

	"github.com/taskfleet/taskfleet/internal/domain"
)

// Canonical response shapes. Relationships are carried as plain ids,
// never embedded entity graphs.

type UserResponse struct {
	ID    uint        `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type ProjectResponse struct {
	ID          uint                 `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      domain.ProjectStatus `json:"status"`
	Members     []UserResponse       `json:"members"`
}

type TaskResponse struct {
	ID          uint              `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      domain.TaskStatus `json:"status"`
	ProjectID   uint              `json:"project_id"`
	OwnerID     *uint             `json:"owner_id"`
}

type MessageResponse struct {
	ID        uint              `json:"id"`
	Text      string            `json:"text"`
	Timestamp time.Time         `json:"timestamp"`
	Status    domain.ReadStatus `json:"status"`
	ProjectID uint              `json:"project_id"`
	UserID    uint              `json:"user_id"`
}

type NotificationResponse struct {
	ID        uint              `json:"id"`
	Text      string            `json:"text"`
	Timestamp time.Time         `json:"timestamp"`
	Status    domain.ReadStatus `json:"status"`
	UserID    uint              `json:"user_id"`
}

// ProjectNotificationResponse summarizes a project-wide fan-out.
type ProjectNotificationResponse struct {
	ProjectID  uint   `json:"project_id"`
	Text       string `json:"text"`
	Recipients int    `json:"recipients"`
}
