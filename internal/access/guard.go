package access

import (
	"errors"
	"fmt"

	"github.com/taskfleet/taskfleet/internal/domain"
	"github.com/taskfleet/taskfleet/internal/models"
	"github.com/taskfleet/taskfleet/internal/types"
	"gorm.io/gorm"
)

type Resource string

const (
	ResourceProject      Resource = "project"
	ResourceTask         Resource = "task"
	ResourceMessage      Resource = "message"
	ResourceNotification Resource = "notification"
	ResourceUser         Resource = "user"
)

type Action string

const (
	ActionCreate       Action = "create"
	ActionRead         Action = "read"
	ActionUpdate       Action = "update"
	ActionChangeStatus Action = "change_status"
	ActionDelete       Action = "delete"
	ActionAddMember    Action = "add_member"
	ActionRemoveMember Action = "remove_member"
	ActionList         Action = "list"
)

// Guard is the single authorization decision point. Every evaluation
// is per-call and side-effect-free; nothing is cached across requests.
type Guard struct {
	db *gorm.DB
}

func NewGuard(db *gorm.DB) *Guard {
	return &Guard{db: db}
}

// IsMember reports whether the user currently belongs to the project.
func (g *Guard) IsMember(userID uint, projectID uint) (bool, error) {
	var count int64

	err := g.db.Model(&models.ProjectMembership{}).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// CanAct decides whether the principal may perform action on the
// resource identified by id. A nil return means allow; otherwise the
// error carries the denial (Forbidden) or a NotFound for a resource
// that does not exist.
func (g *Guard) CanAct(p types.Principal, resource Resource, id uint, action Action) error {
	switch resource {
	case ResourceProject:
		return g.canActOnProject(p, id, action)
	case ResourceTask:
		return g.canActOnTask(p, id, action)
	case ResourceMessage:
		return g.canActOnMessage(p, id, action)
	case ResourceNotification:
		return g.canActOnNotification(p, id, action)
	case ResourceUser:
		return g.canActOnUser(p, id, action)
	}

	return fmt.Errorf("unknown resource kind: %s", resource)
}

func (g *Guard) canActOnProject(p types.Principal, id uint, action Action) error {
	switch action {
	case ActionCreate:
		// Any authenticated principal may create a project.
		return nil
	case ActionUpdate, ActionChangeStatus, ActionDelete, ActionAddMember, ActionRemoveMember:
		if !p.IsAdmin() {
			return domain.Forbidden("access denied")
		}
		return nil
	case ActionRead:
		if p.IsAdmin() {
			return nil
		}
		return g.requireMembership(p.ID, id, "access denied")
	}

	return domain.Forbidden("access denied")
}

func (g *Guard) canActOnTask(p types.Principal, id uint, action Action) error {
	// Task creation is addressed by the owning project id; everything
	// else resolves the project through the task row.
	if action == ActionCreate {
		return g.requireMembership(p.ID, id, "user does not belong to the project")
	}

	var task models.Task

	if err := g.db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("task not found")
		}
		return err
	}

	return g.requireMembership(p.ID, task.ProjectID, "you do not have permission to modify this task")
}

func (g *Guard) canActOnMessage(p types.Principal, id uint, action Action) error {
	// Sending and searching are addressed by project id.
	if action == ActionCreate || action == ActionList {
		return g.requireMembership(p.ID, id, "you cannot send messages to this project")
	}

	var message models.Message

	if err := g.db.First(&message, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("message not found")
		}
		return err
	}

	if action == ActionDelete {
		if message.UserID == p.ID {
			return nil
		}

		if p.IsAdmin() {
			return g.requireMembership(p.ID, message.ProjectID, "you cannot delete messages of other users")
		}

		return domain.Forbidden("you cannot delete messages of other users")
	}

	return g.requireMembership(p.ID, message.ProjectID, "you do not have permission to access this message")
}

func (g *Guard) canActOnNotification(p types.Principal, id uint, action Action) error {
	if action == ActionDelete {
		if !p.IsAdmin() {
			return domain.Forbidden("forbidden")
		}
		return nil
	}

	if action == ActionList {
		// Listing is always scoped to the principal's own rows.
		return nil
	}

	var notification models.Notification

	if err := g.db.First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("notification not found")
		}
		return err
	}

	if notification.UserID != p.ID {
		return domain.Forbidden("forbidden")
	}

	return nil
}

func (g *Guard) canActOnUser(p types.Principal, id uint, action Action) error {
	switch action {
	case ActionRead, ActionUpdate, ActionDelete, ActionList:
		if !p.IsAdmin() {
			return domain.Forbidden("access denied")
		}
		return nil
	}

	return domain.Forbidden("access denied")
}

func (g *Guard) requireMembership(userID uint, projectID uint, denial string) error {
	member, err := g.IsMember(userID, projectID)

	if err != nil {
		return err
	}

	if !member {
		return domain.Forbidden(denial)
	}

	return nil
}
