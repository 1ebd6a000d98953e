package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taskfleet/taskfleet/internal/access"
	"github.com/taskfleet/taskfleet/internal/domain"
	"github.com/taskfleet/taskfleet/internal/models"
	"github.com/taskfleet/taskfleet/internal/realtime"
	"github.com/taskfleet/taskfleet/internal/types"
	"gorm.io/gorm"
)

// MessageService manages per-project message threads and delegates
// notification production to the fan-out engine.
type MessageService struct {
	db            *gorm.DB
	guard         *access.Guard
	notifications *NotificationService
	hub           *realtime.Hub
}

func NewMessageService(db *gorm.DB, guard *access.Guard, notifications *NotificationService, hub *realtime.Hub) *MessageService {
	return &MessageService{db: db, guard: guard, notifications: notifications, hub: hub}
}

func toMessageResponse(m models.Message) types.MessageResponse {
	return types.MessageResponse{
		ID:        m.ID,
		Text:      m.Text,
		Timestamp: m.CreatedAt,
		Status:    m.Status,
		ProjectID: m.ProjectID,
		UserID:    m.UserID,
	}
}

func (s *MessageService) findMessage(messageID uint) (models.Message, error) {
	var message models.Message

	if err := s.db.First(&message, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Message{}, domain.NotFound("message not found")
		}
		return models.Message{}, err
	}

	return message, nil
}

// Send persists a new message and fans out "<author>: \n<text>" to the
// project's members. The topic push follows the committed write.
func (s *MessageService) Send(projectID uint, text string, principal types.Principal) (types.MessageResponse, error) {
	var project models.Project

	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.MessageResponse{}, domain.NotFound("project not found")
		}
		return types.MessageResponse{}, err
	}

	if err := s.guard.CanAct(principal, access.ResourceMessage, projectID, access.ActionCreate); err != nil {
		return types.MessageResponse{}, err
	}

	message := models.Message{
		ProjectID: projectID,
		UserID:    principal.ID,
		Text:      text,
		Status:    domain.StatusNotRead,
	}

	var push func()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}

		var err error
		_, push, err = s.notifications.stageProjectNotification(tx, principal.Name+": \n"+text, projectID)
		return err
	})

	if err != nil {
		return types.MessageResponse{}, err
	}

	push()

	response := toMessageResponse(message)
	s.hub.Publish(realtime.ProjectTopic(projectID), response)
	return response, nil
}

func (s *MessageService) MarkRead(messageID uint, principal types.Principal) (types.MessageResponse, error) {
	message, err := s.findMessage(messageID)

	if err != nil {
		return types.MessageResponse{}, err
	}

	if message.Status == domain.StatusRead {
		return types.MessageResponse{}, domain.BadRequest("already read")
	}

	if err := s.guard.CanAct(principal, access.ResourceMessage, messageID, access.ActionRead); err != nil {
		return types.MessageResponse{}, err
	}

	status, err := message.Status.MarkRead()

	if err != nil {
		return types.MessageResponse{}, err
	}

	message.Status = status

	if err := s.db.Save(&message).Error; err != nil {
		return types.MessageResponse{}, err
	}

	response := toMessageResponse(message)
	s.hub.Publish(realtime.MessageTopic(messageID), response)
	return response, nil
}

// Search returns the project's messages whose text contains the query
// case-insensitively, in thread insertion order.
func (s *MessageService) Search(projectID uint, text string, principal types.Principal) ([]types.MessageResponse, error) {
	var project models.Project

	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("project not found")
		}
		return nil, err
	}

	if err := s.guard.CanAct(principal, access.ResourceMessage, projectID, access.ActionList); err != nil {
		return nil, err
	}

	var messages []models.Message

	if err := s.db.Where("project_id = ?", projectID).Order("id ASC").Find(&messages).Error; err != nil {
		return nil, err
	}

	needle := strings.ToLower(text)
	matches := make([]types.MessageResponse, 0)

	for _, message := range messages {
		if strings.Contains(strings.ToLower(message.Text), needle) {
			matches = append(matches, toMessageResponse(message))
		}
	}

	return matches, nil
}

func (s *MessageService) Get(messageID uint, principal types.Principal) (types.MessageResponse, error) {
	message, err := s.findMessage(messageID)

	if err != nil {
		return types.MessageResponse{}, err
	}

	if err := s.guard.CanAct(principal, access.ResourceMessage, messageID, access.ActionRead); err != nil {
		return types.MessageResponse{}, err
	}

	return toMessageResponse(message), nil
}

// Delete removes a message after announcing the deletion to the
// project. The announcement is persisted before the row disappears,
// keyed by the project captured prior to removal.
func (s *MessageService) Delete(messageID uint, principal types.Principal) error {
	message, err := s.findMessage(messageID)

	if err != nil {
		return err
	}

	if err := s.guard.CanAct(principal, access.ResourceMessage, messageID, access.ActionDelete); err != nil {
		return err
	}

	var project models.Project

	if err := s.db.First(&project, message.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("project not found")
		}
		return err
	}

	notice := fmt.Sprintf("%s deleted a message in project %s.", principal.Name, project.Name)

	var push func()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		_, push, err = s.notifications.stageProjectNotification(tx, notice, project.ID)

		if err != nil {
			return err
		}

		return tx.Unscoped().Delete(&message).Error
	})

	if err != nil {
		return err
	}

	push()
	s.hub.Publish(realtime.MessageTopic(messageID), toMessageResponse(message))
	return nil
}
