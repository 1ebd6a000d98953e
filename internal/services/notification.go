package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/taskfleet/taskfleet/internal/access"
	"github.com/taskfleet/taskfleet/internal/domain"
	"github.com/taskfleet/taskfleet/internal/models"
	"github.com/taskfleet/taskfleet/internal/realtime"
	"github.com/taskfleet/taskfleet/internal/types"
	"gorm.io/gorm"
)

// NotificationService is the fan-out engine: it materializes one
// notification row per recipient, persists the batch, and pushes the
// pre-rendered text to the live stream after the write committed.
type NotificationService struct {
	db     *gorm.DB
	guard  *access.Guard
	broker *realtime.Broker
}

func NewNotificationService(db *gorm.DB, guard *access.Guard, broker *realtime.Broker) *NotificationService {
	return &NotificationService{db: db, guard: guard, broker: broker}
}

func toNotificationResponse(n models.Notification) types.NotificationResponse {
	return types.NotificationResponse{
		ID:        n.ID,
		Text:      n.Text,
		Timestamp: n.CreatedAt,
		Status:    n.Status,
		UserID:    n.UserID,
	}
}

// NotifyProject fans text out to every current member of the project.
// Recipients are resolved at call time; the batch insert is
// all-or-nothing; the stream push happens only after the write.
func (s *NotificationService) NotifyProject(text string, projectID uint) (types.ProjectNotificationResponse, error) {
	var response types.ProjectNotificationResponse
	var push func()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		response, push, err = s.stageProjectNotification(tx, text, projectID)
		return err
	})

	if err != nil {
		return types.ProjectNotificationResponse{}, err
	}

	push()
	return response, nil
}

// stageProjectNotification persists the per-member rows on the given
// handle and returns the deferred stream push. Callers that run inside
// a larger transaction invoke the push only after their commit.
func (s *NotificationService) stageProjectNotification(tx *gorm.DB, text string, projectID uint) (types.ProjectNotificationResponse, func(), error) {
	var project models.Project

	if err := tx.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.ProjectNotificationResponse{}, nil, domain.NotFound("project not found")
		}
		return types.ProjectNotificationResponse{}, nil, err
	}

	var memberships []models.ProjectMembership

	if err := tx.Where("project_id = ?", projectID).Order("user_id ASC").Find(&memberships).Error; err != nil {
		return types.ProjectNotificationResponse{}, nil, err
	}

	notifications := make([]models.Notification, 0, len(memberships))

	for _, membership := range memberships {
		notifications = append(notifications, models.Notification{
			UserID: membership.UserID,
			Text:   text,
			Status: domain.StatusNotRead,
		})
	}

	if len(notifications) > 0 {
		if err := tx.Create(&notifications).Error; err != nil {
			return types.ProjectNotificationResponse{}, nil, err
		}
	}

	event := fmt.Sprintf("%s | %s\n%s", project.Name, project.Status, text)

	push := func() {
		if err := s.broker.Broadcast(event); err != nil {
			log.Printf("Failed to broadcast project %d notification: %v", projectID, err)
		}
	}

	return types.ProjectNotificationResponse{
		ProjectID:  projectID,
		Text:       text,
		Recipients: len(notifications),
	}, push, nil
}

// NotifyUser creates a single notification for the destination user.
func (s *NotificationService) NotifyUser(text string, userID uint) (types.NotificationResponse, error) {
	var response types.NotificationResponse
	var push func()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		response, push, err = s.stageUserNotification(tx, text, userID)
		return err
	})

	if err != nil {
		return types.NotificationResponse{}, err
	}

	push()
	return response, nil
}

func (s *NotificationService) stageUserNotification(tx *gorm.DB, text string, userID uint) (types.NotificationResponse, func(), error) {
	var user models.User

	if err := tx.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotificationResponse{}, nil, domain.NotFound("user not found")
		}
		return types.NotificationResponse{}, nil, err
	}

	notification := models.Notification{
		UserID: userID,
		Text:   text,
		Status: domain.StatusNotRead,
	}

	if err := tx.Create(&notification).Error; err != nil {
		return types.NotificationResponse{}, nil, err
	}

	event := fmt.Sprintf("%s:\n%s", user.Name, text)

	push := func() {
		if err := s.broker.SendToUser(userID, event); err != nil {
			log.Printf("Failed to push notification to user %d: %v", userID, err)
		}
	}

	return toNotificationResponse(notification), push, nil
}

func (s *NotificationService) MarkRead(notificationID uint, principal types.Principal) (types.NotificationResponse, error) {
	var notification models.Notification

	if err := s.db.First(&notification, notificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotificationResponse{}, domain.NotFound("notification not found")
		}
		return types.NotificationResponse{}, err
	}

	if err := s.guard.CanAct(principal, access.ResourceNotification, notificationID, access.ActionUpdate); err != nil {
		return types.NotificationResponse{}, err
	}

	status, err := notification.Status.MarkRead()

	if err != nil {
		return types.NotificationResponse{}, err
	}

	notification.Status = status

	if err := s.db.Save(&notification).Error; err != nil {
		return types.NotificationResponse{}, err
	}

	return toNotificationResponse(notification), nil
}

// MarkAllRead transitions every NOT_READ notification of the principal
// to READ. Already-read rows are left untouched, so the call is
// idempotent per item.
func (s *NotificationService) MarkAllRead(principal types.Principal) ([]types.NotificationResponse, error) {
	var notifications []models.Notification

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND status = ?", principal.ID, domain.StatusNotRead).
			Order("id ASC").Find(&notifications).Error; err != nil {
			return err
		}

		for i := range notifications {
			notifications[i].Status = domain.StatusRead
		}

		if len(notifications) > 0 {
			if err := tx.Save(&notifications).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	responses := make([]types.NotificationResponse, 0, len(notifications))

	for _, notification := range notifications {
		responses = append(responses, toNotificationResponse(notification))
	}

	return responses, nil
}

func (s *NotificationService) ListMine(principal types.Principal) ([]types.NotificationResponse, error) {
	return s.list(principal, false)
}

func (s *NotificationService) ListMineUnread(principal types.Principal) ([]types.NotificationResponse, error) {
	return s.list(principal, true)
}

func (s *NotificationService) list(principal types.Principal, unreadOnly bool) ([]types.NotificationResponse, error) {
	query := s.db.Where("user_id = ?", principal.ID)

	if unreadOnly {
		query = query.Where("status = ?", domain.StatusNotRead)
	}

	var notifications []models.Notification

	if err := query.Order("id ASC").Find(&notifications).Error; err != nil {
		return nil, err
	}

	responses := make([]types.NotificationResponse, 0, len(notifications))

	for _, notification := range notifications {
		responses = append(responses, toNotificationResponse(notification))
	}

	return responses, nil
}

func (s *NotificationService) Delete(notificationID uint, principal types.Principal) error {
	if err := s.guard.CanAct(principal, access.ResourceNotification, notificationID, access.ActionDelete); err != nil {
		return err
	}

	var notification models.Notification

	if err := s.db.First(&notification, notificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("notification not found")
		}
		return err
	}

	return s.db.Unscoped().Delete(&notification).Error
}
