package services

import (
	"errors"
	"fmt"

	"github.com/taskfleet/taskfleet/internal/access"
	"github.com/taskfleet/taskfleet/internal/domain"
	"github.com/taskfleet/taskfleet/internal/models"
	"github.com/taskfleet/taskfleet/internal/types"
	"gorm.io/gorm"
)

type TaskService struct {
	db            *gorm.DB
	guard         *access.Guard
	notifications *NotificationService
}

func NewTaskService(db *gorm.DB, guard *access.Guard, notifications *NotificationService) *TaskService {
	return &TaskService{db: db, guard: guard, notifications: notifications}
}

type CreateTaskInput struct {
	Title       string
	Description string
}

type UpdateTaskInput struct {
	Title       *string
	Description *string
	OwnerID     *uint
}

func toTaskResponse(t models.Task) types.TaskResponse {
	return types.TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		ProjectID:   t.ProjectID,
		OwnerID:     t.OwnerID,
	}
}

func (s *TaskService) findTask(taskID uint) (models.Task, error) {
	var task models.Task

	if err := s.db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, domain.NotFound("task not found")
		}
		return models.Task{}, err
	}

	return task, nil
}

// Create registers a task owned by the caller, announces it to the
// project and sends the owner a direct assignment notice.
func (s *TaskService) Create(projectID uint, input CreateTaskInput, principal types.Principal) (types.TaskResponse, error) {
	var project models.Project

	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.TaskResponse{}, domain.NotFound("project not found")
		}
		return types.TaskResponse{}, err
	}

	if err := s.guard.CanAct(principal, access.ResourceTask, projectID, access.ActionCreate); err != nil {
		return types.TaskResponse{}, err
	}

	var count int64

	err := s.db.Model(&models.Task{}).
		Where("title = ? AND project_id = ?", input.Title, projectID).
		Count(&count).Error

	if err != nil {
		return types.TaskResponse{}, err
	}

	if count > 0 {
		return types.TaskResponse{}, domain.BadRequest("a task with this title already exists in this project")
	}

	ownerID := principal.ID
	task := models.Task{
		ProjectID:   projectID,
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.TaskToDo,
		OwnerID:     &ownerID,
	}

	var pushes []func()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return err
		}

		projectNotice := fmt.Sprintf("New task created: '%s' in project %s", task.Title, project.Name)
		_, projectPush, err := s.notifications.stageProjectNotification(tx, projectNotice, projectID)

		if err != nil {
			return err
		}

		ownerNotice := fmt.Sprintf("You were assigned to the new task: '%s'", task.Title)
		_, ownerPush, err := s.notifications.stageUserNotification(tx, ownerNotice, ownerID)

		if err != nil {
			return err
		}

		pushes = append(pushes, projectPush, ownerPush)
		return nil
	})

	if err != nil {
		return types.TaskResponse{}, err
	}

	for _, push := range pushes {
		push()
	}

	return toTaskResponse(task), nil
}

func (s *TaskService) Update(taskID uint, input UpdateTaskInput, principal types.Principal) (types.TaskResponse, error) {
	task, err := s.findTask(taskID)

	if err != nil {
		return types.TaskResponse{}, err
	}

	if err := s.guard.CanAct(principal, access.ResourceTask, taskID, access.ActionUpdate); err != nil {
		return types.TaskResponse{}, err
	}

	if input.Title != nil && *input.Title != task.Title {
		task.Title = *input.Title
	}

	if input.Description != nil && *input.Description != task.Description {
		task.Description = *input.Description
	}

	var reassignedTo *models.User

	if input.OwnerID != nil && (task.OwnerID == nil || *task.OwnerID != *input.OwnerID) {
		var newOwner models.User

		if err := s.db.First(&newOwner, *input.OwnerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.TaskResponse{}, domain.NotFound("user not found")
			}
			return types.TaskResponse{}, err
		}

		member, err := s.guard.IsMember(newOwner.ID, task.ProjectID)

		if err != nil {
			return types.TaskResponse{}, err
		}

		if !member {
			return types.TaskResponse{}, domain.BadRequest("new owner does not belong to the project")
		}

		task.OwnerID = input.OwnerID
		reassignedTo = &newOwner
	}

	var project models.Project

	if err := s.db.First(&project, task.ProjectID).Error; err != nil {
		return types.TaskResponse{}, err
	}

	var pushes []func()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&task).Error; err != nil {
			return err
		}

		if reassignedTo != nil {
			notice := fmt.Sprintf("You were reassigned to task '%s'.", task.Title)
			_, push, err := s.notifications.stageUserNotification(tx, notice, reassignedTo.ID)

			if err != nil {
				return err
			}

			pushes = append(pushes, push)
		}

		notice := fmt.Sprintf("Task '%s' was updated in project %s", task.Title, project.Name)
		_, push, err := s.notifications.stageProjectNotification(tx, notice, task.ProjectID)

		if err != nil {
			return err
		}

		pushes = append(pushes, push)
		return nil
	})

	if err != nil {
		return types.TaskResponse{}, err
	}

	for _, push := range pushes {
		push()
	}

	return toTaskResponse(task), nil
}

func (s *TaskService) ChangeStatus(taskID uint, status domain.TaskStatus, principal types.Principal) (types.TaskResponse, error) {
	task, err := s.findTask(taskID)

	if err != nil {
		return types.TaskResponse{}, err
	}

	if err := s.guard.CanAct(principal, access.ResourceTask, taskID, access.ActionChangeStatus); err != nil {
		return types.TaskResponse{}, err
	}

	if task.Status == status {
		return types.TaskResponse{}, domain.BadRequest("status already assigned to this task")
	}

	task.Status = status

	if err := s.db.Save(&task).Error; err != nil {
		return types.TaskResponse{}, err
	}

	notice := fmt.Sprintf("Status of task '%s' was updated to %s", task.Title, status)

	if _, err := s.notifications.NotifyProject(notice, task.ProjectID); err != nil {
		return types.TaskResponse{}, err
	}

	return toTaskResponse(task), nil
}

func (s *TaskService) ListByProject(projectID uint, principal types.Principal) ([]types.TaskResponse, error) {
	var project models.Project

	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("project not found")
		}
		return nil, err
	}

	member, err := s.guard.IsMember(principal.ID, projectID)

	if err != nil {
		return nil, err
	}

	if !member && !principal.IsAdmin() {
		return nil, domain.Forbidden("you do not have access to this project")
	}

	return s.listTasks(s.db.Where("project_id = ?", projectID))
}

func (s *TaskService) ListMine(principal types.Principal) ([]types.TaskResponse, error) {
	return s.listTasks(s.db.Where("owner_id = ?", principal.ID))
}

func (s *TaskService) ListByUser(userID uint, principal types.Principal) ([]types.TaskResponse, error) {
	var user models.User

	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("user not found")
		}
		return nil, err
	}

	return s.listTasks(s.db.Where("owner_id = ?", userID))
}

func (s *TaskService) listTasks(query *gorm.DB) ([]types.TaskResponse, error) {
	var tasks []models.Task

	if err := query.Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}

	responses := make([]types.TaskResponse, 0, len(tasks))

	for _, task := range tasks {
		responses = append(responses, toTaskResponse(task))
	}

	return responses, nil
}

// Delete announces the removal to the project, then deletes the task.
func (s *TaskService) Delete(taskID uint, principal types.Principal) error {
	task, err := s.findTask(taskID)

	if err != nil {
		return err
	}

	if err := s.guard.CanAct(principal, access.ResourceTask, taskID, access.ActionDelete); err != nil {
		return err
	}

	var project models.Project

	if err := s.db.First(&project, task.ProjectID).Error; err != nil {
		return err
	}

	notice := fmt.Sprintf("Task '%s' was permanently removed from project %s", task.Title, project.Name)

	var push func()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		_, push, err = s.notifications.stageProjectNotification(tx, notice, task.ProjectID)

		if err != nil {
			return err
		}

		return tx.Unscoped().Delete(&task).Error
	})

	if err != nil {
		return err
	}

	push()
	return nil
}
