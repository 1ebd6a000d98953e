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

type ProjectService struct {
	db            *gorm.DB
	guard         *access.Guard
	notifications *NotificationService
}

func NewProjectService(db *gorm.DB, guard *access.Guard, notifications *NotificationService) *ProjectService {
	return &ProjectService{db: db, guard: guard, notifications: notifications}
}

type CreateProjectInput struct {
	Name        string
	Description string
}

type UpdateProjectInput struct {
	Name        *string
	Description *string
}

func (s *ProjectService) findProject(projectID uint) (models.Project, error) {
	var project models.Project

	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Project{}, domain.NotFound("project not found")
		}
		return models.Project{}, err
	}

	return project, nil
}

func (s *ProjectService) members(projectID uint) ([]models.User, error) {
	var users []models.User

	err := s.db.
		Joins("JOIN project_memberships ON project_memberships.user_id = users.id").
		Where("project_memberships.project_id = ? AND project_memberships.deleted_at IS NULL", projectID).
		Order("users.id ASC").
		Find(&users).Error

	if err != nil {
		return nil, err
	}

	return users, nil
}

func (s *ProjectService) toProjectResponse(project models.Project) (types.ProjectResponse, error) {
	users, err := s.members(project.ID)

	if err != nil {
		return types.ProjectResponse{}, err
	}

	members := make([]types.UserResponse, 0, len(users))

	for _, user := range users {
		members = append(members, toUserResponse(user))
	}

	return types.ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Status:      project.Status,
		Members:     members,
	}, nil
}

// Create registers a project with the creator as its first member and
// sends the creator a direct confirmation notification.
func (s *ProjectService) Create(input CreateProjectInput, principal types.Principal) (types.ProjectResponse, error) {
	if err := s.guard.CanAct(principal, access.ResourceProject, 0, access.ActionCreate); err != nil {
		return types.ProjectResponse{}, err
	}

	var count int64

	if err := s.db.Model(&models.Project{}).Where("name = ?", input.Name).Count(&count).Error; err != nil {
		return types.ProjectResponse{}, err
	}

	if count > 0 {
		return types.ProjectResponse{}, domain.BadRequest("a project with this name already exists")
	}

	project := models.Project{
		Name:        input.Name,
		Description: input.Description,
		Status:      domain.ProjectActive,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		membership := models.ProjectMembership{UserID: principal.ID, ProjectID: project.ID}
		return tx.Create(&membership).Error
	})

	if err != nil {
		return types.ProjectResponse{}, err
	}

	notice := fmt.Sprintf("Project %s created successfully!", project.Name)

	if _, err := s.notifications.NotifyUser(notice, principal.ID); err != nil {
		return types.ProjectResponse{}, err
	}

	return s.toProjectResponse(project)
}

func (s *ProjectService) Update(projectID uint, input UpdateProjectInput, principal types.Principal) (types.ProjectResponse, error) {
	if err := s.guard.CanAct(principal, access.ResourceProject, projectID, access.ActionUpdate); err != nil {
		return types.ProjectResponse{}, err
	}

	project, err := s.findProject(projectID)

	if err != nil {
		return types.ProjectResponse{}, err
	}

	if input.Name != nil && *input.Name != project.Name {
		project.Name = *input.Name
	}

	if input.Description != nil && *input.Description != project.Description {
		project.Description = *input.Description
	}

	if err := s.db.Save(&project).Error; err != nil {
		return types.ProjectResponse{}, err
	}

	notice := fmt.Sprintf("%s updated project %s.", principal.Name, project.Name)

	if _, err := s.notifications.NotifyProject(notice, projectID); err != nil {
		return types.ProjectResponse{}, err
	}

	return s.toProjectResponse(project)
}

// UpdateStatus changes the project status. The aggregate write happens
// before the fan-out resolves recipients.
func (s *ProjectService) UpdateStatus(projectID uint, status domain.ProjectStatus, principal types.Principal) (types.ProjectResponse, error) {
	if err := s.guard.CanAct(principal, access.ResourceProject, projectID, access.ActionChangeStatus); err != nil {
		return types.ProjectResponse{}, err
	}

	project, err := s.findProject(projectID)

	if err != nil {
		return types.ProjectResponse{}, err
	}

	if project.Status == status {
		return types.ProjectResponse{}, domain.BadRequest("status already assigned")
	}

	project.Status = status

	if err := s.db.Save(&project).Error; err != nil {
		return types.ProjectResponse{}, err
	}

	notice := fmt.Sprintf("%s updated the status of project %s.", principal.Name, project.Name)

	if _, err := s.notifications.NotifyProject(notice, projectID); err != nil {
		return types.ProjectResponse{}, err
	}

	return s.toProjectResponse(project)
}

func (s *ProjectService) Get(projectID uint, principal types.Principal) (types.ProjectResponse, error) {
	project, err := s.findProject(projectID)

	if err != nil {
		return types.ProjectResponse{}, err
	}

	if err := s.guard.CanAct(principal, access.ResourceProject, projectID, access.ActionRead); err != nil {
		return types.ProjectResponse{}, err
	}

	return s.toProjectResponse(project)
}

// ListByUser returns the projects the given user belongs to. A nil
// userID means the caller's own projects for non-admins and all
// projects for admins. Non-admins may only request their own id.
func (s *ProjectService) ListByUser(userID *uint, principal types.Principal) ([]types.ProjectResponse, error) {
	if !principal.IsAdmin() {
		if userID != nil && *userID != principal.ID {
			return nil, domain.Forbidden("access denied")
		}

		own := principal.ID
		userID = &own
	}

	var projects []models.Project
	var err error

	if userID == nil {
		err = s.db.Order("id ASC").Find(&projects).Error
	} else {
		err = s.db.
			Joins("JOIN project_memberships ON project_memberships.project_id = projects.id").
			Where("project_memberships.user_id = ? AND project_memberships.deleted_at IS NULL", *userID).
			Order("projects.id ASC").
			Find(&projects).Error
	}

	if err != nil {
		return nil, err
	}

	responses := make([]types.ProjectResponse, 0, len(projects))

	for _, project := range projects {
		response, err := s.toProjectResponse(project)

		if err != nil {
			return nil, err
		}

		responses = append(responses, response)
	}

	return responses, nil
}

func (s *ProjectService) AddMember(projectID uint, userID uint, principal types.Principal) (types.ProjectResponse, error) {
	if err := s.guard.CanAct(principal, access.ResourceProject, projectID, access.ActionAddMember); err != nil {
		return types.ProjectResponse{}, err
	}

	project, err := s.findProject(projectID)

	if err != nil {
		return types.ProjectResponse{}, err
	}

	var user models.User

	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.ProjectResponse{}, domain.NotFound("user not found")
		}
		return types.ProjectResponse{}, err
	}

	member, err := s.guard.IsMember(userID, projectID)

	if err != nil {
		return types.ProjectResponse{}, err
	}

	if member {
		return types.ProjectResponse{}, domain.BadRequest("this user is already part of the project")
	}

	membership := models.ProjectMembership{UserID: userID, ProjectID: projectID}

	if err := s.db.Create(&membership).Error; err != nil {
		return types.ProjectResponse{}, err
	}

	// Membership is written first, so the new member is included in
	// the fan-out recipient set.
	notice := fmt.Sprintf("%s was added to project %s.", user.Name, project.Name)

	if _, err := s.notifications.NotifyProject(notice, projectID); err != nil {
		return types.ProjectResponse{}, err
	}

	return s.toProjectResponse(project)
}

func (s *ProjectService) RemoveMember(projectID uint, userID uint, principal types.Principal) (types.ProjectResponse, error) {
	if err := s.guard.CanAct(principal, access.ResourceProject, projectID, access.ActionRemoveMember); err != nil {
		return types.ProjectResponse{}, err
	}

	project, err := s.findProject(projectID)

	if err != nil {
		return types.ProjectResponse{}, err
	}

	var user models.User

	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.ProjectResponse{}, domain.NotFound("user not found")
		}
		return types.ProjectResponse{}, err
	}

	member, err := s.guard.IsMember(userID, projectID)

	if err != nil {
		return types.ProjectResponse{}, err
	}

	if !member {
		return types.ProjectResponse{}, domain.BadRequest("this user is not part of the project")
	}

	// Hard delete so the pair can re-enter the unique membership index
	// if the user is added back later.
	err = s.db.Unscoped().Where("user_id = ? AND project_id = ?", userID, projectID).
		Delete(&models.ProjectMembership{}).Error

	if err != nil {
		return types.ProjectResponse{}, err
	}

	notice := fmt.Sprintf("%s was removed from project %s.", user.Name, project.Name)

	if _, err := s.notifications.NotifyProject(notice, projectID); err != nil {
		return types.ProjectResponse{}, err
	}

	return s.toProjectResponse(project)
}

// Delete notifies every member directly, then removes the project and
// its memberships, tasks and messages. The notifications are persisted
// before any row disappears.
func (s *ProjectService) Delete(projectID uint, principal types.Principal) error {
	if err := s.guard.CanAct(principal, access.ResourceProject, projectID, access.ActionDelete); err != nil {
		return err
	}

	project, err := s.findProject(projectID)

	if err != nil {
		return err
	}

	users, err := s.members(projectID)

	if err != nil {
		return err
	}

	notice := fmt.Sprintf("Project %s was deleted.", project.Name)
	pushes := make([]func(), 0, len(users))

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, user := range users {
			_, push, err := s.notifications.stageUserNotification(tx, notice, user.ID)

			if err != nil {
				return err
			}

			pushes = append(pushes, push)
		}

		if err := tx.Unscoped().Where("project_id = ?", projectID).Delete(&models.ProjectMembership{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("project_id = ?", projectID).Delete(&models.Message{}).Error; err != nil {
			return err
		}

		// The name leaves the unique index with the row, so it can be
		// used again by a future project.
		return tx.Unscoped().Delete(&project).Error
	})

	if err != nil {
		return err
	}

	for _, push := range pushes {
		push()
	}

	return nil
}
