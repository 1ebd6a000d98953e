package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/taskfleet/taskfleet/internal/access"
	"github.com/taskfleet/taskfleet/internal/auth"
	"github.com/taskfleet/taskfleet/internal/domain"
	"github.com/taskfleet/taskfleet/internal/models"
	"github.com/taskfleet/taskfleet/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	db            *gorm.DB
	guard         *access.Guard
	notifications *NotificationService
}

func NewUserService(db *gorm.DB, guard *access.Guard, notifications *NotificationService) *UserService {
	return &UserService{db: db, guard: guard, notifications: notifications}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type UpdateUserInput struct {
	Name            *string
	Email           *string
	CurrentPassword string
}

func toUserResponse(u models.User) types.UserResponse {
	return types.UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

func (s *UserService) findUser(userID uint) (models.User, error) {
	var user models.User

	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, domain.NotFound("user not found")
		}
		return models.User{}, err
	}

	return user, nil
}

// validPassword requires at least 8 characters with an upper case
// letter, a lower case letter, a digit and a special character.
func validPassword(password string) bool {
	if len(password) < 8 {
		return false
	}

	var upper, lower, digit, special bool

	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}

	return upper && lower && digit && special
}

func (s *UserService) Register(input RegisterInput) (types.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var count int64

	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return types.UserResponse{}, err
	}

	if count > 0 {
		return types.UserResponse{}, domain.BadRequest("a user is already registered with this email")
	}

	if !validPassword(input.Password) {
		return types.UserResponse{}, domain.BadRequest("password must be at least 8 characters and include upper and lower case letters, a digit and a special character")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)

	if err != nil {
		return types.UserResponse{}, err
	}

	user := models.User{
		Name:         input.Name,
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         domain.RoleUser,
	}

	if err := s.db.Create(&user).Error; err != nil {
		return types.UserResponse{}, err
	}

	return toUserResponse(user), nil
}

func (s *UserService) Login(email string, password string) (types.LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User

	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.LoginResponse{}, domain.Unauthorized("invalid email or password")
		}
		return types.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.LoginResponse{}, domain.Unauthorized("invalid email or password")
	}

	token, err := auth.GenerateJWT(user.ID, user.Email)

	if err != nil {
		return types.LoginResponse{}, err
	}

	return types.LoginResponse{Token: token, User: toUserResponse(user)}, nil
}

func (s *UserService) GetByID(userID uint, principal types.Principal) (types.UserResponse, error) {
	if err := s.guard.CanAct(principal, access.ResourceUser, userID, access.ActionRead); err != nil {
		return types.UserResponse{}, err
	}

	user, err := s.findUser(userID)

	if err != nil {
		return types.UserResponse{}, err
	}

	return toUserResponse(user), nil
}

func (s *UserService) UpdateMe(input UpdateUserInput, principal types.Principal) (types.UserResponse, error) {
	user, err := s.findUser(principal.ID)

	if err != nil {
		return types.UserResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return types.UserResponse{}, domain.BadRequest("incorrect password")
	}

	if input.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}

	if input.Name != nil {
		user.Name = *input.Name
	}

	if err := s.db.Save(&user).Error; err != nil {
		return types.UserResponse{}, err
	}

	return toUserResponse(user), nil
}

func (s *UserService) ChangePassword(oldPassword string, newPassword string, principal types.Principal) (types.UserResponse, error) {
	user, err := s.findUser(principal.ID)

	if err != nil {
		return types.UserResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return types.UserResponse{}, domain.BadRequest("incorrect password")
	}

	if newPassword == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(newPassword)) == nil {
		return types.UserResponse{}, domain.BadRequest("you must provide a new password")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)

	if err != nil {
		return types.UserResponse{}, err
	}

	user.PasswordHash = string(passwordHash)

	if err := s.db.Save(&user).Error; err != nil {
		return types.UserResponse{}, err
	}

	return toUserResponse(user), nil
}

// UpdateRole changes a user's role and announces it to every project
// the user belongs to. The role is written before any fan-out.
func (s *UserService) UpdateRole(userID uint, role domain.Role, principal types.Principal) (types.UserResponse, error) {
	if err := s.guard.CanAct(principal, access.ResourceUser, userID, access.ActionUpdate); err != nil {
		return types.UserResponse{}, err
	}

	user, err := s.findUser(userID)

	if err != nil {
		return types.UserResponse{}, err
	}

	if user.Role == role {
		return types.UserResponse{}, domain.BadRequest("role already assigned to this user")
	}

	user.Role = role

	if err := s.db.Save(&user).Error; err != nil {
		return types.UserResponse{}, err
	}

	var memberships []models.ProjectMembership

	if err := s.db.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		return types.UserResponse{}, err
	}

	notice := fmt.Sprintf("%s is now %s", user.Name, role)

	for _, membership := range memberships {
		if _, err := s.notifications.NotifyProject(notice, membership.ProjectID); err != nil {
			return types.UserResponse{}, err
		}
	}

	return toUserResponse(user), nil
}

func (s *UserService) List(principal types.Principal) ([]types.UserResponse, error) {
	if err := s.guard.CanAct(principal, access.ResourceUser, 0, access.ActionList); err != nil {
		return nil, err
	}

	var users []models.User

	if err := s.db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}

	responses := make([]types.UserResponse, 0, len(users))

	for _, user := range users {
		responses = append(responses, toUserResponse(user))
	}

	return responses, nil
}

func (s *UserService) ListByRole(role string, principal types.Principal) ([]types.UserResponse, error) {
	if err := s.guard.CanAct(principal, access.ResourceUser, 0, access.ActionList); err != nil {
		return nil, err
	}

	parsed, err := domain.ParseRole(role)

	if err != nil {
		return nil, err
	}

	var users []models.User

	if err := s.db.Where("role = ?", parsed).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}

	responses := make([]types.UserResponse, 0, len(users))

	for _, user := range users {
		responses = append(responses, toUserResponse(user))
	}

	return responses, nil
}

func (s *UserService) DeleteMe(principal types.Principal) error {
	user, err := s.findUser(principal.ID)

	if err != nil {
		return err
	}

	return s.deleteUser(user)
}

func (s *UserService) Delete(userID uint, principal types.Principal) error {
	if err := s.guard.CanAct(principal, access.ResourceUser, userID, access.ActionDelete); err != nil {
		return err
	}

	user, err := s.findUser(userID)

	if err != nil {
		return err
	}

	return s.deleteUser(user)
}

// deleteUser removes the user and everything owned by them. Owned
// notifications and memberships cascade; authored tasks lose their
// owner instead of disappearing.
func (s *UserService) deleteUser(user models.User) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&models.ProjectMembership{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&models.Message{}).Error; err != nil {
			return err
		}

		err := tx.Model(&models.Task{}).Where("owner_id = ?", user.ID).
			Update("owner_id", nil).Error

		if err != nil {
			return err
		}

		// Hard delete frees the email in the unique index for a fresh
		// registration.
		return tx.Unscoped().Delete(&user).Error
	})
}
