package services

import (
	"fmt"
	"testing"

	"github.com/taskfleet/taskfleet/db"
	"github.com/taskfleet/taskfleet/internal/access"
	"github.com/taskfleet/taskfleet/internal/domain"
	"github.com/taskfleet/taskfleet/internal/models"
	"github.com/taskfleet/taskfleet/internal/realtime"
	"github.com/taskfleet/taskfleet/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db            *gorm.DB
	guard         *access.Guard
	broker        *realtime.Broker
	hub           *realtime.Hub
	notifications *NotificationService
	messages      *MessageService
	projects      *ProjectService
	tasks         *TaskService
	users         *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})

	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Migrate(database); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	guard := access.NewGuard(database)
	broker := realtime.NewBroker(realtime.DefaultBufferSize)
	hub := realtime.NewHub()
	notifications := NewNotificationService(database, guard, broker)

	return &testEnv{
		db:            database,
		guard:         guard,
		broker:        broker,
		hub:           hub,
		notifications: notifications,
		messages:      NewMessageService(database, guard, notifications, hub),
		projects:      NewProjectService(database, guard, notifications),
		tasks:         NewTaskService(database, guard, notifications),
		users:         NewUserService(database, guard, notifications),
	}
}

func (e *testEnv) createUser(t *testing.T, name string, role domain.Role) models.User {
	t.Helper()

	user := models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}

	if err := e.db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}

	return user
}

func (e *testEnv) createProject(t *testing.T, name string, members ...models.User) models.Project {
	t.Helper()

	project := models.Project{Name: name, Status: domain.ProjectActive}

	if err := e.db.Create(&project).Error; err != nil {
		t.Fatalf("failed to create project %s: %v", name, err)
	}

	for _, member := range members {
		membership := models.ProjectMembership{UserID: member.ID, ProjectID: project.ID}

		if err := e.db.Create(&membership).Error; err != nil {
			t.Fatalf("failed to add member %d to project %s: %v", member.ID, name, err)
		}
	}

	return project
}

func principalOf(user models.User) types.Principal {
	return types.Principal{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}

func (e *testEnv) countNotifications(t *testing.T, userID uint) int64 {
	t.Helper()

	var count int64

	err := e.db.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&count).Error

	if err != nil {
		t.Fatalf("failed to count notifications: %v", err)
	}

	return count
}
