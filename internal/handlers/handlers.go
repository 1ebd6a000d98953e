package handlers

import (
	"github.com/taskfleet/taskfleet/internal/access"
	"github.com/taskfleet/taskfleet/internal/realtime"
	"github.com/taskfleet/taskfleet/internal/services"
	"gorm.io/gorm"
)

var (
	hub    *realtime.Hub
	broker *realtime.Broker
	guard  *access.Guard

	notificationService *services.NotificationService
	messageService      *services.MessageService
	projectService      *services.ProjectService
	taskService         *services.TaskService
	userService         *services.UserService
)

// Init wires the services against the given database handle. Called
// once at startup after the database connection is established.
func Init(database *gorm.DB) {
	guard = access.NewGuard(database)
	hub = realtime.NewHub()
	broker = realtime.NewBroker(realtime.DefaultBufferSize)

	notificationService = services.NewNotificationService(database, guard, broker)
	messageService = services.NewMessageService(database, guard, notificationService, hub)
	projectService = services.NewProjectService(database, guard, notificationService)
	taskService = services.NewTaskService(database, guard, notificationService)
	userService = services.NewUserService(database, guard, notificationService)
}
