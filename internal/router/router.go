package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/taskfleet/taskfleet/internal/handlers"
	"github.com/taskfleet/taskfleet/internal/middleware"
	"github.com/taskfleet/taskfleet/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/:topic_kind/:id", middleware.AuthMiddleware(), handlers.WebSocket)
		api.GET("/stream/notifications", middleware.AuthMiddleware(), handlers.StreamNotifications)

		users := api.Group("/users")
		{
			users.POST("", handlers.RegisterUser)
			users.POST("/login", handlers.LoginUser)

			authed := users.Group("", middleware.AuthMiddleware())
			{
				authed.GET("", handlers.ListUsers)
				authed.GET("/role", handlers.ListUsersByRole)
				authed.GET("/:user_id", handlers.GetUser)
				authed.PUT("/me", handlers.UpdateMe)
				authed.PUT("/me/password", handlers.ChangePassword)
				authed.PUT("/:user_id/role", handlers.UpdateUserRole)
				authed.DELETE("/me", handlers.DeleteMe)
				authed.DELETE("/:user_id", handlers.DeleteUser)
			}
		}

		projects := api.Group("/projects", middleware.AuthMiddleware())
		{
			projects.POST("", handlers.CreateProject)
			projects.GET("/me", handlers.GetMyProjects)
			projects.GET("/user/:user_id", handlers.GetProjectsByUser)
			projects.GET("/:project_id", handlers.GetProject)
			projects.PUT("/:project_id", handlers.UpdateProject)
			projects.PUT("/:project_id/status", handlers.UpdateProjectStatus)
			projects.PUT("/:project_id/users/:user_id", handlers.AddProjectMember)
			projects.DELETE("/:project_id/users/:user_id", handlers.RemoveProjectMember)
			projects.DELETE("/:project_id", handlers.DeleteProject)
		}

		tasks := api.Group("/tasks", middleware.AuthMiddleware())
		{
			tasks.POST("/projects/:project_id", handlers.CreateTask)
			tasks.GET("/projects/:project_id", handlers.GetProjectTasks)
			tasks.GET("/users/me", handlers.GetMyTasks)
			tasks.GET("/user/:user_id", handlers.GetTasksByUser)
			tasks.PUT("/:task_id", handlers.UpdateTask)
			tasks.PUT("/:task_id/status", handlers.UpdateTaskStatus)
			tasks.DELETE("/:task_id", handlers.DeleteTask)
		}

		messages := api.Group("/messages", middleware.AuthMiddleware())
		{
			messages.POST("/projects/:project_id", handlers.SendMessage)
			messages.GET("/search", handlers.SearchMessages)
			messages.GET("/:message_id", handlers.GetMessage)
			messages.PUT("/:message_id/read", handlers.MarkMessageRead)
			messages.DELETE("/:message_id", handlers.DeleteMessage)
		}

		notifications := api.Group("/notifications", middleware.AuthMiddleware())
		{
			notifications.GET("/me", handlers.GetMyNotifications)
			notifications.GET("/me/not-read", handlers.GetMyUnreadNotifications)
			notifications.PUT("/me/read-all", handlers.MarkAllNotificationsRead)
			notifications.PUT("/:notification_id/read", handlers.MarkNotificationRead)
			notifications.DELETE("/:notification_id", handlers.DeleteNotification)
		}
	}

	return r
}
