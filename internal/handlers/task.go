package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskfleet/taskfleet/internal/domain"
	"github.com/taskfleet/taskfleet/internal/services"
	"github.com/taskfleet/taskfleet/internal/utils"
)

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	OwnerID     *uint   `json:"owner_id"`
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func CreateTask(ctx *gin.Context) {
	principal, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, domain.Unauthorized("user not authenticated"))
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		respondError(ctx, domain.BadRequest(err.Error()))
		return
	}

	var body CreateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		respondError(ctx, domain.BadRequest("invalid request"))
		return
	}

	task, err := taskService.Create(projectID, services.CreateTaskInput{
		Title:       body.Title,
		Description: body.Description,
	}, principal)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, task)
}

func UpdateTask(ctx *gin.Context) {
	principal, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, domain.Unauthorized("user not authenticated"))
		return
	}

	taskID, err := utils.GetTaskID(ctx)

	if err != nil {
		respondError(ctx, domain.BadRequest(err.Error()))
		return
	}

	var body UpdateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		respondError(ctx, domain.BadRequest("invalid request"))
		return
	}

	task, err := taskService.Update(taskID, services.UpdateTaskInput{
		Title:       body.Title,
		Description: body.Description,
		OwnerID:     body.OwnerID,
	}, principal)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, task)
}

func UpdateTaskStatus(ctx *gin.Context) {
	principal, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, domain.Unauthorized("user not authenticated"))
		return
	}

	taskID, err := utils.GetTaskID(ctx)

	if err != nil {
		respondError(ctx, domain.BadRequest(err.Error()))
		return
	}

	var body UpdateTaskStatusRequest

	if err := ctx.BindJSON(&body); err != nil {
		respondError(ctx, domain.BadRequest("invalid request"))
		return
	}

	status, err := domain.ParseTaskStatus(body.Status)

	if err != nil {
		respondError(ctx, err)
		return
	}

	task, err := taskService.ChangeStatus(taskID, status, principal)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, task)
}

func GetProjectTasks(ctx *gin.Context) {
	principal, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, domain.Unauthorized("user not authenticated"))
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		respondError(ctx, domain.BadRequest(err.Error()))
		return
	}

	tasks, err := taskService.ListByProject(projectID, principal)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, tasks)
}

func GetMyTasks(ctx *gin.Context) {
	principal, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, domain.Unauthorized("user not authenticated"))
		return
	}

	tasks, err := taskService.ListMine(principal)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, tasks)
}

func GetTasksByUser(ctx *gin.Context) {
	principal, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, domain.Unauthorized("user not authenticated"))
		return
	}

	userID, err := utils.GetUserID(ctx)

	if err != nil {
		respondError(ctx, domain.BadRequest(err.Error()))
		return
	}

	tasks, err := taskService.ListByUser(userID, principal)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, tasks)
}

func DeleteTask(ctx *gin.Context) {
	principal, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, domain.Unauthorized("user not authenticated"))
		return
	}

	taskID, err := utils.GetTaskID(ctx)

	if err != nil {
		respondError(ctx, domain.BadRequest(err.Error()))
		return
	}

	if err := taskService.Delete(taskID, principal); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
