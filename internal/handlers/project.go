package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskfleet/taskfleet/internal/domain"
	"github.com/taskfleet/taskfleet/internal/services"
	"github.com/taskfleet/taskfleet/internal/utils"
)

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type UpdateProjectStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func CreateProject(ctx *gin.Context) {
	principal, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, domain.Unauthorized("user not authenticated"))
		return
	}

	var body CreateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		respondError(ctx, domain.BadRequest("invalid request"))
		return
	}

	project, err := projectService.Create(services.CreateProjectInput{
		Name:        body.Name,
		Description: body.Description,
	}, principal)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, project)
}

func UpdateProject(ctx *gin.Context) {
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

	var body UpdateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		respondError(ctx, domain.BadRequest("invalid request"))
		return
	}

	project, err := projectService.Update(projectID, services.UpdateProjectInput{
		Name:        body.Name,
		Description: body.Description,
	}, principal)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, project)
}

func UpdateProjectStatus(ctx *gin.Context) {
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

	var body UpdateProjectStatusRequest

	if err := ctx.BindJSON(&body); err != nil {
		respondError(ctx, domain.BadRequest("invalid request"))
		return
	}

	status, err := domain.ParseProjectStatus(body.Status)

	if err != nil {
		respondError(ctx, err)
		return
	}

	project, err := projectService.UpdateStatus(projectID, status, principal)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, project)
}

func GetMyProjects(ctx *gin.Context) {
	principal, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, domain.Unauthorized("user not authenticated"))
		return
	}

	projects, err := projectService.ListByUser(nil, principal)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, projects)
}

func GetProjectsByUser(ctx *gin.Context) {
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

	projects, err := projectService.ListByUser(&userID, principal)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, projects)
}

func GetProject(ctx *gin.Context) {
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

	project, err := projectService.Get(projectID, principal)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, project)
}

func AddProjectMember(ctx *gin.Context) {
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

	userID, err := utils.GetUserID(ctx)

	if err != nil {
		respondError(ctx, domain.BadRequest(err.Error()))
		return
	}

	project, err := projectService.AddMember(projectID, userID, principal)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, project)
}

func RemoveProjectMember(ctx *gin.Context) {
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

	userID, err := utils.GetUserID(ctx)

	if err != nil {
		respondError(ctx, domain.BadRequest(err.Error()))
		return
	}

	project, err := projectService.RemoveMember(projectID, userID, principal)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, project)
}

func DeleteProject(ctx *gin.Context) {
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

	if err := projectService.Delete(projectID, principal); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
