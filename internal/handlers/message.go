package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskfleet/taskfleet/internal/domain"
	"github.com/taskfleet/taskfleet/internal/utils"
)

type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

func SendMessage(ctx *gin.Context) {
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

	var body SendMessageRequest

	if err := ctx.BindJSON(&body); err != nil {
		respondError(ctx, domain.BadRequest("invalid request"))
		return
	}

	message, err := messageService.Send(projectID, body.Text, principal)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, message)
}

func MarkMessageRead(ctx *gin.Context) {
	principal, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, domain.Unauthorized("user not authenticated"))
		return
	}

	messageID, err := utils.GetMessageID(ctx)

	if err != nil {
		respondError(ctx, domain.BadRequest(err.Error()))
		return
	}

	message, err := messageService.MarkRead(messageID, principal)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, message)
}

func SearchMessages(ctx *gin.Context) {
	principal, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, domain.Unauthorized("user not authenticated"))
		return
	}

	projectIDStr := ctx.Query("project_id")
	projectID, err := strconv.ParseUint(projectIDStr, 10, 32)

	if err != nil {
		respondError(ctx, domain.BadRequest("invalid project_id"))
		return
	}

	messages, err := messageService.Search(uint(projectID), ctx.Query("text"), principal)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, messages)
}

func GetMessage(ctx *gin.Context) {
	principal, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, domain.Unauthorized("user not authenticated"))
		return
	}

	messageID, err := utils.GetMessageID(ctx)

	if err != nil {
		respondError(ctx, domain.BadRequest(err.Error()))
		return
	}

	message, err := messageService.Get(messageID, principal)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, message)
}

func DeleteMessage(ctx *gin.Context) {
	principal, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, domain.Unauthorized("user not authenticated"))
		return
	}

	messageID, err := utils.GetMessageID(ctx)

	if err != nil {
		respondError(ctx, domain.BadRequest(err.Error()))
		return
	}

	if err := messageService.Delete(messageID, principal); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
