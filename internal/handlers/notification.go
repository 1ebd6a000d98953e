package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskfleet/taskfleet/internal/domain"
	"github.com/taskfleet/taskfleet/internal/utils"
)

func GetMyNotifications(ctx *gin.Context) {
	principal, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, domain.Unauthorized("user not authenticated"))
		return
	}

	notifications, err := notificationService.ListMine(principal)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, notifications)
}

func GetMyUnreadNotifications(ctx *gin.Context) {
	principal, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, domain.Unauthorized("user not authenticated"))
		return
	}

	notifications, err := notificationService.ListMineUnread(principal)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, notifications)
}

func MarkNotificationRead(ctx *gin.Context) {
	principal, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, domain.Unauthorized("user not authenticated"))
		return
	}

	notificationID, err := utils.GetNotificationID(ctx)

	if err != nil {
		respondError(ctx, domain.BadRequest(err.Error()))
		return
	}

	notification, err := notificationService.MarkRead(notificationID, principal)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, notification)
}

func MarkAllNotificationsRead(ctx *gin.Context) {
	principal, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, domain.Unauthorized("user not authenticated"))
		return
	}

	notifications, err := notificationService.MarkAllRead(principal)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, notifications)
}

func DeleteNotification(ctx *gin.Context) {
	principal, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, domain.Unauthorized("user not authenticated"))
		return
	}

	notificationID, err := utils.GetNotificationID(ctx)

	if err != nil {
		respondError(ctx, domain.BadRequest(err.Error()))
		return
	}

	if err := notificationService.Delete(notificationID, principal); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
