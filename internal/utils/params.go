package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

func GetIDParam(ctx *gin.Context, name string) (uint, error) {
	idStr := ctx.Param(name)

	if idStr == "" {
		return 0, errors.New(name + " not found")
	}

	id, err := strconv.ParseUint(idStr, 10, 32)

	if err != nil {
		return 0, errors.New("invalid " + name)
	}

	return uint(id), nil
}

func GetProjectID(ctx *gin.Context) (uint, error) {
	return GetIDParam(ctx, "project_id")
}

func GetUserID(ctx *gin.Context) (uint, error) {
	return GetIDParam(ctx, "user_id")
}

func GetTaskID(ctx *gin.Context) (uint, error) {
	return GetIDParam(ctx, "task_id")
}

func GetMessageID(ctx *gin.Context) (uint, error) {
	return GetIDParam(ctx, "message_id")
}

func GetNotificationID(ctx *gin.Context) (uint, error) {
	return GetIDParam(ctx, "notification_id")
}
