package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/taskfleet/taskfleet/internal/types"
)

func GetCurrentUser(ctx *gin.Context) (types.Principal, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return types.Principal{}, fmt.Errorf("user not authenticated")
	}

	principal, ok := user.(types.Principal)

	if !ok {
		return types.Principal{}, fmt.Errorf("invalid user type in context")
	}

	return principal, nil
}
