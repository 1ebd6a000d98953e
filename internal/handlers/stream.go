package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/taskfleet/taskfleet/internal/domain"
	"github.com/taskfleet/taskfleet/internal/utils"
)

// StreamNotifications attaches the caller to the notification stream
// over server-sent events. The subscription is keyed by the
// principal's user id so direct notices reach only their own
// connections; project-wide notices reach every subscriber.
func StreamNotifications(ctx *gin.Context) {
	principal, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, domain.Unauthorized("user not authenticated"))
		return
	}

	sub := broker.Subscribe(principal.ID)
	defer broker.Unsubscribe(sub.ID)

	ctx.Writer.Header().Set("Cache-Control", "no-cache")
	ctx.Writer.Header().Set("Connection", "keep-alive")

	ctx.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-sub.Events:
			if !ok {
				return false
			}
			ctx.SSEvent("notification", event)
			return true
		case <-ctx.Request.Context().Done():
			return false
		}
	})
}
