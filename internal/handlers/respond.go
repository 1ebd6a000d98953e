package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskfleet/taskfleet/internal/domain"
)

type errorBody struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
}

func statusName(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

// respondError maps a domain error to its status code and the uniform
// error body. Anything else is reported as a generic internal error
// without leaking detail.
func respondError(ctx *gin.Context, err error) {
	var domainErr *domain.Error

	if errors.As(err, &domainErr) {
		ctx.JSON(domainErr.Status, errorBody{
			Timestamp: time.Now(),
			Status:    domainErr.Status,
			Error:     statusName(domainErr.Status),
			Message:   domainErr.Message,
		})
		return
	}

	log.Printf("Unexpected error handling %s %s: %v", ctx.Request.Method, ctx.Request.URL.Path, err)

	ctx.JSON(http.StatusInternalServerError, errorBody{
		Timestamp: time.Now(),
		Status:    http.StatusInternalServerError,
		Error:     statusName(http.StatusInternalServerError),
		Message:   "unexpected internal error",
	})
}
