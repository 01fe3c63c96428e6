package handler

import (
	"errors"
	"net/http"
	"strconv"

	"flatgripe/backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// respondError renders err as {"error": code, "message": msg}.
// Errors that are not AppErrors are reported as internal without their details.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var appErr *utils.AppError
	if !errors.As(err, &appErr) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "INTERNAL",
			"message": "internal server error",
		})
		return
	}

	status := utils.AppErrorToHTTPStatus(appErr.Code)
	message := appErr.Message
	if status >= http.StatusInternalServerError {
		message = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": appErr.Code, "message": message})
}

func idParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, utils.NewValidationError("invalid " + name)
	}
	return uint(id), nil
}
