package server

import (
	"net/http"

	"github.com/Luismorlan/coursehub/model"
	. "github.com/Luismorlan/coursehub/utils/log"
	"github.com/gin-gonic/gin"
)

// Status codes of the public API: bad input is 422, every other
// failure is 410.
const (
	StatusValidation = http.StatusUnprocessableEntity
	StatusFailure    = http.StatusGone
)

func statusOf(err error) int {
	if model.IsValidation(err) {
		return StatusValidation
	}
	return StatusFailure
}

func respondError(c *gin.Context, err error) {
	status := statusOf(err)
	entry := Log.WithField("path", c.FullPath()).WithError(err)
	if status == StatusValidation {
		entry.Debug("rejecting invalid request")
	} else {
		entry.Warn("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{
		"status": status,
		"error":  err.Error(),
	})
}

func respondValidation(c *gin.Context, msg string, fields ...string) {
	respondError(c, model.NewValidationError(msg, fields...))
}
