package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"clientdesk/internal/model"
)

// writeError maps domain errors onto HTTP statuses and the shared
// {"error": ...} body shape.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrInvalidTransition):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
