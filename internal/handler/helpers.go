package handler

import (
	"errors"
	"net/http"

	"ideaboard/internal/middleware"
	"ideaboard/internal/service"
	"ideaboard/internal/undo"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// currentUser returns the authenticated user or writes the error response.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	if _, exists := c.Get(middleware.UserIDKey); !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return uuid.Nil, false
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return uuid.Nil, false
	}
	return userID, true
}

// pathID parses a uuid path parameter. what names the resource in the error.
func pathID(c *gin.Context, param, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + what + " ID format"})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service errors onto status codes. notFound and
// forbidden are the messages shown for those two cases, fallback for
// anything unexpected.
func respondError(c *gin.Context, err error, notFound, forbidden, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": forbidden})
	case errors.Is(err, service.ErrInvalidMove):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid position"})
	case errors.Is(err, service.ErrActionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Action not found or already settled"})
	case errors.Is(err, undo.ErrCommitInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "Action is already being committed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
