package handlers

import (
	"errors"
	"net/http"

	"github.com/ArowuTest/giveaway-draw-backend/internal/apperror"
	"github.com/ArowuTest/giveaway-draw-backend/internal/middleware"
	"github.com/ArowuTest/giveaway-draw-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	if errors.Is(err, services.ErrInvalidCredentials) {
		return http.StatusUnauthorized
	}
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindStateConflict:
		return http.StatusConflict
	case apperror.KindEligibility:
		return http.StatusUnprocessableEntity
	case apperror.KindDependency:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	switch status {
	case http.StatusInternalServerError:
		slog.Error("Request failed", "error", err, "path", c.FullPath())
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	case http.StatusServiceUnavailable:
		// Driver errors stay in the log.
		slog.Error("Dependency unavailable", "error", err, "path", c.FullPath())
		c.JSON(status, gin.H{"error": apperror.Message(err)})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseObjectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func adminID(c *gin.Context) string {
	return c.GetString(middleware.ContextAdminID)
}
