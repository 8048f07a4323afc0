package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"feeltrack/internal/apperr"
	"feeltrack/pkg/logger"
)

// respondError maps service errors to status codes. resource names what the request was
// about ("user", "conversation", "message") and shapes the 403/404 messages.
func respondError(c *gin.Context, log *zap.Logger, err error, resource string) {
	var dup *apperr.DuplicateError
	switch {
	case errors.As(err, &dup):
		c.JSON(http.StatusBadRequest, gin.H{"error": duplicateMessage(dup.Field)})
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to access this " + resource})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": strings.ToUpper(resource[:1]) + resource[1:] + " not found"})
	case errors.Is(err, apperr.ErrInvalid):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		logger.WithTrace(c.Request.Context(), log).Error("Unhandled error",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func duplicateMessage(field string) string {
	switch field {
	case "username":
		return "Username already exists"
	case "email":
		return "Email already exists"
	}
	return "Resource already exists"
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": msg})
}

// intParam reads a positive integer path parameter, answering 422 if it is malformed.
func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

// caller resolves who is making the request. explicit is the user id the request names
// (path, query or body), 0 if none. A token-authenticated caller naming a different user
// is refused; without a token the explicit id is trusted.
func caller(c *gin.Context, explicit int) (int, bool) {
	if v, ok := c.Get(callerKey); ok {
		tokenUser := v.(int)
		if explicit != 0 && explicit != tokenUser {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to access this resource"})
			return 0, false
		}
		return tokenUser, true
	}
	if explicit == 0 {
		badRequest(c, "user_id is required")
		return 0, false
	}
	return explicit, true
}

// queryCaller is caller with the explicit id taken from ?user_id=.
func queryCaller(c *gin.Context) (int, bool) {
	raw := c.Query("user_id")
	if raw == "" {
		return caller(c, 0)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		badRequest(c, "invalid user_id")
		return 0, false
	}
	return caller(c, id)
}
