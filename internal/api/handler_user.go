package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"feeltrack/internal/model"
)

type UserService interface {
	Get(ctx context.Context, id int) (*model.User, error)
	Delete(ctx context.Context, id int) error
	Preferences(ctx context.Context, id int) (*model.Preferences, error)
	UpdatePreferences(ctx context.Context, id int, patch model.PreferencesPatch) (*model.Preferences, error)
}

type UserHandler struct {
	users  UserService
	logger *zap.Logger
}

func NewUserHandler(users UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// pathCaller resolves the caller for routes under /users/:user_id.
func pathCaller(c *gin.Context) (int, bool) {
	id, ok := intParam(c, "user_id")
	if !ok {
		return 0, false
	}
	return caller(c, id)
}

// Get handles GET /users/:user_id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathCaller(c)
	if !ok {
		return
	}

	u, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "user")
		return
	}
	c.JSON(http.StatusOK, newUserResponse(u))
}

// Delete handles DELETE /users/:user_id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathCaller(c)
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// GetPreferences handles GET /users/:user_id/preferences
func (h *UserHandler) GetPreferences(c *gin.Context) {
	id, ok := pathCaller(c)
	if !ok {
		return
	}

	prefs, err := h.users.Preferences(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "user")
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// UpdatePreferences handles PUT /users/:user_id/preferences
func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	id, ok := pathCaller(c)
	if !ok {
		return
	}

	var patch model.PreferencesPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid preferences: "+err.Error())
		return
	}

	prefs, err := h.users.UpdatePreferences(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, h.logger, err, "user")
		return
	}
	c.JSON(http.StatusOK, prefs)
}
