package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"feeltrack/internal/model"
	"feeltrack/internal/service/conversation"
)

type ConversationService interface {
	CreateConversation(ctx context.Context, owner int, title string) (*model.Conversation, error)
	ListConversations(ctx context.Context, userID int) ([]model.Conversation, error)
	ListMessages(ctx context.Context, conversationID int) ([]model.Message, error)
	Authorize(ctx context.Context, conversationID, callerID int) error
	SendMessage(ctx context.Context, in conversation.SendInput) (*model.Message, error)
	ListSupportive(ctx context.Context, userID int) ([]model.SupportiveMessage, error)
	MarkSupportiveRead(ctx context.Context, messageID, callerID int) error
}

type ConversationHandler struct {
	conversations ConversationService
	logger        *zap.Logger
}

func NewConversationHandler(conversations ConversationService, logger *zap.Logger) *ConversationHandler {
	return &ConversationHandler{conversations: conversations, logger: logger}
}

// List handles GET /users/:user_id/conversations
func (h *ConversationHandler) List(c *gin.Context) {
	userID, ok := pathCaller(c)
	if !ok {
		return
	}

	list, err := h.conversations.ListConversations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "user")
		return
	}
	c.JSON(http.StatusOK, list)
}

// Create handles POST /users/:user_id/conversations?title=
func (h *ConversationHandler) Create(c *gin.Context) {
	userID, ok := pathCaller(c)
	if !ok {
		return
	}

	conv, err := h.conversations.CreateConversation(c.Request.Context(), userID, c.Query("title"))
	if err != nil {
		respondError(c, h.logger, err, "user")
		return
	}
	c.JSON(http.StatusOK, conv)
}

// Messages handles GET /conversations/:conversation_id/messages?user_id=
func (h *ConversationHandler) Messages(c *gin.Context) {
	conversationID, ok := intParam(c, "conversation_id")
	if !ok {
		return
	}
	callerID, ok := queryCaller(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.conversations.Authorize(ctx, conversationID, callerID); err != nil {
		respondError(c, h.logger, err, "conversation")
		return
	}

	messages, err := h.conversations.ListMessages(ctx, conversationID)
	if err != nil {
		respondError(c, h.logger, err, "conversation")
		return
	}
	c.JSON(http.StatusOK, messages)
}

// Send handles POST /conversations/message
func (h *ConversationHandler) Send(c *gin.Context) {
	var req struct {
		Content        string `json:"content" binding:"required"`
		ConversationID *int   `json:"conversation_id"`
		UserID         int    `json:"user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "content is required")
		return
	}
	callerID, ok := caller(c, req.UserID)
	if !ok {
		return
	}

	// a zero conversation id means "start a new one"
	if req.ConversationID != nil && *req.ConversationID == 0 {
		req.ConversationID = nil
	}

	msg, err := h.conversations.SendMessage(c.Request.Context(), conversation.SendInput{
		UserID:         callerID,
		ConversationID: req.ConversationID,
		Content:        req.Content,
	})
	if err != nil {
		// without a conversation id the only thing that can be missing is the user
		resource := "conversation"
		if req.ConversationID == nil {
			resource = "user"
		}
		respondError(c, h.logger, err, resource)
		return
	}
	c.JSON(http.StatusOK, []*model.Message{msg})
}

// ListSupportive handles GET /users/:user_id/supportive-messages
func (h *ConversationHandler) ListSupportive(c *gin.Context) {
	userID, ok := pathCaller(c)
	if !ok {
		return
	}

	messages, err := h.conversations.ListSupportive(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "user")
		return
	}
	c.JSON(http.StatusOK, messages)
}

// MarkRead handles PUT /supportive-messages/:message_id/read?user_id=
func (h *ConversationHandler) MarkRead(c *gin.Context) {
	messageID, ok := intParam(c, "message_id")
	if !ok {
		return
	}
	callerID, ok := queryCaller(c)
	if !ok {
		return
	}

	if err := h.conversations.MarkSupportiveRead(c.Request.Context(), messageID, callerID); err != nil {
		respondError(c, h.logger, err, "message")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
