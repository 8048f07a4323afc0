package conversation

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"feeltrack/internal/apperr"
	"feeltrack/internal/model"
	"feeltrack/pkg/logger"
)

type ConversationStore interface {
	Create(ctx context.Context, userID int, title string) (*model.Conversation, error)
	ListByUser(ctx context.Context, userID int) ([]model.Conversation, error)
	OwnerOf(ctx context.Context, id int) (int, error)
}

type MessageStore interface {
	Append(ctx context.Context, conversationID int, content string, isUser bool, reframe *string) (*model.Message, error)
	ListByConversation(ctx context.Context, conversationID int) ([]model.Message, error)
}

type SupportiveStore interface {
	OwnerOf(ctx context.Context, id int) (int, error)
	ListUnread(ctx context.Context, userID int) ([]model.SupportiveMessage, error)
	MarkRead(ctx context.Context, id int) error
}

// Responder generates the AI side of a conversation. Implementations never fail;
// they fall back to fixed text instead.
type Responder interface {
	Reply(ctx context.Context, history []model.Message, utterance string) string
	Reframe(ctx context.Context, utterance string) *string
}

// SweepTrigger starts a notification sweep without waiting for it.
type SweepTrigger interface {
	Trigger(ctx context.Context, userID int)
}

type Service struct {
	conversations ConversationStore
	messages      MessageStore
	supportive    SupportiveStore
	responder     Responder
	trigger       SweepTrigger
	logger        *zap.Logger
}

func NewService(
	conversations ConversationStore,
	messages MessageStore,
	supportive SupportiveStore,
	responder Responder,
	trigger SweepTrigger,
	logger *zap.Logger,
) *Service {
	return &Service{
		conversations: conversations,
		messages:      messages,
		supportive:    supportive,
		responder:     responder,
		trigger:       trigger,
		logger:        logger,
	}
}

func (s *Service) CreateConversation(ctx context.Context, owner int, title string) (*model.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = model.DefaultConversationTitle
	}
	if len(title) > 100 {
		return nil, apperr.Invalid("title must be at most 100 characters")
	}
	return s.conversations.Create(ctx, owner, title)
}

func (s *Service) ListConversations(ctx context.Context, userID int) ([]model.Conversation, error) {
	return s.conversations.ListByUser(ctx, userID)
}

// AppendMessage stores a message. A reframe is only kept on user-authored messages.
func (s *Service) AppendMessage(ctx context.Context, conversationID int, content string, isUser bool, reframe *string) (*model.Message, error) {
	if !isUser {
		reframe = nil
	}
	return s.messages.Append(ctx, conversationID, content, isUser, reframe)
}

// ListMessages returns the conversation's messages oldest first.
func (s *Service) ListMessages(ctx context.Context, conversationID int) ([]model.Message, error) {
	return s.messages.ListByConversation(ctx, conversationID)
}

// Authorize reports ErrNotFound when the conversation does not exist and ErrForbidden
// when it belongs to someone other than callerID.
func (s *Service) Authorize(ctx context.Context, conversationID, callerID int) error {
	owner, err := s.conversations.OwnerOf(ctx, conversationID)
	if err != nil {
		return err
	}
	if owner != callerID {
		return apperr.ErrForbidden
	}
	return nil
}

// AuthorizeSupportive applies the same ownership rule to supportive messages.
func (s *Service) AuthorizeSupportive(ctx context.Context, messageID, callerID int) error {
	owner, err := s.supportive.OwnerOf(ctx, messageID)
	if err != nil {
		return err
	}
	if owner != callerID {
		return apperr.ErrForbidden
	}
	return nil
}

func (s *Service) ListSupportive(ctx context.Context, userID int) ([]model.SupportiveMessage, error) {
	return s.supportive.ListUnread(ctx, userID)
}

// MarkSupportiveRead marks the caller's supportive message as read.
func (s *Service) MarkSupportiveRead(ctx context.Context, messageID, callerID int) error {
	if err := s.AuthorizeSupportive(ctx, messageID, callerID); err != nil {
		return err
	}
	return s.supportive.MarkRead(ctx, messageID)
}

type SendInput struct {
	UserID int
	// nil starts a new conversation
	ConversationID *int
	Content        string
}

// SendMessage runs one chat turn and returns the persisted AI message. Each store call
// holds a connection only for its own duration, never across a generator call.
func (s *Service) SendMessage(ctx context.Context, in SendInput) (*model.Message, error) {
	log := logger.WithTrace(ctx, s.logger).With(zap.Int("user_id", in.UserID))

	if strings.TrimSpace(in.Content) == "" {
		return nil, apperr.Invalid("content is required")
	}

	var conversationID int
	if in.ConversationID == nil {
		c, err := s.CreateConversation(ctx, in.UserID, "")
		if err != nil {
			return nil, err
		}
		conversationID = c.ID
		log.Info("Conversation started", zap.Int("conversation_id", conversationID))
	} else {
		conversationID = *in.ConversationID
		if err := s.Authorize(ctx, conversationID, in.UserID); err != nil {
			return nil, err
		}
	}

	reframe := s.responder.Reframe(ctx, in.Content)

	userMsg, err := s.AppendMessage(ctx, conversationID, in.Content, true, reframe)
	if err != nil {
		return nil, err
	}

	all, err := s.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	history := make([]model.Message, 0, len(all))
	for _, m := range all {
		if m.ID != userMsg.ID {
			history = append(history, m)
		}
	}

	reply := s.responder.Reply(ctx, history, in.Content)

	aiMsg, err := s.AppendMessage(ctx, conversationID, reply, false, nil)
	if err != nil {
		return nil, err
	}

	if s.trigger != nil {
		s.trigger.Trigger(ctx, in.UserID)
	}

	log.Info("Message exchanged",
		zap.Int("conversation_id", conversationID),
		zap.Int("user_message_id", userMsg.ID),
		zap.Int("ai_message_id", aiMsg.ID),
		zap.Bool("reframed", reframe != nil),
	)
	return aiMsg, nil
}
