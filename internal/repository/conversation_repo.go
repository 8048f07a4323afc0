package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"feeltrack/internal/apperr"
	"feeltrack/internal/model"
)

type ConversationRepository struct {
	db *pgxpool.Pool
}

func NewConversationRepository(db *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create inserts a conversation for userID. An unknown user yields apperr.ErrNotFound.
func (r *ConversationRepository) Create(ctx context.Context, userID int, title string) (*model.Conversation, error) {
	query := `
		INSERT INTO conversations (user_id, title)
		VALUES ($1, $2)
		RETURNING conversation_id, user_id, title, created_at, updated_at
	`
	return scanConversation(r.db.QueryRow(ctx, query, userID, title))
}

const conversationColumns = `conversation_id, user_id, title, created_at, updated_at`

func scanConversation(row pgx.Row) (*model.Conversation, error) {
	var c model.Conversation
	if err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, apperr.FromPg(err)
	}
	return &c, nil
}

func (r *ConversationRepository) FindByID(ctx context.Context, id int) (*model.Conversation, error) {
	return scanConversation(r.db.QueryRow(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE conversation_id = $1`, id))
}

// ListByUser returns the user's conversations, most recently updated first.
func (r *ConversationRepository) ListByUser(ctx context.Context, userID int) ([]model.Conversation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC, conversation_id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conversations := []model.Conversation{}
	for rows.Next() {
		var c model.Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

func (r *ConversationRepository) OwnerOf(ctx context.Context, id int) (int, error) {
	var owner int
	err := r.db.QueryRow(ctx, `SELECT user_id FROM conversations WHERE conversation_id = $1`, id).Scan(&owner)
	if err != nil {
		return 0, apperr.FromPg(err)
	}
	return owner, nil
}

// LatestForUser returns the most recently updated conversation, or nil if the user has none.
func (r *ConversationRepository) LatestForUser(ctx context.Context, userID int) (*model.Conversation, error) {
	c, err := scanConversation(r.db.QueryRow(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC, conversation_id DESC
		LIMIT 1
	`, userID))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	return c, err
}
