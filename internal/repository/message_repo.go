package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"feeltrack/internal/apperr"
	"feeltrack/internal/model"
	pkgdb "feeltrack/pkg/db"
)

type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Append bumps the conversation's updated_at and inserts the message in a single
// transaction. A missing conversation yields apperr.ErrNotFound and nothing is written.
func (r *MessageRepository) Append(ctx context.Context, conversationID int, content string, isUser bool, reframe *string) (*model.Message, error) {
	m := &model.Message{
		ConversationID:  conversationID,
		Content:         content,
		IsUser:          isUser,
		PositiveReframe: reframe,
	}

	err := pkgdb.InTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE conversations SET updated_at = NOW() WHERE conversation_id = $1`, conversationID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperr.ErrNotFound
		}

		query := `
			INSERT INTO messages (conversation_id, is_user, content, positive_reframe)
			VALUES ($1, $2, $3, $4)
			RETURNING message_id, timestamp
		`
		return tx.QueryRow(ctx, query, conversationID, isUser, content, reframe).Scan(&m.ID, &m.Timestamp)
	})
	if err != nil {
		return nil, apperr.FromPg(err)
	}
	return m, nil
}

const messageColumns = `message_id, conversation_id, is_user, content, positive_reframe, timestamp`

func (r *MessageRepository) list(ctx context.Context, query string, args ...any) ([]model.Message, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.IsUser, &m.Content, &m.PositiveReframe, &m.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// ListByConversation returns every message in chronological order.
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID int) ([]model.Message, error) {
	return r.list(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE conversation_id = $1
		ORDER BY timestamp ASC, message_id ASC
	`, conversationID)
}

// Recent returns up to limit messages, newest first.
func (r *MessageRepository) Recent(ctx context.Context, conversationID, limit int) ([]model.Message, error) {
	return r.list(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE conversation_id = $1
		ORDER BY timestamp DESC, message_id DESC
		LIMIT $2
	`, conversationID, limit)
}

func (r *MessageRepository) FindByID(ctx context.Context, id int) (*model.Message, error) {
	var m model.Message
	err := r.db.QueryRow(ctx, `SELECT `+messageColumns+` FROM messages WHERE message_id = $1`, id).
		Scan(&m.ID, &m.ConversationID, &m.IsUser, &m.Content, &m.PositiveReframe, &m.Timestamp)
	if err != nil {
		return nil, apperr.FromPg(err)
	}
	return &m, nil
}
