package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"feeltrack/internal/apperr"
	"feeltrack/internal/model"
)

type SupportiveMessageRepository struct {
	db *pgxpool.Pool
}

func NewSupportiveMessageRepository(db *pgxpool.Pool) *SupportiveMessageRepository {
	return &SupportiveMessageRepository{db: db}
}

// Create stores an unread supportive message for userID.
func (r *SupportiveMessageRepository) Create(ctx context.Context, userID int, content string) (*model.SupportiveMessage, error) {
	m := &model.SupportiveMessage{UserID: userID, Content: content}
	query := `
		INSERT INTO supportive_messages (user_id, content)
		VALUES ($1, $2)
		RETURNING message_id, is_read, created_at
	`
	if err := r.db.QueryRow(ctx, query, userID, content).Scan(&m.ID, &m.IsRead, &m.CreatedAt); err != nil {
		return nil, apperr.FromPg(err)
	}
	return m, nil
}

// ListUnread returns the user's unread supportive messages, newest first.
func (r *SupportiveMessageRepository) ListUnread(ctx context.Context, userID int) ([]model.SupportiveMessage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT message_id, user_id, content, is_read, created_at, sent_at
		FROM supportive_messages
		WHERE user_id = $1 AND is_read = FALSE
		ORDER BY created_at DESC, message_id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []model.SupportiveMessage{}
	for rows.Next() {
		var m model.SupportiveMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Content, &m.IsRead, &m.CreatedAt, &m.SentAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *SupportiveMessageRepository) OwnerOf(ctx context.Context, id int) (int, error) {
	var owner int
	err := r.db.QueryRow(ctx, `SELECT user_id FROM supportive_messages WHERE message_id = $1`, id).Scan(&owner)
	if err != nil {
		return 0, apperr.FromPg(err)
	}
	return owner, nil
}

// MarkRead is idempotent; marking an already-read message succeeds.
func (r *SupportiveMessageRepository) MarkRead(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `UPDATE supportive_messages SET is_read = TRUE WHERE message_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// MarkSent records that the message was handed to the delivery channel.
func (r *SupportiveMessageRepository) MarkSent(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `UPDATE supportive_messages SET sent_at = NOW() WHERE message_id = $1`, id)
	return err
}

// ListUnsent returns messages created before cutoff whose event was never published,
// oldest first.
func (r *SupportiveMessageRepository) ListUnsent(ctx context.Context, cutoff time.Time, limit int) ([]model.SupportiveMessage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT message_id, user_id, content, is_read, created_at, sent_at
		FROM supportive_messages
		WHERE sent_at IS NULL AND created_at < $1
		ORDER BY created_at ASC, message_id ASC
		LIMIT $2
	`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []model.SupportiveMessage{}
	for rows.Next() {
		var m model.SupportiveMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Content, &m.IsRead, &m.CreatedAt, &m.SentAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// ListNotificationCandidates returns every user with notifications enabled, their
// schedule, and the creation time of their latest supportive message.
func (r *SupportiveMessageRepository) ListNotificationCandidates(ctx context.Context) ([]model.NotificationCandidate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.user_id, p.notification_frequency, p.active_hours_start, p.active_hours_end,
		       MAX(s.created_at) AS last_message_time
		FROM users u
		JOIN user_preferences p ON p.user_id = u.user_id
		LEFT JOIN supportive_messages s ON s.user_id = u.user_id
		WHERE p.notifications_enabled = TRUE
		GROUP BY u.user_id, p.notification_frequency, p.active_hours_start, p.active_hours_end
		ORDER BY u.user_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := []model.NotificationCandidate{}
	for rows.Next() {
		var (
			c          model.NotificationCandidate
			start, end pgtype.Time
		)
		if err := rows.Scan(&c.UserID, &c.NotificationFrequency, &start, &end, &c.LastMessageAt); err != nil {
			return nil, err
		}
		c.ActiveHoursStart = model.ClockFromMicroseconds(start.Microseconds)
		c.ActiveHoursEnd = model.ClockFromMicroseconds(end.Microseconds)
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}
