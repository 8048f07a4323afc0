package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"feeltrack/internal/apperr"
	"feeltrack/internal/model"
	pkgdb "feeltrack/pkg/db"
)

type PreferencesRepository struct {
	db *pgxpool.Pool
}

func NewPreferencesRepository(db *pgxpool.Pool) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

const selectPreferences = `
	SELECT user_id, notification_frequency, active_hours_start, active_hours_end,
	       notifications_enabled, theme
	FROM user_preferences
	WHERE user_id = $1
`

func scanPreferences(row pgx.Row) (*model.Preferences, error) {
	var (
		p          model.Preferences
		start, end pgtype.Time
	)
	if err := row.Scan(&p.UserID, &p.NotificationFrequency, &start, &end, &p.NotificationsEnabled, &p.Theme); err != nil {
		return nil, apperr.FromPg(err)
	}
	p.ActiveHoursStart = model.ClockFromMicroseconds(start.Microseconds)
	p.ActiveHoursEnd = model.ClockFromMicroseconds(end.Microseconds)
	return &p, nil
}

// Get returns the user's preferences, inserting the defaults first if the row is missing.
// An unknown user yields apperr.ErrNotFound.
func (r *PreferencesRepository) Get(ctx context.Context, userID int) (*model.Preferences, error) {
	var p *model.Preferences
	err := pkgdb.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_preferences (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
			return err
		}
		var err error
		p, err = scanPreferences(tx.QueryRow(ctx, selectPreferences, userID))
		return err
	})
	if err != nil {
		return nil, apperr.FromPg(err)
	}
	return p, nil
}

func clock(c *model.ClockTime) pgtype.Time {
	return pgtype.Time{Microseconds: c.Microseconds(), Valid: true}
}

// Update applies the non-nil fields of patch and returns the resulting row.
// Column names are fixed here; nothing from the patch reaches the SQL text.
func (r *PreferencesRepository) Update(ctx context.Context, userID int, patch model.PreferencesPatch) (*model.Preferences, error) {
	var (
		sets []string
		args = []any{userID}
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.NotificationFrequency != nil {
		add("notification_frequency", *patch.NotificationFrequency)
	}
	if patch.ActiveHoursStart != nil {
		add("active_hours_start", clock(patch.ActiveHoursStart))
	}
	if patch.ActiveHoursEnd != nil {
		add("active_hours_end", clock(patch.ActiveHoursEnd))
	}
	if patch.NotificationsEnabled != nil {
		add("notifications_enabled", *patch.NotificationsEnabled)
	}
	if patch.Theme != nil {
		add("theme", *patch.Theme)
	}

	if len(sets) == 0 {
		return r.Get(ctx, userID)
	}

	var p *model.Preferences
	err := pkgdb.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_preferences (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE user_preferences SET `+strings.Join(sets, ", ")+` WHERE user_id = $1`, args...); err != nil {
			return err
		}
		var err error
		p, err = scanPreferences(tx.QueryRow(ctx, selectPreferences, userID))
		return err
	})
	if err != nil {
		return nil, apperr.FromPg(err)
	}
	return p, nil
}
