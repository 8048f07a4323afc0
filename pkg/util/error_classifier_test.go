package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsRetryableError(t *testing.T) {
	var decoded map[string]any
	jsonErr := json.Unmarshal([]byte("{bad"), &decoded)

	tests := []struct {
		name      string
		err       error
		retryable bool
		errType   string
	}{
		{"nil", nil, false, ""},
		{"json", jsonErr, false, "json_decode_error"},
		{"no rows", fmt.Errorf("find: %w", pgx.ErrNoRows), false, "not_found"},
		{"duplicate", &pgconn.PgError{Code: "23505"}, false, "duplicate_key"},
		{"fk", &pgconn.PgError{Code: "23503"}, false, "constraint_violation"},
		{"connection", &pgconn.PgError{Code: "08006"}, true, "db_connection_error"},
		{"deadline", context.DeadlineExceeded, true, "timeout"},
		{"canceled", context.Canceled, false, "context_canceled"},
		{"other", errors.New("weird"), false, "unknown_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			retryable, errType := IsRetryableError(tt.err)
			if retryable != tt.retryable || errType != tt.errType {
				t.Errorf("IsRetryableError() = (%v, %q), want (%v, %q)",
					retryable, errType, tt.retryable, tt.errType)
			}
		})
	}
}
