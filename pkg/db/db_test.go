package db

import (
	"strings"
	"testing"

	"feeltrack/pkg/config"
)

func TestDSN(t *testing.T) {
	got := DSN(config.DBConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "root",
		Password: "p@ss word",
		Name:     "mentalhealthdb",
	})

	if !strings.HasPrefix(got, "postgres://root:") {
		t.Errorf("DSN() = %q, want postgres://root:... prefix", got)
	}
	if !strings.Contains(got, "@localhost:5432/mentalhealthdb?sslmode=disable") {
		t.Errorf("DSN() = %q, missing host/db part", got)
	}
	if strings.Contains(got, "p@ss word") {
		t.Errorf("DSN() = %q, password should be escaped", got)
	}
}

func TestTruncateSQL(t *testing.T) {
	if got := truncateSQL("", 10); got != "unknown" {
		t.Errorf("truncateSQL(empty) = %q", got)
	}
	if got := truncateSQL("SELECT 1", 10); got != "SELECT 1" {
		t.Errorf("truncateSQL(short) = %q", got)
	}
	if got := truncateSQL("SELECT * FROM users", 6); got != "SELECT..." {
		t.Errorf("truncateSQL(long) = %q", got)
	}
}
