package database

import (
	"strings"
	"testing"
)

func TestDSN(t *testing.T) {
	dsn := DSN("app", "s3cret", "db.internal", "3306", "photoshare")
	if !strings.HasPrefix(dsn, "app:s3cret@tcp(db.internal:3306)/photoshare?") {
		t.Errorf("unexpected DSN prefix: %s", dsn)
	}
	for _, param := range []string{"parseTime=true", "loc=UTC", "charset=utf8mb4"} {
		if !strings.Contains(dsn, param) {
			t.Errorf("DSN missing %s: %s", param, dsn)
		}
	}
	// Without clientFoundRows the driver reports changed rows, and an UPDATE
	// that writes an identical value back looks like a missing row. The
	// repositories map zero affected rows to a not-found error, so this
	// option must stay on or idempotent updates start failing.
	if !strings.Contains(dsn, "clientFoundRows=true") {
		t.Errorf("DSN missing clientFoundRows=true: %s", dsn)
	}
}

func TestDSN_NoPassword(t *testing.T) {
	dsn := DSN("app", "", "localhost", "3306", "photoshare")
	if !strings.HasPrefix(dsn, "app@tcp(") {
		t.Errorf("expected bare user with empty password, got %s", dsn)
	}
}
