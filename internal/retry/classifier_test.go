package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestPostgreSQLErrorClassifier_IsTransient(t *testing.T) {
	c := NewPostgreSQLErrorClassifier()

	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"nil", nil, false},
		{"connection failure 08006", &pgconn.PgError{Code: "08006"}, true},
		{"too many connections 53300", &pgconn.PgError{Code: "53300"}, true},
		{"admin shutdown 57P01", &pgconn.PgError{Code: "57P01"}, true},
		{"serialization failure 40001", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock 40P01", &pgconn.PgError{Code: "40P01"}, true},
		{"lock not available 55P03", &pgconn.PgError{Code: "55P03"}, true},
		{"unique violation 23505", &pgconn.PgError{Code: "23505"}, false},
		{"undefined table 42P01", &pgconn.PgError{Code: "42P01"}, false},
		{"wrapped pg error", fmt.Errorf("insert module: %w", &pgconn.PgError{Code: "40001"}), true},
		{"connection refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, true},
		{"connection reset", &net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET}, true},
		{"permission denied", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.EACCES}, false},
		{"temporary dns", &net.DNSError{Err: "server misbehaving", IsTemporary: true}, true},
		{"permanent dns", &net.DNSError{Err: "not found", IsNotFound: true}, false},
		{"message only", errors.New("failed to connect: server closed the connection unexpectedly"), true},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", fmt.Errorf("dial: %w", context.DeadlineExceeded), false},
		{"plain error", errors.New("password authentication failed"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsTransient(tt.err); got != tt.transient {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.transient)
			}
		})
	}
}

func TestIsTransientCode(t *testing.T) {
	for _, code := range []string{"08000", "08P01", "53100", "57P03", "40001"} {
		if !IsTransientCode(code) {
			t.Errorf("expected %s to be transient", code)
		}
	}
	for _, code := range []string{"", "23503", "22001", "40002", "XX000"} {
		if IsTransientCode(code) {
			t.Errorf("expected %s to be fatal", code)
		}
	}
}
