package retry

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// transientClasses are SQLSTATE classes that are retryable as a whole:
// connection exceptions, insufficient resources and operator intervention.
var transientClasses = []string{"08", "53", "57"}

// transientCodes are individual retryable SQLSTATE codes outside those classes.
var transientCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
}

// transientMessages match driver errors that carry no SQLSTATE.
var transientMessages = []string{
	"connection refused",
	"connection reset",
	"connection timeout",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"broken pipe",
	"server closed the connection",
	"unexpected eof",
	"the database system is starting up",
}

// PostgreSQLErrorClassifier recognizes transient PostgreSQL and network failures.
type PostgreSQLErrorClassifier struct{}

// NewPostgreSQLErrorClassifier creates a classifier.
func NewPostgreSQLErrorClassifier() *PostgreSQLErrorClassifier {
	return &PostgreSQLErrorClassifier{}
}

// IsTransient reports whether retrying err may succeed.
// Context cancellation is never transient.
func (c *PostgreSQLErrorClassifier) IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return IsTransientCode(pgErr.Code)
	}

	if isTransientNetError(err) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range transientMessages {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// IsTransientCode reports whether a SQLSTATE code denotes a transient condition.
func IsTransientCode(code string) bool {
	if transientCodes[code] {
		return true
	}
	for _, class := range transientClasses {
		if strings.HasPrefix(code, class) {
			return true
		}
	}
	return false
}

func isTransientNetError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}

	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	if opErr.Timeout() {
		return true
	}
	for _, errno := range []syscall.Errno{syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ENETUNREACH, syscall.EHOSTUNREACH} {
		if errors.Is(opErr.Err, errno) {
			return true
		}
	}
	return false
}
