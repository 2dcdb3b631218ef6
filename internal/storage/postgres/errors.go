package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cimillas/events-api/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

// isUnavailable reports connection-level failures: refused or dropped
// connections (class 08), admin shutdown (57P01) and timeouts.
func isUnavailable(err error) bool {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	if pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "08") || pgErr.Code == "57P01"
	}
	return false
}

func wrapErr(op string, err error) error {
	switch {
	case isInvalidUUID(err):
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidID)
	case isUnavailable(err):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
