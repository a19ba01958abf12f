package aggregates

import (
	"context"
	"errors"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yungbote/tweetarchive/internal/domain/ingest"
	"gorm.io/gorm"
)

// MapError maps driver and gorm failures onto ingest error codes. Only a
// unique-key violation becomes CodeDuplicate; anything unrecognised is
// CodeUnexpected.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ingErr *ingest.Error
	if errors.As(err, &ingErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ingest.Wrap(ingest.CodeDuplicate, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ingest.Wrap(ingest.CodeUnexpected, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return ingest.Wrap(ingest.CodeDuplicate, op, err) // unique_violation
		default:
			return ingest.Wrap(ingest.CodeUnexpected, op, err)
		}
	}

	var myErr *gomysql.MySQLError
	if errors.As(err, &myErr) {
		if myErr.Number == 1062 { // ER_DUP_ENTRY
			return ingest.Wrap(ingest.CodeDuplicate, op, err)
		}
		return ingest.Wrap(ingest.CodeUnexpected, op, err)
	}

	if IsUniqueViolationMessage(err.Error()) {
		return ingest.Wrap(ingest.CodeDuplicate, op, err)
	}
	return ingest.Wrap(ingest.CodeUnexpected, op, err)
}

// IsUniqueViolationMessage recognises unique-key failures by text for
// drivers whose errors were flattened before reaching us.
func IsUniqueViolationMessage(msg string) bool {
	msg = strings.ToLower(strings.TrimSpace(msg))
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "unique constraint failed")
}
