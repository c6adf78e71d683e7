package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// duplicateKeyMessages covers drivers that surface unique violations only
// as text: lib/pq style postgres, MySQL 1062 and SQLite 2067.
var duplicateKeyMessages = []string{
	"duplicate key value violates unique constraint",
	"Error 1062",
	"UNIQUE constraint failed",
}

// IsDuplicateKeyErr reports a unique index violation, such as a second
// settings row for the same (owner, workspace, key) or a taken email.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	if pgErr := (*pgconn.PgError)(nil); errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	msg := err.Error()
	for _, m := range duplicateKeyMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
