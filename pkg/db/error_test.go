package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"pg unique", &pgconn.PgError{Code: "23505"}, true},
		{"pg other", &pgconn.PgError{Code: "23503"}, false},
		{"mysql", errors.New("Error 1062 (23000): Duplicate entry"), true},
		{"other", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDuplicateKeyErr(tt.err))
		})
	}
}

type uniqueRow struct {
	ID    int64  `gorm:"primaryKey"`
	Email string `gorm:"uniqueIndex"`
}

func TestSQLiteUniqueViolationIsDetected(t *testing.T) {
	conn, err := NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&uniqueRow{}))

	require.NoError(t, conn.Create(&uniqueRow{ID: 1, Email: "a@example.com"}).Error)
	err = conn.Create(&uniqueRow{ID: 2, Email: "a@example.com"}).Error
	assert.True(t, IsDuplicateKeyErr(err))
}
