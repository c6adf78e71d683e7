package option

import (
	"strings"

	"gorm.io/gorm"
)

// QueryOption mutates a gorm statement before execution.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type optionFunc func(db *gorm.DB) *gorm.DB

func (f optionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// SortBy is a validated ORDER BY clause.
type SortBy struct {
	Column    string
	Direction string
}

// WithQuerySortBy validates the requested column against an allow-list and
// falls back to created_at DESC.
func WithQuerySortBy(column, direction string, allowed map[string]bool) SortBy {
	column = strings.ToLower(strings.TrimSpace(column))
	if !allowed[column] {
		column = "created_at"
	}
	direction = strings.ToUpper(strings.TrimSpace(direction))
	if direction != "ASC" {
		direction = "DESC"
	}
	return SortBy{Column: column, Direction: direction}
}

func WithSortBy(sort SortBy) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if sort.Column == "" {
			return db
		}
		return db.Order(sort.Column + " " + sort.Direction)
	})
}

func WithLimit(limit int) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	})
}

func WithWhere(query string, args ...any) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	})
}
