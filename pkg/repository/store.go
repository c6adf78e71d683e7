// Package repository holds the generic gorm store shared by catalog style
// repositories (plans, coupons, invoices).
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/workhub/pkg/db/option"
	"gorm.io/gorm"
)

// Store reads and writes rows of T. Filters are struct values so zero fields
// are ignored; use option.WithWhere for explicit conditions.
type Store[T any] struct {
	db *gorm.DB
}

func NewStore[T any](db *gorm.DB) *Store[T] {
	return &Store[T]{db: db}
}

// WithTx binds the store to tx. A nil tx keeps the current handle.
func (s *Store[T]) WithTx(tx *gorm.DB) *Store[T] {
	if tx == nil {
		return s
	}
	return &Store[T]{db: tx}
}

func (s *Store[T]) Find(ctx context.Context, filter *T, opts ...option.QueryOption) ([]*T, error) {
	var rows []*T
	if err := s.query(ctx, filter, opts...).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// First returns nil, nil when no row matches.
func (s *Store[T]) First(ctx context.Context, filter *T, opts ...option.QueryOption) (*T, error) {
	var row T
	err := s.query(ctx, filter, opts...).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *Store[T]) Count(ctx context.Context, filter *T, opts ...option.QueryOption) (int64, error) {
	var n int64
	err := s.query(ctx, filter, opts...).Count(&n).Error
	return n, err
}

func (s *Store[T]) Create(ctx context.Context, row *T) error {
	return s.db.WithContext(ctx).Create(row).Error
}

func (s *Store[T]) CreateBatch(ctx context.Context, rows []*T) error {
	if len(rows) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(rows).Error
}

// UpdateColumns writes columns on the row with the given id and stamps
// updated_at unless the caller set it.
func (s *Store[T]) UpdateColumns(ctx context.Context, id any, columns map[string]any) error {
	if _, ok := columns["updated_at"]; !ok {
		columns["updated_at"] = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(columns).Error
}

func (s *Store[T]) Delete(ctx context.Context, id any) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(new(T)).Error
}

func (s *Store[T]) query(ctx context.Context, filter *T, opts ...option.QueryOption) *gorm.DB {
	stmt := s.db.WithContext(ctx).Model(new(T))
	if filter != nil {
		stmt = stmt.Where(filter)
	}
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}
	return stmt
}
