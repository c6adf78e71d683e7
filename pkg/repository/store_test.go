package repository

import (
	"context"
	"testing"
	"time"

	dbpkg "github.com/smallbiznis/workhub/pkg/db"
	"github.com/smallbiznis/workhub/pkg/db/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID        int64 `gorm:"primaryKey"`
	OwnerID   int64
	Name      string
	Rank      int
	UpdatedAt time.Time
}

func newWidgetStore(t *testing.T) *Store[widget] {
	t.Helper()
	db, err := dbpkg.NewTest()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&widget{}))
	return NewStore[widget](db)
}

func TestStoreFindAndFirst(t *testing.T) {
	ctx := context.Background()
	s := newWidgetStore(t)
	require.NoError(t, s.CreateBatch(ctx, []*widget{
		{ID: 1, OwnerID: 7, Name: "b", Rank: 2},
		{ID: 2, OwnerID: 7, Name: "a", Rank: 1},
		{ID: 3, OwnerID: 8, Name: "c", Rank: 3},
	}))

	rows, err := s.Find(ctx, &widget{OwnerID: 7}, option.WithSortBy(option.SortBy{Column: "rank", Direction: "ASC"}))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].Name)

	n, err := s.Count(ctx, &widget{OwnerID: 7}, option.WithWhere("rank > ?", 1))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	missing, err := s.First(ctx, &widget{ID: 99})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStoreUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newWidgetStore(t)
	require.NoError(t, s.Create(ctx, &widget{ID: 1, OwnerID: 7, Name: "old"}))

	require.NoError(t, s.UpdateColumns(ctx, 1, map[string]any{"name": "new"}))
	got, err := s.First(ctx, &widget{ID: 1})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "new", got.Name)
	assert.False(t, got.UpdatedAt.IsZero())

	require.NoError(t, s.Delete(ctx, 1))
	got, err = s.First(ctx, &widget{ID: 1})
	require.NoError(t, err)
	assert.Nil(t, got)
}
