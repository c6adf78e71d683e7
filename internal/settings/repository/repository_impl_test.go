package repository

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	settingsdomain "github.com/smallbiznis/workhub/internal/settings/domain"
	dbpkg "github.com/smallbiznis/workhub/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepos(t *testing.T) (settingsdomain.Repository, settingsdomain.Repository, *snowflake.Node) {
	t.Helper()
	db, err := dbpkg.NewTest()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&settingsdomain.Setting{}, &settingsdomain.PaymentSetting{}))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewRepository(db), NewTableRepository(db, settingsdomain.TablePaymentSettings), node
}

func TestScopeTripleIsUnique(t *testing.T) {
	settings, payments, node := newTestRepos(t)
	ctx := context.Background()
	owner := node.Generate()
	ws := node.Generate()

	for _, repo := range []settingsdomain.Repository{settings, payments} {
		require.NoError(t, repo.Create(ctx, &settingsdomain.Setting{ID: node.Generate(), OwnerID: owner, Key: "color", Value: "a"}))
		err := repo.Create(ctx, &settingsdomain.Setting{ID: node.Generate(), OwnerID: owner, Key: "color", Value: "b"})
		assert.True(t, dbpkg.IsDuplicateKeyErr(err), repo.Table())

		require.NoError(t, repo.Create(ctx, &settingsdomain.Setting{ID: node.Generate(), OwnerID: owner, WorkspaceID: &ws, Key: "color", Value: "c"}))
		err = repo.Create(ctx, &settingsdomain.Setting{ID: node.Generate(), OwnerID: owner, WorkspaceID: &ws, Key: "color", Value: "d"})
		assert.True(t, dbpkg.IsDuplicateKeyErr(err), repo.Table())
	}
}

func TestBulkInsertSkipsExistingRows(t *testing.T) {
	repo, _, node := newTestRepos(t)
	ctx := context.Background()
	owner := node.Generate()

	require.NoError(t, repo.Create(ctx, &settingsdomain.Setting{ID: node.Generate(), OwnerID: owner, Key: "color", Value: "kept"}))
	require.NoError(t, repo.BulkInsert(ctx, []settingsdomain.Setting{
		{ID: node.Generate(), OwnerID: owner, Key: "color", Value: "ignored"},
		{ID: node.Generate(), OwnerID: owner, Key: "dateFormat", Value: "Y-m-d"},
	}))

	rows, err := repo.List(ctx, owner, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	got := map[string]string{}
	for _, row := range rows {
		got[row.Key] = row.Value
	}
	assert.Equal(t, map[string]string{"color": "kept", "dateFormat": "Y-m-d"}, got)
}

func TestUpsertKeepsLastWrite(t *testing.T) {
	repo, _, node := newTestRepos(t)
	ctx := context.Background()
	owner := node.Generate()

	first, err := repo.Upsert(ctx, &settingsdomain.Setting{ID: node.Generate(), OwnerID: owner, Key: "color", Value: "theme-1"})
	require.NoError(t, err)
	second, err := repo.Upsert(ctx, &settingsdomain.Setting{ID: node.Generate(), OwnerID: owner, Key: "color", Value: "theme-2"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "theme-2", second.Value)
	rows, err := repo.List(ctx, owner, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
