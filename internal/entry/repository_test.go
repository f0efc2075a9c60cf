package entry_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/BunnySweety/kollab-sub001/internal/entry"
	"github.com/BunnySweety/kollab-sub001/internal/platform/apperr"
	"github.com/BunnySweety/kollab-sub001/internal/platform/config"
	"github.com/BunnySweety/kollab-sub001/internal/platform/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openRepo(t *testing.T) entry.Repository {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "entries.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, entry.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return entry.NewRepository(db)
}

func TestGormRepository(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)

	next, err := repo.NextOrder(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), next)

	now := time.Now().UTC().Truncate(time.Second)
	rows := []*entry.Entry{
		{ID: "e2", SchemaID: "s1", Order: 2, Data: map[string]any{"Name": "second"}, CreatedAt: now, UpdatedAt: now},
		{ID: "e1", SchemaID: "s1", Order: 1, Data: map[string]any{"Name": "first", "Tags": []string{"a"}}, CreatedAt: now, UpdatedAt: now},
		{ID: "x1", SchemaID: "s2", Order: 1, Data: map[string]any{"Name": "other"}, CreatedAt: now, UpdatedAt: now},
	}
	for _, e := range rows {
		require.NoError(t, repo.Create(ctx, e))
	}

	next, err = repo.NextOrder(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), next)

	list, err := repo.ListBySchema(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "e1", list[0].ID)
	assert.Equal(t, "e2", list[1].ID)
	assert.Equal(t, []any{"a"}, list[0].Data["Tags"])

	got, err := repo.Get(ctx, "e2")
	require.NoError(t, err)
	got.Data["Price"] = 4.5
	require.NoError(t, repo.Save(ctx, got))
	got, err = repo.Get(ctx, "e2")
	require.NoError(t, err)
	assert.Equal(t, 4.5, got.Data["Price"])

	assert.ErrorIs(t, repo.Save(ctx, &entry.Entry{ID: "nope"}), apperr.ErrNotFound)
	_, err = repo.Get(ctx, "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, "e1"))
	assert.ErrorIs(t, repo.Delete(ctx, "e1"), apperr.ErrNotFound)

	n, err := repo.DeleteBySchema(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = repo.Get(ctx, "x1")
	assert.NoError(t, err)
}
