package table_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/BunnySweety/kollab-sub001/internal/platform/apperr"
	"github.com/BunnySweety/kollab-sub001/internal/platform/config"
	"github.com/BunnySweety/kollab-sub001/internal/platform/database"
	"github.com/BunnySweety/kollab-sub001/internal/platform/startup"
	"github.com/BunnySweety/kollab-sub001/internal/property"
	"github.com/BunnySweety/kollab-sub001/internal/query"
	"github.com/BunnySweety/kollab-sub001/internal/schema"
	"github.com/BunnySweety/kollab-sub001/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*startup.Services, string) {
	t.Helper()
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "table.db"), LogLevel: "silent"},
		Table:    config.TableConfig{Timezone: "UTC", BulkConcurrency: 2, MaxBulkSize: 10},
	}
	db, err := database.Open(cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	require.NoError(t, startup.InitializeApplication(db))
	services, err := startup.BuildServices(db, nil, cfg)
	require.NoError(t, err)

	ctx := context.Background()
	sc, err := services.Schemas.CreateSchema(ctx, schema.CreateInput{
		WorkspaceID: "w1",
		Name:        "Products",
		Properties: schema.PropertyList{
			{Name: "Name", Type: property.TypeTitle},
			{Name: "Price", Type: property.TypeNumber},
			{Name: "Notes", Type: property.TypeText},
		},
	})
	require.NoError(t, err)
	_, err = services.Schemas.SetColumnHidden(ctx, sc.ID, "Notes", true)
	require.NoError(t, err)

	result, err := services.Entries.BulkCreate(ctx, sc.ID, []map[string]any{
		{"Name": "A", "Price": 10, "Notes": "x"},
		{"Name": "B"},
		{"Name": `C "quoted"`, "Price": 5},
	}, "")
	require.NoError(t, err)
	require.False(t, result.Partial())
	return services, sc.ID
}

func TestExportUsesVisibleColumns(t *testing.T) {
	services, id := setup(t)

	var buf bytes.Buffer
	name, err := services.Tables.Export(context.Background(), id, table.ExportOptions{
		Query: query.Query{Sort: &query.Sort{Column: "Price", Direction: query.Asc}},
	}, &buf)
	require.NoError(t, err)
	assert.Equal(t, "Products_"+time.Now().UTC().Format(time.DateOnly)+".csv", name)
	assert.Equal(t, "\"Name\",\"Price\"\n\"C \"\"quoted\"\"\",\"5\"\n\"A\",\"10\"\n\"B\",\"\"\n", buf.String())

	buf.Reset()
	_, err = services.Tables.Export(context.Background(), id, table.ExportOptions{
		AllColumns: true,
		Query:      query.Query{Filters: []query.Filter{{Property: "Notes", Operator: query.IsNotEmpty}}},
	}, &buf)
	require.NoError(t, err)
	assert.Equal(t, "\"Name\",\"Price\",\"Notes\"\n\"A\",\"10\",\"x\"\n", buf.String())
}

func TestLoadAndDelete(t *testing.T) {
	services, id := setup(t)
	ctx := context.Background()

	loaded, err := services.Tables.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, loaded.Entries, 3)
	assert.Equal(t, []string{"Name", "Price"}, loaded.Layout.Visible)

	require.NoError(t, services.Tables.Delete(ctx, id))
	_, err = services.Tables.Load(ctx, id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	list, err := services.Entries.ListEntries(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func entryIDs(t *testing.T, services *startup.Services, schemaID string) map[string]string {
	t.Helper()
	list, err := services.Entries.ListEntries(context.Background(), schemaID)
	require.NoError(t, err)
	ids := make(map[string]string, len(list))
	for _, e := range list {
		if name, ok := e.Data["Name"].(string); ok {
			ids[name] = e.ID
		}
	}
	return ids
}

func TestDuplicateAfterSchemaChanges(t *testing.T) {
	ctx := context.Background()
	services, id := setup(t)
	ids := entryIDs(t, services, id)

	// Notes 从 text 改为 number：A 行的 "x" 已不是合法数字，但仍然可以复制
	_, err := services.Schemas.UpdateProperty(ctx, id, "Notes", schema.PropertyInput{Name: "Notes", Type: property.TypeNumber})
	require.NoError(t, err)
	dup, err := services.Entries.DuplicateEntry(ctx, id, ids["A"], "")
	require.NoError(t, err)
	assert.Equal(t, "Copy of A", dup.Data["Name"])
	assert.Equal(t, "x", dup.Data["Notes"])
	assert.Equal(t, float64(10), dup.Data["Price"])

	// title 改名换键：旧 title 值成为遗留键，新 title 列为空
	_, err = services.Schemas.UpdateProperty(ctx, id, "Name", schema.PropertyInput{Name: "Product", Type: property.TypeTitle})
	require.NoError(t, err)
	dup, err = services.Entries.DuplicateEntry(ctx, id, ids["B"], "")
	require.NoError(t, err)
	assert.Equal(t, "B", dup.Data["Name"])
	assert.NotContains(t, dup.Data, "Product")

	result, err := services.Entries.BulkDuplicate(ctx, id, []string{ids["A"], ids["B"]}, "")
	require.NoError(t, err)
	assert.False(t, result.Partial())
	assert.Len(t, result.Succeeded, 2)

	// 同一行仍然可以正常更新
	_, err = services.Entries.UpdateEntry(ctx, ids["A"], map[string]any{"Price": 11})
	require.NoError(t, err)
}
