package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/BunnySweety/kollab-sub001/internal/platform/apperr"
	"github.com/BunnySweety/kollab-sub001/internal/platform/config"
	"github.com/BunnySweety/kollab-sub001/internal/platform/database"
	"github.com/BunnySweety/kollab-sub001/internal/platform/startup"
	"github.com/BunnySweety/kollab-sub001/internal/property"
	"github.com/BunnySweety/kollab-sub001/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedDatabase 建好一个带迁移的 SQLite 文件，并让命令通过环境变量找到它
func seedDatabase(t *testing.T) string {
	t.Helper()
	dbCfg := config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "cli.db"), LogLevel: "silent"}
	t.Setenv("DATABASE_DRIVER", dbCfg.Driver)
	t.Setenv("DATABASE_DSN", dbCfg.DSN)
	t.Setenv("DATABASE_LOGLEVEL", dbCfg.LogLevel)
	t.Setenv("TABLE_TIMEZONE", "UTC")

	db, err := database.Open(dbCfg)
	require.NoError(t, err)
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()
	require.NoError(t, startup.InitializeApplication(db))
	services, err := startup.BuildServices(db, nil, &config.Config{
		Database: dbCfg,
		Table:    config.TableConfig{Timezone: "UTC", BulkConcurrency: 2, MaxBulkSize: 10},
	})
	require.NoError(t, err)

	sc, err := services.Schemas.CreateSchema(context.Background(), schema.CreateInput{
		WorkspaceID: "w1",
		Name:        "Contacts",
		Properties: schema.PropertyList{
			{Name: "Name", Type: property.TypeTitle},
			{Name: "Email", Type: property.TypeEmail},
		},
	})
	require.NoError(t, err)
	return sc.ID
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", t.TempDir()))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		exportOut = ""
		exportFilters = nil
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommandsReturnErrors(t *testing.T) {
	seedDatabase(t)

	_, err := runCLI(t, "describe", "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = runCLI(t, "export", "missing", "--filter", "Name")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid query")
}

func TestImportReportsPartialFailure(t *testing.T) {
	id := seedDatabase(t)
	rows := filepath.Join(t.TempDir(), "rows.json")
	require.NoError(t, os.WriteFile(rows, []byte(`[{"Name":"Ada","Email":"ada@example.com"},{"Name":"Bob","Email":"nope"}]`), 0o644))

	out, err := runCLI(t, "import", id, rows)
	var ee *exitError
	require.True(t, errors.As(err, &ee), "expected an exit error, got %v", err)
	assert.Equal(t, 2, ee.code)
	assert.Contains(t, out, "row 2:")
	assert.Contains(t, out, "1 succeeded, 1 failed")

	// 上一个命令返回错误后数据库已正常关闭，再次打开可以读到导入的行
	out, err = runCLI(t, "export", id, "--out", "-")
	require.NoError(t, err)
	assert.Equal(t, "\"Name\",\"Email\"\n\"Ada\",\"ada@example.com\"\n", out)
}
