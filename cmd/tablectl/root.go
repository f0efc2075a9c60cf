package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/BunnySweety/kollab-sub001/internal/platform/config"
	"github.com/BunnySweety/kollab-sub001/internal/platform/database"
	"github.com/BunnySweety/kollab-sub001/internal/platform/startup"
	"github.com/spf13/cobra"
)

var (
	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:           "tablectl",
	SilenceUsage:  true,
	SilenceErrors: true,
	Short: "Inspect and export structured-data tables",
	Long: `tablectl reads tables straight from the configured database.
It uses the same config.yaml / environment as the server.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// exitError 携带一个不为 1 的进程退出码
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// Execute 运行根命令。各命令返回错误而不是直接退出，
// 这样 defer 的清理在这里退出进程之前都已执行。
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	var ee *exitError
	if errors.As(err, &ee) {
		os.Exit(ee.code)
	}
	os.Exit(1)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "Directory holding config.yaml")
}

// openServices 只连接数据库；命令行工具不使用 Redis。
func openServices() (*startup.Services, func(), error) {
	var dirs []string
	if configDir != "" {
		dirs = append(dirs, configDir)
	}
	cfg, err := config.LoadConfig(dirs...)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	services, err := startup.BuildServices(db, nil, cfg)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	return services, closeDB, nil
}
