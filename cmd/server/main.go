package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/BunnySweety/kollab-sub001/api"
	"github.com/BunnySweety/kollab-sub001/internal/entry"
	"github.com/BunnySweety/kollab-sub001/internal/platform/config"
	"github.com/BunnySweety/kollab-sub001/internal/platform/database"
	"github.com/BunnySweety/kollab-sub001/internal/platform/health"
	"github.com/BunnySweety/kollab-sub001/internal/platform/shutdown"
	"github.com/BunnySweety/kollab-sub001/internal/platform/startup"
	"github.com/BunnySweety/kollab-sub001/internal/schema"
	"github.com/BunnySweety/kollab-sub001/internal/table"
	"github.com/BunnySweety/kollab-sub001/pkg/lifecycle"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("加载配置失败", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.Server.Mode)

	if err := database.InitDB(cfg.Database); err != nil {
		slog.Error("数据库初始化失败", "error", err)
		os.Exit(1)
	}
	// Redis 只是缓存：连接失败只记录日志，由健康检查器负责恢复
	if err := database.InitRedis(context.Background(), cfg.Redis); err != nil {
		slog.Warn("Redis 暂不可用，schema 缓存关闭", "error", err)
	}

	// 1. 执行应用首次启动初始化流程
	if err := startup.InitializeApplication(database.DB); err != nil {
		slog.Error("应用初始化失败，无法启动", "error", err)
		os.Exit(1)
	}
	services, err := startup.BuildServices(database.DB, database.RDB, cfg)
	if err != nil {
		slog.Error("服务装配失败", "error", err)
		os.Exit(1)
	}

	// 2. 启动后台的 Redis 健康检查器
	mgr := lifecycle.NewManager()
	if database.RDB != nil {
		checker := health.NewChecker(cfg.Redis.HealthCheckInterval, services.HandleRedisRecovery)
		checker.PerformCheck(context.Background())
		if err := mgr.Go("redis-health", checker.Run); err != nil {
			slog.Error("无法启动健康检查器", "error", err)
			os.Exit(1)
		}
	}

	// 3. HTTP 服务
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	if cfg.Server.Mode == gin.DebugMode {
		r.Use(gin.Logger())
	} else {
		r.Use(api.RequestLogger())
	}
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r, database.DB, api.Handlers{
		Schema: schema.NewHandler(services.Schemas),
		Entry:  entry.NewHandler(services.Entries),
		Table:  table.NewHandler(services.Tables),
	})

	server := &http.Server{Addr: cfg.Server.Address, Handler: r}
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("服务器已准备就绪，开始监听", "address", cfg.Server.Address)
		serverErr <- server.ListenAndServe()
	}()

	// 4. 阻塞直到停机完成
	coordinator := shutdown.NewCoordinator(mgr, cfg.Server.ShutdownTimeout,
		shutdown.Closer{Name: "redis", Close: database.CloseRedis},
		shutdown.Closer{Name: "database", Close: database.CloseDB},
	)
	coordinator.ListenForSignalsAndShutdown(server, serverErr)
}

func setupLogger(mode string) {
	var handler slog.Handler
	if mode == gin.ReleaseMode {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))
}
