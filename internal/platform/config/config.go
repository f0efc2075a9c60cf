package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Cfg 是一个全局变量，用于存储加载后的配置
var Cfg *Config

// Config 与 config.yaml 的结构完全对应
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Table    TableConfig    `mapstructure:"table"`
}

// ServerConfig 定义了 HTTP 服务相关的配置
type ServerConfig struct {
	Mode            string        `mapstructure:"mode"` // debug / release / test
	Address         string        `mapstructure:"address"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
	Cors            CorsConfig    `mapstructure:"cors"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig 定义了关系数据库的配置
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // sqlite / postgres
	DSN      string `mapstructure:"dsn"`
	LogLevel string `mapstructure:"logLevel"` // silent / error / warn / info
}

// RedisConfig 定义了 schema 缓存使用的 Redis
type RedisConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	Address             string        `mapstructure:"address"`
	Password            string        `mapstructure:"password"`
	DB                  int           `mapstructure:"db"`
	SchemaCacheTTL      time.Duration `mapstructure:"schemaCacheTTL"`
	HealthCheckInterval time.Duration `mapstructure:"healthCheckInterval"`
}

// TableConfig 定义了表格引擎本身的参数
type TableConfig struct {
	// Timezone 用于解释不带时区的日期输入，以及导出时的日期显示
	Timezone string `mapstructure:"timezone"`
	// BulkConcurrency 是批量操作中同时进行的单条操作数上限
	BulkConcurrency int `mapstructure:"bulkConcurrency"`
	// MaxBulkSize 是单次批量请求允许的最大条目数
	MaxBulkSize int `mapstructure:"maxBulkSize"`
}

// Location 解析 Timezone；空字符串或 "Local" 表示进程本地时区。
func (t TableConfig) Location() (*time.Location, error) {
	if t.Timezone == "" || strings.EqualFold(t.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return nil, fmt.Errorf("无效的时区 %q: %w", t.Timezone, err)
	}
	return loc, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.shutdownTimeout", 15*time.Second)
	v.SetDefault("server.cors.allowedOrigins", []string{"http://localhost:3000"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "kollab.db")
	v.SetDefault("database.logLevel", "warn")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.schemaCacheTTL", 5*time.Minute)
	v.SetDefault("redis.healthCheckInterval", 5*time.Second)

	v.SetDefault("table.timezone", "Local")
	v.SetDefault("table.bulkConcurrency", 8)
	v.SetDefault("table.maxBulkSize", 500)
}

// LoadConfig 查找、加载和解析配置。
// 查找顺序：参数给出的目录，然后 ./config 和当前目录；配置文件不存在时使用默认值。
// 环境变量可以覆盖任何键，例如 SERVER_ADDRESS、DATABASE_DSN；.env 文件会先被加载。
func LoadConfig(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("无法加载 .env 文件: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("无法读取配置文件: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("无法解析配置: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	Cfg = &cfg
	return Cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("不支持的数据库驱动 %q", c.Database.Driver)
	}
	if c.Table.BulkConcurrency <= 0 {
		return fmt.Errorf("table.bulkConcurrency 必须为正数")
	}
	if c.Table.MaxBulkSize <= 0 {
		return fmt.Errorf("table.maxBulkSize 必须为正数")
	}
	if _, err := c.Table.Location(); err != nil {
		return err
	}
	return nil
}
