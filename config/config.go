package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Geofence  GeofenceConfig  `mapstructure:"geofence"`
	Report    ReportConfig    `mapstructure:"report"`
	Seed      SeedConfig      `mapstructure:"seed"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	MaxBodyBytes int64      `mapstructure:"max_body_bytes"`
	CORS         CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// 持久化后端
const (
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
)

// StoreConfig 快照持久化配置
type StoreConfig struct {
	Driver     string `mapstructure:"driver"`      // sqlite | postgres | redis
	SQLitePath string `mapstructure:"sqlite_path"` // 仅 sqlite 使用
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 分钟
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// Output 日志输出位置：stdout、stderr 或文件路径
	Output string `mapstructure:"output"`
}

// GeofenceConfig 打卡地理围栏配置
type GeofenceConfig struct {
	AnchorLatitude  float64 `mapstructure:"anchor_latitude"`
	AnchorLongitude float64 `mapstructure:"anchor_longitude"`
	RadiusMeters    float64 `mapstructure:"radius_meters"`
}

// ReportConfig 报表与导出配置
type ReportConfig struct {
	Locale      string `mapstructure:"locale"`       // ko | en
	RecentLimit int    `mapstructure:"recent_limit"` // 个人最近记录条数
	DateLimit   int    `mapstructure:"date_limit"`   // 报表默认展示的日期数
}

// SeedConfig 首次启动时写入的根管理员
type SeedConfig struct {
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`
	AdminName     string `mapstructure:"admin_name"`
}

// RateLimitConfig 基于 Redis 的限流配置
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("ATTEND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("store.driver", StoreDriverSQLite)
	v.SetDefault("store.sqlite_path", "./data/attendance.db")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "attendance")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", 60)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "attendance:")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")

	// 默认围栏：首尔市厅，半径 200m
	v.SetDefault("geofence.anchor_latitude", 37.5665)
	v.SetDefault("geofence.anchor_longitude", 126.9780)
	v.SetDefault("geofence.radius_meters", 200)

	v.SetDefault("report.locale", "ko")
	v.SetDefault("report.recent_limit", 5)
	v.SetDefault("report.date_limit", 7)

	v.SetDefault("seed.admin_username", "admin")
	v.SetDefault("seed.admin_password", "admin123")
	v.SetDefault("seed.admin_name", "관리자")

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.limit", 60)
	v.SetDefault("rate_limit.window", "1m")
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	switch c.Store.Driver {
	case StoreDriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("配置校验失败: store.sqlite_path 不能为空")
		}
	case StoreDriverPostgres, StoreDriverRedis:
	default:
		return fmt.Errorf("配置校验失败: 未知的 store.driver %q", c.Store.Driver)
	}
	if c.Geofence.RadiusMeters <= 0 {
		return fmt.Errorf("配置校验失败: geofence.radius_meters 必须大于 0")
	}
	if c.Geofence.AnchorLatitude < -90 || c.Geofence.AnchorLatitude > 90 {
		return fmt.Errorf("配置校验失败: geofence.anchor_latitude 超出范围")
	}
	if c.Geofence.AnchorLongitude < -180 || c.Geofence.AnchorLongitude > 180 {
		return fmt.Errorf("配置校验失败: geofence.anchor_longitude 超出范围")
	}
	if c.Report.Locale != "ko" && c.Report.Locale != "en" {
		return fmt.Errorf("配置校验失败: report.locale 仅支持 ko 或 en")
	}
	if c.Seed.AdminUsername == "" || c.Seed.AdminPassword == "" || c.Seed.AdminName == "" {
		return fmt.Errorf("配置校验失败: seed.admin_username、seed.admin_password 与 seed.admin_name 不能为空")
	}
	if c.RateLimit.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("配置校验失败: 启用限流需要配置 redis.addr")
	}
	return nil
}
