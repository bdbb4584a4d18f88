package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 同步模式
const (
	ModeTable  = "table"  // 逐桌分页抓取 HTML
	ModeExport = "export" // 一次性拉取 data.json
)

// 成绩写入策略
const (
	ResultPolicyUpsert  = "upsert"  // 按 (table_id, player_id) 逐座位 upsert，不删除旧行
	ResultPolicyReplace = "replace" // 已存在的对局先删除全部成绩再重新插入
)

// Config 全局配置结构体（对应 config/config.yaml）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Log      LogConfig      `mapstructure:"log"`      // 日志配置
	Database DatabaseConfig `mapstructure:"database"` // PostgreSQL配置
	Redis    RedisConfig    `mapstructure:"redis"`    // Redis配置（可选，用于多实例单飞锁）
	Sync     SyncConfig     `mapstructure:"sync"`     // 同步调度配置
	Source   SourceConfig   `mapstructure:"source"`   // 远端数据源配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`     // logrus 级别：debug/info/warn/error
	SQLLevel string `mapstructure:"sql_level"` // GORM 日志级别：silent/error/warn/info
}

// DatabaseConfig PostgreSQL数据库配置
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN（URL 形式）
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// RedisConfig Redis配置，Addr 为空时使用进程内单飞锁
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"` // 锁过期时间，防止进程崩溃后永久占用
}

// SyncConfig 同步调度配置
type SyncConfig struct {
	Cron         string        `mapstructure:"cron"`          // 定时同步Cron表达式，空则只能手动触发
	Mode         string        `mapstructure:"mode"`          // table / export
	ResultPolicy string        `mapstructure:"result_policy"` // upsert / replace
	PagePause    time.Duration `mapstructure:"page_pause"`    // 分页模式两次请求之间的间隔
	RetryBackoff time.Duration `mapstructure:"retry_backoff"` // 网络错误后的重试等待
}

// SourceConfig 远端数据源配置
type SourceConfig struct {
	TableBaseURL string `mapstructure:"table_base_url"` // 分页模式地址前缀，后接 <id>/
	ExportURL    string `mapstructure:"export_url"`     // data.json 地址
	Timeout      int    `mapstructure:"timeout"`        // 请求超时（秒）
	RetryCount   int    `mapstructure:"retry_count"`    // 同一页的最大重试次数，<=0 不限
	Proxy        string `mapstructure:"proxy"`          // 代理地址
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // .env 可不存在
	return LoadConfigFrom("./config")
}

// LoadConfigFrom 从指定目录读取 config.yaml
func LoadConfigFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.sql_level", "warn")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("redis.lock_ttl", 30*time.Minute)
	v.SetDefault("sync.mode", ModeExport)
	v.SetDefault("sync.result_policy", ResultPolicyUpsert)
	v.SetDefault("sync.page_pause", 200*time.Millisecond)
	v.SetDefault("sync.retry_backoff", 5*time.Second)
	v.SetDefault("source.table_base_url", "https://mahjong.chaotic.quest/sthlm-meetups-league-season0/table/")
	v.SetDefault("source.export_url", "https://mahjong.chaotic.quest/sthlm-meetups-league/data.json")
	v.SetDefault("source.timeout", 30)
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("LEAGUE_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("LEAGUE_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("LEAGUE_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("LEAGUE_SOURCE_PROXY"); v != "" {
		cfg.Source.Proxy = v
	}
}

// Validate 校验枚举类配置
func (c *Config) Validate() error {
	switch c.Sync.Mode {
	case ModeTable, ModeExport:
	default:
		return fmt.Errorf("未知的同步模式: %q", c.Sync.Mode)
	}
	switch c.Sync.ResultPolicy {
	case ResultPolicyUpsert, ResultPolicyReplace:
	default:
		return fmt.Errorf("未知的成绩写入策略: %q", c.Sync.ResultPolicy)
	}
	return nil
}
