package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	App        AppConfig      `mapstructure:"app"`
	Server     ServerConfig   `mapstructure:"server"`
	Database   DatabaseConfig `mapstructure:"db"`
	RegistryDB DatabaseConfig `mapstructure:"registry_db"`
	Redis      RedisConfig    `mapstructure:"redis"`
	Auth       AuthConfig     `mapstructure:"auth"`
	Log        LogConfig      `mapstructure:"log"`
	Feature    FeatureConfig  `mapstructure:"feature"`
	Client     ClientConfig   `mapstructure:"client"`
}

// AppConfig 运行环境
type AppConfig struct {
	Env string `mapstructure:"env"` // development | production
}

// IsDevelopment 开发环境会在错误响应中附带诊断信息
func (a AppConfig) IsDevelopment() bool {
	return strings.EqualFold(a.Env, "development")
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	BaseURL      string     `mapstructure:"base_url"`
	CORS         CORSConfig `mapstructure:"cors"`
	MaxBodyBytes int64      `mapstructure:"max_body_bytes"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig MySQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
	ConnectTimeout  int    `mapstructure:"connect_timeout"`    // 秒
}

// DSN 生成 MySQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	loc := c.Timezone
	if loc == "" {
		loc = "Local"
	}
	timeout := c.ConnectTimeout
	if timeout <= 0 {
		timeout = 60
	}
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=%s&timeout=%ds&multiStatements=true",
		c.User, c.Password, c.Host, c.Port, c.Name, url.QueryEscape(loc), timeout,
	)
}

// RedisConfig Redis 缓存配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig 区域会话配置
type AuthConfig struct {
	JWTSecret          string            `mapstructure:"jwt_secret"`
	SessionTTL         time.Duration     `mapstructure:"session_ttl"`
	SessionTTLRemember time.Duration     `mapstructure:"session_ttl_remember_me"`
	AreaPasswords      map[string]string `mapstructure:"area_passwords"` // 区域 → bcrypt 哈希
	LoginRateLimit     int               `mapstructure:"login_rate_limit"`
	LoginRateWindow    time.Duration     `mapstructure:"login_rate_window"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FeatureConfig 功能开关配置
type FeatureConfig struct {
	AreaAuthEnabled bool `mapstructure:"area_auth_enabled"`
}

// ClientConfig 上传命令行工具配置
type ClientConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	EmployeesTimeout time.Duration `mapstructure:"employees_timeout"`
	DatesTimeout     time.Duration `mapstructure:"dates_timeout"`
	SaveTimeout      time.Duration `mapstructure:"save_timeout"`
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	SessionFile      string        `mapstructure:"session_file"`
}

// LoadDotEnv 加载 .env 文件（存在时），已设置的环境变量不会被覆盖
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("加载 %s 失败: %w", f, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "production")

	v.SetDefault("server.port", 3001)
	v.SetDefault("server.base_url", "http://localhost:3001")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.max_body_bytes", 50<<20) // 50MB

	for _, prefix := range []string{"db", "registry_db"} {
		v.SetDefault(prefix+".host", "localhost")
		v.SetDefault(prefix+".port", 3306)
		v.SetDefault(prefix+".user", "root")
		v.SetDefault(prefix+".password", "")
		v.SetDefault(prefix+".timezone", "Local")
		v.SetDefault(prefix+".max_open_conns", 10)
		v.SetDefault(prefix+".max_idle_conns", 5)
		v.SetDefault(prefix+".conn_max_lifetime", 60) // 60分钟
		v.SetDefault(prefix+".conn_max_idle_time", 30)
		v.SetDefault(prefix+".connect_timeout", 60)
	}
	v.SetDefault("db.name", "bdsaocomco_programacion")
	v.SetDefault("registry_db.name", "bdsaocomco_personas")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.session_ttl", "12h")
	v.SetDefault("auth.session_ttl_remember_me", "720h")
	v.SetDefault("auth.login_rate_limit", 5)
	v.SetDefault("auth.login_rate_window", "1m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("feature.area_auth_enabled", false)

	v.SetDefault("client.base_url", "http://localhost:3001")
	v.SetDefault("client.employees_timeout", "30s")
	v.SetDefault("client.dates_timeout", "15s")
	v.SetDefault("client.save_timeout", "30s")
	v.SetDefault("client.read_timeout", "30s")
	v.SetDefault("client.session_file", "")
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadClient 加载上传工具配置，不要求服务端密钥
func LoadClient(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Client.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func read(path string) (*Config, error) {
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
	v.SetEnvPrefix("PROGRAMACION")
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
	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("配置校验失败: db.name 不能为空")
	}
	if c.RegistryDB.Name == "" {
		return fmt.Errorf("配置校验失败: registry_db.name 不能为空")
	}
	if c.Feature.AreaAuthEnabled {
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
		}
		if len(c.Auth.JWTSecret) < 16 {
			return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
		}
		if len(c.Auth.AreaPasswords) == 0 {
			return fmt.Errorf("配置校验失败: 启用区域认证时 auth.area_passwords 不能为空")
		}
	}
	return nil
}

// Validate 校验上传工具配置
func (c *ClientConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("配置校验失败: client.base_url 无效: %q", c.BaseURL)
	}
	return nil
}
