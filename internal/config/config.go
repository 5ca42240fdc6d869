package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port         int      `mapstructure:"port"`
	Mode         string   `mapstructure:"mode"`
	BaseURL      string   `mapstructure:"base_url"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type DatabaseConfig struct {
	Driver  string `mapstructure:"driver"` // "mysql" or "sqlite"
	DSN     string `mapstructure:"dsn"`
	LogMode bool   `mapstructure:"log_mode"`
	Tracing bool   `mapstructure:"tracing"`
	Retries int    `mapstructure:"retries"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type AuthConfig struct {
	AllowRegistration bool   `mapstructure:"allow_registration"`
	AdminUsername     string `mapstructure:"admin_username"`
	AdminEmail        string `mapstructure:"admin_email"`
	AdminPassword     string `mapstructure:"admin_password"`
	CookieName        string `mapstructure:"cookie_name"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	LockTTL  int    `mapstructure:"lock_ttl_seconds"`
}

type AIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type CatalogConfig struct {
	PhoneRegion string `mapstructure:"phone_region"`
}

type ReportsConfig struct {
	LowStockThreshold int `mapstructure:"low_stock_threshold"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
}

type WebConfig struct {
	Dir string `mapstructure:"dir"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Redis    RedisConfig    `mapstructure:"redis"`
	AI       AIConfig       `mapstructure:"ai"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Reports  ReportsConfig  `mapstructure:"reports"`
	Log      LogConfig      `mapstructure:"log"`
	Web      WebConfig      `mapstructure:"web"`
}

var (
	appConfig *Config
	once      sync.Once
	loadErr   error
)

// Load reads .env (if present), then the optional YAML file at path, then
// SHOP_* environment overrides. The result is cached for the process.
func Load(path string) (*Config, error) {
	once.Do(func() {
		appConfig, loadErr = read(path)
	})
	return appConfig, loadErr
}

// Get returns the configuration loaded by Load.
func Get() *Config {
	return appConfig
}

func read(path string) (*Config, error) {
	// .env is optional, same as before the viper layer existed
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/shop.db")
	v.SetDefault("database.log_mode", false)
	v.SetDefault("database.tracing", false)
	v.SetDefault("database.retries", 5)

	v.SetDefault("jwt.secret", "change-me")
	v.SetDefault("jwt.expire_hours", 24)

	v.SetDefault("auth.allow_registration", false)
	v.SetDefault("auth.admin_username", "admin")
	v.SetDefault("auth.admin_email", "admin@example.com")
	v.SetDefault("auth.admin_password", "admin123")
	v.SetDefault("auth.cookie_name", "session_token")

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl_seconds", 10)

	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "gemini-2.0-flash-001")

	v.SetDefault("catalog.phone_region", "CN")
	v.SetDefault("reports.low_stock_threshold", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("web.dir", "./web")
}

// bindLegacyEnv keeps the plain variable names older .env files use.
func bindLegacyEnv(v *viper.Viper) error {
	legacy := map[string]string{
		"database.dsn":            "DB_DSN",
		"database.driver":         "DB_DRIVER",
		"auth.allow_registration": "ALLOW_REGISTRATION",
		"ai.api_key":              "GEMINI_API_KEY",
		"server.base_url":         "BASE_URL",
		"jwt.secret":              "JWT_SECRET",
		"redis.address":           "REDIS_ADDRESS",
	}
	for key, env := range legacy {
		prefixed := "SHOP_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return fmt.Errorf("bind env %s: %w", env, err)
		}
	}
	return nil
}
