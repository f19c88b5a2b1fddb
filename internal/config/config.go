package config

import (
	"net/http"
	"os"
	"time"

	"github.com/spf13/viper"
)

type DBConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Addr     string
	Password string
}

type ServerConfig struct {
	Port           string
	Handler        http.Handler
	MaxHeaderBytes int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

type LogConfig struct {
	Level      string
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type AuthConfig struct {
	Secret   []byte
	TokenTTL time.Duration
}

type HTTPConfig struct {
	AllowOrigins       []string
	RateLimitPerMinute int
}

func LoadDBConfig() DBConfig {
	return DBConfig{
		URI:      os.Getenv("MONGO_URI"),
		Database: getenvDefault("MONGO_DATABASE", "blog"),
	}
}

func LoadRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
	}
}

func LoadLogConfig() LogConfig {
	return LogConfig{
		Level:      viper.GetString("log.level"),
		Path:       viper.GetString("log.path"),
		MaxSizeMB:  viper.GetInt("log.max_size_mb"),
		MaxBackups: viper.GetInt("log.max_backups"),
		MaxAgeDays: viper.GetInt("log.max_age_days"),
		Compress:   viper.GetBool("log.compress"),
	}
}

func LoadAuthConfig() AuthConfig {
	ttl := viper.GetDuration("auth.token_ttl")
	if ttl <= 0 {
		ttl = 5 * time.Hour
	}

	return AuthConfig{
		Secret:   []byte(os.Getenv("JWT_SECRET")),
		TokenTTL: ttl,
	}
}

func LoadHTTPConfig() HTTPConfig {
	return HTTPConfig{
		AllowOrigins:       viper.GetStringSlice("client.origins"),
		RateLimitPerMinute: viper.GetInt("rate_limit.per_minute"),
	}
}

// CacheTTL is how long post reads stay in redis before being refetched.
func CacheTTL() time.Duration {
	ttl := viper.GetDuration("cache.ttl")
	if ttl <= 0 {
		return time.Hour
	}
	return ttl
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
