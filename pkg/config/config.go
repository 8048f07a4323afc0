package config

import (
	"os"
	"strconv"
	"time"
)

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	// upper bound on pooled connections; acquire blocks when exhausted
	MaxConns int32 `yaml:"max_conns"`
	// queries slower than this are logged and counted
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold"`
}

type MQConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

type ServerConfig struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// Each setting reads the first non-empty variable in its list. The libpq names
// come last so a shell already set up for psql works unchanged.

func OverrideDBFromEnv(cfg *DBConfig) {
	setString(&cfg.Host, "DB_HOST", "PGHOST")
	setInt(&cfg.Port, "DB_PORT", "PGPORT")
	setString(&cfg.User, "DB_USER", "PGUSER")
	setString(&cfg.Password, "DB_PASSWORD", "PGPASSWORD")
	setString(&cfg.Name, "DB_NAME", "PGDATABASE")
}

func OverrideMQFromEnv(cfg *MQConfig) {
	setString(&cfg.URL, "MQ_URL", "AMQP_URL")
}

func OverrideRedisFromEnv(cfg *RedisConfig) {
	setString(&cfg.Addr, "REDIS_ADDR")
	setString(&cfg.Password, "REDIS_PASSWORD")
	setInt(&cfg.DB, "REDIS_DB")
}

func OverrideJWTFromEnv(cfg *JWTConfig) {
	setString(&cfg.Secret, "JWT_SECRET")
	setDuration(&cfg.TTL, "JWT_TTL")
}

func OverrideServerFromEnv(cfg *ServerConfig) {
	setString(&cfg.Port, "SERVER_PORT", "PORT")
	setString(&cfg.LogLevel, "LOG_LEVEL")
}

func setString(dst *string, keys ...string) {
	*dst = GetEnv(*dst, keys...)
}

// unparsable values leave dst alone
func setInt(dst *int, keys ...string) {
	if n, err := strconv.Atoi(GetEnv("", keys...)); err == nil {
		*dst = n
	}
}

func setDuration(dst *time.Duration, keys ...string) {
	if d, err := time.ParseDuration(GetEnv("", keys...)); err == nil {
		*dst = d
	}
}

// GetEnv returns the first non-empty environment variable among keys, or defaultValue.
func GetEnv(defaultValue string, keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return defaultValue
}
