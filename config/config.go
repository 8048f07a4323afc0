package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	pkgconfig "feeltrack/pkg/config"
	"feeltrack/pkg/otel"
)

type LLMConfig struct {
	APIKey string `yaml:"api_key"`
	// OpenAI-compatible endpoint; Gemini exposes one at
	// https://generativelanguage.googleapis.com/v1beta/openai/
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

type NotificationConfig struct {
	SweepInterval time.Duration `yaml:"sweep_interval"`
	// "inline" runs the sweep in-process after each message, "mq" hands it to the worker
	Dispatch       string        `yaml:"dispatch"`
	LockTTL        time.Duration `yaml:"lock_ttl"`
	TriggerTimeout time.Duration `yaml:"trigger_timeout"`
}

type Config struct {
	Server       pkgconfig.ServerConfig `yaml:"server"`
	DB           pkgconfig.DBConfig     `yaml:"db"`
	Redis        pkgconfig.RedisConfig  `yaml:"redis"`
	MQ           pkgconfig.MQConfig     `yaml:"mq"`
	JWT          pkgconfig.JWTConfig    `yaml:"jwt"`
	LLM          LLMConfig              `yaml:"llm"`
	Notification NotificationConfig     `yaml:"notification"`
	OTel         otel.Config            `yaml:"otel"`
}

const (
	DispatchInline = "inline"
	DispatchMQ     = "mq"
)

// Default returns settings for a local development stack.
func Default() *Config {
	return &Config{
		Server: pkgconfig.ServerConfig{Port: "8001", LogLevel: "info"},
		DB: pkgconfig.DBConfig{
			Host:               "localhost",
			Port:               5432,
			User:               "root",
			Password:           "1996",
			Name:               "mentalhealthdb",
			MaxConns:           10,
			SlowQueryThreshold: 200 * time.Millisecond,
		},
		Redis: pkgconfig.RedisConfig{Addr: "localhost:6379"},
		JWT:   pkgconfig.JWTConfig{Secret: "change-me", TTL: 24 * time.Hour},
		LLM: LLMConfig{
			BaseURL: "https://generativelanguage.googleapis.com/v1beta/openai/",
			Model:   "gemini-1.5-pro",
			Timeout: 30 * time.Second,
		},
		Notification: NotificationConfig{
			SweepInterval:  5 * time.Minute,
			Dispatch:       DispatchInline,
			LockTTL:        2 * time.Minute,
			TriggerTimeout: 2 * time.Minute,
		},
		OTel: otel.Config{ServiceName: "feeltrack", ServiceVersion: "dev"},
	}
}

// Load builds the configuration from defaults, then path, then the environment.
// path may be a yaml file (a missing file is not an error) or a directory holding
// base.yaml plus an APP_ENV overlay.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := read(path)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	}

	overrideFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func read(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return pkgconfig.LoadLayered(path, pkgconfig.GetEnv("development", "APP_ENV"))
	}
	return os.ReadFile(path)
}

func overrideFromEnv(cfg *Config) {
	pkgconfig.OverrideServerFromEnv(&cfg.Server)
	pkgconfig.OverrideDBFromEnv(&cfg.DB)
	pkgconfig.OverrideRedisFromEnv(&cfg.Redis)
	pkgconfig.OverrideMQFromEnv(&cfg.MQ)
	pkgconfig.OverrideJWTFromEnv(&cfg.JWT)

	cfg.LLM.APIKey = pkgconfig.GetEnv(cfg.LLM.APIKey, "LLM_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY")
	cfg.LLM.BaseURL = pkgconfig.GetEnv(cfg.LLM.BaseURL, "LLM_BASE_URL")
	cfg.LLM.Model = pkgconfig.GetEnv(cfg.LLM.Model, "LLM_MODEL")

	if endpoint := os.Getenv("OTEL_ENDPOINT"); endpoint != "" {
		cfg.OTel.Endpoint = endpoint
		cfg.OTel.Enabled = true
	}
	if dispatch := os.Getenv("NOTIFICATION_DISPATCH"); dispatch != "" {
		cfg.Notification.Dispatch = dispatch
	}
}

func (c *Config) Validate() error {
	if c.DB.Name == "" {
		return errors.New("config: db.name is required")
	}
	if c.Notification.SweepInterval <= 0 {
		return errors.New("config: notification.sweep_interval must be positive")
	}
	if c.LLM.Timeout <= 0 {
		return errors.New("config: llm.timeout must be positive")
	}
	switch c.Notification.Dispatch {
	case DispatchInline:
	case DispatchMQ:
		if c.MQ.URL == "" {
			return errors.New("config: mq.url is required when notification.dispatch is mq")
		}
	default:
		return fmt.Errorf("config: unknown notification.dispatch %q", c.Notification.Dispatch)
	}
	return nil
}
