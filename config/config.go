package config

import (
	"fmt"
	"strings"
	"time"

	"sprint-tracker/pkg/circuitbreaker"
	pkgconfig "sprint-tracker/pkg/config"
)

type Config struct {
	Server   pkgconfig.ServerConfig   `yaml:"server"`
	Store    pkgconfig.StoreConfig    `yaml:"store"`
	Breaker  pkgconfig.BreakerConfig  `yaml:"breaker"`
	Fallback pkgconfig.FallbackConfig `yaml:"fallback"`
	JWT      pkgconfig.JWTConfig      `yaml:"jwt"`
	Redis    pkgconfig.RedisConfig    `yaml:"redis"`
	DB       pkgconfig.DBConfig       `yaml:"db"`
	MQ       pkgconfig.MQConfig       `yaml:"mq"`
	Log      pkgconfig.LogConfig      `yaml:"log"`
}

// Load reads base.yaml + <env>.yaml from dir, then applies environment overrides.
func Load(env, dir string) (*Config, error) {
	raw, err := pkgconfig.LoadConfig(env, dir)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := pkgconfig.Decode(raw, &cfg); err != nil {
		return nil, err
	}

	// environment overrides (production)
	overrideFromEnv(&cfg)
	applyDefaults(&cfg)

	if cfg.Store.BaseURL == "" {
		return nil, fmt.Errorf("store.base_url is required")
	}
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, fmt.Errorf("jwt.secret is required")
	}
	cfg.Store.BaseURL = strings.TrimRight(cfg.Store.BaseURL, "/")

	return &cfg, nil
}

func overrideFromEnv(cfg *Config) {
	pkgconfig.OverrideServerFromEnv(&cfg.Server)
	pkgconfig.OverrideStoreFromEnv(&cfg.Store)
	pkgconfig.OverrideFallbackFromEnv(&cfg.Fallback)
	pkgconfig.OverrideJWTFromEnv(&cfg.JWT)
	pkgconfig.OverrideRedisFromEnv(&cfg.Redis)
	pkgconfig.OverrideDBFromEnv(&cfg.DB)
	pkgconfig.OverrideMQFromEnv(&cfg.MQ)
	pkgconfig.OverrideLogFromEnv(&cfg.Log)
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Store.Timeout == 0 {
		cfg.Store.Timeout = 10 * time.Second
	}
	if cfg.Store.RetryWait == 0 {
		cfg.Store.RetryWait = 200 * time.Millisecond
	}
	breaker := circuitbreaker.DefaultConfig()
	if cfg.Breaker.FailureThreshold == 0 {
		cfg.Breaker.FailureThreshold = breaker.FailureThreshold
	}
	if cfg.Breaker.SuccessThreshold == 0 {
		cfg.Breaker.SuccessThreshold = breaker.SuccessThreshold
	}
	if cfg.Breaker.OpenTimeout == 0 {
		cfg.Breaker.OpenTimeout = breaker.Timeout
	}
	if cfg.Breaker.HalfOpenMaxRequests == 0 {
		cfg.Breaker.HalfOpenMaxRequests = breaker.HalfOpenMaxRequests
	}
	if cfg.Fallback.Path == "" {
		cfg.Fallback.Path = "data/requirements.db"
	}
	if cfg.JWT.TTL == 0 {
		cfg.JWT.TTL = 24 * time.Hour
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 10
	}
	if cfg.MQ.Exchange == "" {
		cfg.MQ.Exchange = "tracker.events"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
}
