package config

import (
	"os"
	"strconv"
	"time"
)

// StoreConfig remote document store settings
type StoreConfig struct {
	BaseURL    string        `yaml:"base_url"`
	AuthToken  string        `yaml:"auth_token"`
	Timeout    time.Duration `yaml:"timeout"`
	RetryCount int           `yaml:"retry_count"`
	RetryWait  time.Duration `yaml:"retry_wait"`
}

// BreakerConfig circuit breaker in front of the remote store
type BreakerConfig struct {
	FailureThreshold    int           `yaml:"failure_threshold"`
	SuccessThreshold    int           `yaml:"success_threshold"`
	OpenTimeout         time.Duration `yaml:"open_timeout"`
	HalfOpenMaxRequests int           `yaml:"half_open_max_requests"`
}

// FallbackConfig on-device store used when requirements cannot reach the remote store
type FallbackConfig struct {
	Path string `yaml:"path"`
}

// DBConfig audit database; empty Host disables auditing
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	MaxConns int32  `yaml:"max_conns"`
}

// MQConfig change-event broker; empty URL disables publishing
type MQConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

// RedisConfig session store; empty Addr keeps sessions in memory
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// JWTConfig token signing
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

// ServerConfig HTTP server
type ServerConfig struct {
	Port            string        `yaml:"port"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig logger output
type LogConfig struct {
	Level      string `yaml:"level"`
	Output     string `yaml:"output"` // stdout / file
	Path       string `yaml:"path"`
	Filename   string `yaml:"filename"`
	RotateSize int    `yaml:"rotate_size"` // MB
	RotateNum  int    `yaml:"rotate_num"`
	KeepDays   int    `yaml:"keep_days"`
}

// OverrideStoreFromEnv overrides remote store settings from the environment
func OverrideStoreFromEnv(cfg *StoreConfig) {
	if url := os.Getenv("STORE_BASE_URL"); url != "" {
		cfg.BaseURL = url
	}
	if token := os.Getenv("STORE_AUTH_TOKEN"); token != "" {
		cfg.AuthToken = token
	}
	if timeout := os.Getenv("STORE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.Timeout = d
		}
	}
	if retries := os.Getenv("STORE_RETRY_COUNT"); retries != "" {
		if n, err := strconv.Atoi(retries); err == nil {
			cfg.RetryCount = n
		}
	}
}

// OverrideFallbackFromEnv overrides the fallback store path
func OverrideFallbackFromEnv(cfg *FallbackConfig) {
	if path := os.Getenv("FALLBACK_PATH"); path != "" {
		cfg.Path = path
	}
}

// OverrideDBFromEnv overrides audit database settings from the environment
func OverrideDBFromEnv(cfg *DBConfig) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Name = name
	}
}

// OverrideMQFromEnv overrides the broker URL
func OverrideMQFromEnv(cfg *MQConfig) {
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.URL = url
	}
}

// OverrideRedisFromEnv overrides session store settings
func OverrideRedisFromEnv(cfg *RedisConfig) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
}

// OverrideJWTFromEnv overrides the signing secret
func OverrideJWTFromEnv(cfg *JWTConfig) {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Secret = secret
	}
}

// OverrideServerFromEnv overrides the listen port
func OverrideServerFromEnv(cfg *ServerConfig) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = port
	}
}

// OverrideLogFromEnv overrides the log level
func OverrideLogFromEnv(cfg *LogConfig) {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Level = level
	}
}
