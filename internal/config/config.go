package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerCfg struct {
	Port                string `mapstructure:"port"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
}

type StorageCfg struct {
	// Driver is "mongo" or "memory".
	Driver string `mapstructure:"driver"`
}

type MongoCfg struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisCfg struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type KafkaCfg struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type JwtCfg struct {
	SigningMethod string `mapstructure:"signing_method"`
	Secret        string `mapstructure:"secret"`
	PublicKeyPath string `mapstructure:"public_key_path"`
}

type WsCfg struct {
	RateLimitPerSec         int `mapstructure:"rate_limit_per_sec"`
	HandshakeTimeoutSeconds int `mapstructure:"handshake_timeout_seconds"`
	SendBuffer              int `mapstructure:"send_buffer"`
}

type RateLimitCfg struct {
	Limit         int `mapstructure:"limit"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

type LogCfg struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
	Encoding    string `mapstructure:"encoding"`
}

type MetricsCfg struct {
	Enabled bool `mapstructure:"enabled"`
}

type Config struct {
	Server    ServerCfg    `mapstructure:"server"`
	Storage   StorageCfg   `mapstructure:"storage"`
	Mongo     MongoCfg     `mapstructure:"mongo"`
	Redis     RedisCfg     `mapstructure:"redis"`
	Kafka     KafkaCfg     `mapstructure:"kafka"`
	JWT       JwtCfg       `mapstructure:"jwt"`
	WS        WsCfg        `mapstructure:"ws"`
	RateLimit RateLimitCfg `mapstructure:"rate_limit"`
	Log       LogCfg       `mapstructure:"log"`
	Metrics   MetricsCfg   `mapstructure:"metrics"`
	// Derived
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	HandshakeTimeout time.Duration
	RateLimitWindow  time.Duration
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// AutomaticEnv alone does not surface env-only keys to Unmarshal;
	// every key has to be bound explicitly for APP_* overrides to land.
	for _, key := range []string{
		"server.port", "server.read_timeout_seconds", "server.write_timeout_seconds",
		"storage.driver",
		"mongo.uri", "mongo.database",
		"redis.enabled", "redis.addr", "redis.password", "redis.db", "redis.prefix",
		"kafka.enabled", "kafka.brokers", "kafka.topic",
		"jwt.signing_method", "jwt.secret", "jwt.public_key_path",
		"ws.rate_limit_per_sec", "ws.handshake_timeout_seconds", "ws.send_buffer",
		"rate_limit.limit", "rate_limit.window_seconds",
		"log.development", "log.level", "log.encoding",
		"metrics.enabled",
	} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		cfg.Server.WriteTimeoutSeconds = 15
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "mongo"
	}
	if cfg.Mongo.URI == "" {
		cfg.Mongo.URI = "mongodb://localhost:27017"
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "connect"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = "connect"
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "messages.persisted"
	}
	if cfg.JWT.SigningMethod == "" {
		cfg.JWT.SigningMethod = "HS256"
	}
	if cfg.WS.RateLimitPerSec == 0 {
		cfg.WS.RateLimitPerSec = 20
	}
	if cfg.WS.HandshakeTimeoutSeconds == 0 {
		cfg.WS.HandshakeTimeoutSeconds = 10
	}
	if cfg.WS.SendBuffer == 0 {
		cfg.WS.SendBuffer = 256
	}
	if cfg.RateLimit.Limit == 0 {
		cfg.RateLimit.Limit = 100
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = 60
	}
	cfg.ReadTimeout = time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second
	cfg.WriteTimeout = time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second
	cfg.HandshakeTimeout = time.Duration(cfg.WS.HandshakeTimeoutSeconds) * time.Second
	cfg.RateLimitWindow = time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
}
