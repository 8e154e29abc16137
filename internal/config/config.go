package config

import (
	"time"

	pkgconfig "github.com/hzj010427/YACA/pkg/config"
	"github.com/hzj010427/YACA/pkg/log"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Fanout    FanoutConfig
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Log       log.Config
}

type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig selects the storage backend. Driver "memory" runs the
// volatile in-process store; everything else goes through GORM.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	FilePath        string `mapstructure:"file_path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type AuthConfig struct {
	Secret        string        `mapstructure:"secret"`
	TokenLifetime time.Duration `mapstructure:"token_lifetime"` // 0 = never expires
	Issuer        string        `mapstructure:"issuer"`
}

type FanoutConfig struct {
	Mode    string `mapstructure:"mode"` // local or redis
	Redis   RedisConfig
	Channel string `mapstructure:"channel"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type WebSocketConfig struct {
	WriteWait      time.Duration `mapstructure:"write_wait"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "yaca")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.file_path", "./data/yaca.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("auth.secret", "change-me")
	v.SetDefault("auth.token_lifetime", "0s")
	v.SetDefault("auth.issuer", "yaca")
	v.SetDefault("fanout.mode", "local")
	v.SetDefault("fanout.channel", "yaca:events")
	v.SetDefault("fanout.redis.address", "localhost:6379")
	v.SetDefault("fanout.redis.password", "")
	v.SetDefault("fanout.redis.db", 0)
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.ping_interval", "54s")
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// Bind environment variables
	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.sslmode", "DB_SSLMODE")
	v.BindEnv("database.file_path", "DB_FILE_PATH")
	v.BindEnv("auth.secret", "JWT_SECRET")
	v.BindEnv("auth.token_lifetime", "JWT_LIFETIME")
	v.BindEnv("fanout.mode", "FANOUT_MODE")
	v.BindEnv("fanout.redis.address", "REDIS_ADDRESS")
	v.BindEnv("fanout.redis.password", "REDIS_PASSWORD")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
