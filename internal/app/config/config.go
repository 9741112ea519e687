package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type HTTPServerConfig struct {
	Port            string        `yaml:"port" env:"HTTP_PORT_CART_SERVICE" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	TimeoutGraceful time.Duration `yaml:"timeout_graceful_shutdown" env:"HTTP_TIMEOUT_GRACEFUL" env-default:"15s"`
}

type MetricsConfig struct {
	Port        string `yaml:"port" env:"METRICS_PORT" env-default:"9093"`
	ServiceName string `yaml:"service_name" env:"METRICS_SERVICE_NAME" env-default:"cart_service"`
}

type MongoDBConfig struct {
	URI      string `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	User     string `yaml:"user" env:"MONGO_USER"`
	Password string `yaml:"password" env:"MONGO_PASSWORD"`
	Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"cart_service_db"`
}

type RedisConfig struct {
	Addr         string        `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB           int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	PoolSize     int           `yaml:"pool_size" env:"REDIS_POOL_SIZE" env-default:"20"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"REDIS_READ_TIMEOUT" env-default:"500ms"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"REDIS_WRITE_TIMEOUT" env-default:"500ms"`
}

type NATSConfig struct {
	URL string `yaml:"url" env:"NATS_URL" env-default:"nats://localhost:4222"`
}

type LoggerConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding   string `yaml:"encoding" env:"LOG_ENCODING" env-default:"json"`
	TimeFormat string `yaml:"time_format" env:"LOG_TIME_FORMAT" env-default:"2006-01-02T15:04:05.000Z07:00"`
}

type TracingConfig struct {
	ServiceName  string `yaml:"service_name" env:"OTEL_SERVICE_NAME" env-default:"cart-service"`
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

type SessionConfig struct {
	CookieName string        `yaml:"cookie_name" env:"SESSION_COOKIE_NAME" env-default:"cart_session"`
	TTL        time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"720h"`
	Secure     bool          `yaml:"secure" env:"SESSION_COOKIE_SECURE" env-default:"false"`
}

type ProductCacheConfig struct {
	TTL time.Duration `yaml:"ttl" env:"PRODUCT_CACHE_TTL" env-default:"5m"`
}

type SweeperConfig struct {
	Interval    time.Duration `yaml:"interval" env:"SWEEP_INTERVAL" env-default:"10m"`
	IdleAfter   time.Duration `yaml:"idle_after" env:"SWEEP_IDLE_AFTER" env-default:"3h"`
	DeleteAfter time.Duration `yaml:"delete_after" env:"SWEEP_DELETE_AFTER" env-default:"168h"`
}

type Config struct {
	Env          string             `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer   HTTPServerConfig   `yaml:"http_server"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	MongoDB      MongoDBConfig      `yaml:"mongo"`
	Redis        RedisConfig        `yaml:"redis"`
	NATS         NATSConfig         `yaml:"nats"`
	Logger       LoggerConfig       `yaml:"logger"`
	Tracing      TracingConfig      `yaml:"tracing"`
	Session      SessionConfig      `yaml:"session"`
	ProductCache ProductCacheConfig `yaml:"product_cache"`
	Sweeper      SweeperConfig      `yaml:"sweeper"`
}

func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
		return validated(&cfg)
	}

	err := cleanenv.ReadConfig(path, &cfg)
	if err != nil {
		if _, ok := err.(*os.PathError); ok {
			log.Printf("Warning: Config file not found at %s, attempting to load from environment variables only.", path)
			errEnv := cleanenv.ReadEnv(&cfg)
			if errEnv != nil {
				return nil, errEnv
			}
			return validated(&cfg)
		}
		return nil, err
	}
	return validated(&cfg)
}

func validated(cfg *Config) (*Config, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects durations that would stall or crash the background workers.
func (c *Config) Validate() error {
	if err := c.Sweeper.Validate(); err != nil {
		return err
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive, got %s", c.Session.TTL)
	}
	return nil
}

func (c SweeperConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("sweeper.interval must be positive, got %s", c.Interval)
	}
	if c.IdleAfter <= 0 {
		return fmt.Errorf("sweeper.idle_after must be positive, got %s", c.IdleAfter)
	}
	if c.DeleteAfter <= 0 {
		return fmt.Errorf("sweeper.delete_after must be positive, got %s", c.DeleteAfter)
	}
	return nil
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH_CART_SERVICE")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	return cfg
}
