package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/kippeer/go-store-api/pkg/webutil"
)

type Config struct {
	Env      string  `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTP    `yaml:"http"`
	Metrics  Metrics `yaml:"metrics"`
	Postgres PG      `yaml:"postgres"`
	Redis    Redis   `yaml:"redis"`
	Auth     Auth    `yaml:"auth"`
	Limiter  Limiter `yaml:"limiter"`
	Log      Log     `yaml:"log"`
}

type HTTP struct {
	Port    string        `yaml:"port" env:"HTTP_PORT" env-default:":3000"`
	Timeout time.Duration `yaml:"timeout" env-default:"4s"`
}

type Metrics struct {
	Port string `yaml:"port" env:"METRICS_PORT" env-default:":9091"`
}

type PG struct {
	URL string `yaml:"url" env:"DB_URL"`
}

type Redis struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	CacheTTL time.Duration `yaml:"cache_ttl" env-default:"10m"`
}

type Auth struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl" env-default:"24h"`
}

type Limiter struct {
	Max        int           `yaml:"max" env-default:"20"`
	Expiration time.Duration `yaml:"expiration" env-default:"5s"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

func MustLoad() *Config {
	configPath := webutil.ParseWithFallback("CONFIG_PATH", "./config/local.yaml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exists: %v\n", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("error reading config: %v", err)
	}

	return &cfg
}
