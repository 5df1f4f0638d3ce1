package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Значения по умолчанию. Используются, если ни файл, ни окружение их не задали.
const (
	DefaultBaseURL       = "https://xwqm-zvzg-uzfr.n7e.xano.io/api:fjTsAN4K"
	DefaultBusinessID    = "13520775-cf07-4224-8bd9-999c8ddf850b"
	DefaultTimeoutMs     = 10000
	DefaultRetryAttempts = 3
	DefaultRetryDelayMs  = 1000
	DefaultBreakerMax    = 10
	DefaultCookieName    = "side-quest"
	DefaultSessionDays   = 7
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	App struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"app"`

	Backend struct {
		BaseURL            string `yaml:"base_url"`
		BusinessID         string `yaml:"business_id"`
		AdminBusinessID    string `yaml:"admin_business_id"` // пусто = тот же, что business_id
		TimeoutMs          int    `yaml:"timeout_ms"`
		RetryAttempts      int    `yaml:"retry_attempts"`
		RetryBaseDelayMs   int    `yaml:"retry_base_delay_ms"`
		BreakerMaxFailures int    `yaml:"breaker_max_failures"`
	} `yaml:"backend"`

	Session struct {
		CookieName string `yaml:"cookie_name"`
		TTLDays    int    `yaml:"ttl_days"`
		Secure     bool   `yaml:"secure"`
		Domain     string `yaml:"domain"`
	} `yaml:"session"`

	Cache struct {
		Driver     string `yaml:"driver"` // memory, redis
		RedisAddr  string `yaml:"redis_addr"`
		RedisDB    int    `yaml:"redis_db"`
		TTLMinutes int    `yaml:"ttl_minutes"`
	} `yaml:"cache"`

	Square struct {
		ApplicationID string `yaml:"application_id"`
		LocationID    string `yaml:"location_id"`
		Environment   string `yaml:"environment"` // sandbox, production
	} `yaml:"square"`
}

var AppConfig *Config

// LoadConfig читает .env (если есть), затем config.yaml, затем переменные окружения.
// Отсутствие файла не ошибка: работаем на значениях по умолчанию.
func LoadConfig() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config from %s: %v", configPath, err)
	}
	AppConfig = cfg
}

// Load собирает конфиг из файла по пути path и окружения.
func Load(path string) (*Config, error) {
	var cfg Config
	cfg.Backend.RetryAttempts = -1 // отличаем "не задано" от явного 0

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		log.Printf("Config file %s not found, using environment and defaults", path)
	default:
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Host, "SERVER_HOST")
	setInt(&cfg.Server.Port, "SERVER_PORT")
	setString(&cfg.Server.Env, "SERVER_ENV")

	setString(&cfg.Backend.BaseURL, "API_BASE_URL")
	setString(&cfg.Backend.BusinessID, "BUSINESS_ID")
	setString(&cfg.Backend.AdminBusinessID, "ADMIN_BUSINESS_ID")
	setInt(&cfg.Backend.TimeoutMs, "API_TIMEOUT")
	setInt(&cfg.Backend.RetryAttempts, "API_RETRY_ATTEMPTS")

	setString(&cfg.Session.CookieName, "SESSION_COOKIE")

	setString(&cfg.Cache.Driver, "CACHE_DRIVER")
	setString(&cfg.Cache.RedisAddr, "REDIS_ADDR")

	setString(&cfg.Square.ApplicationID, "SQUARE_APP_ID")
	setString(&cfg.Square.LocationID, "SQUARE_LOCATION_ID")
	setString(&cfg.Square.Environment, "SQUARE_ENV")
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.App.Name == "" {
		cfg.App.Name = "Side Quest"
	}
	if cfg.App.Description == "" {
		cfg.App.Description = "Your Adventure Begins Here"
	}

	if cfg.Backend.BaseURL == "" {
		log.Println("WARNING: API_BASE_URL not set, using default value")
		cfg.Backend.BaseURL = DefaultBaseURL
	}
	if cfg.Backend.BusinessID == "" {
		log.Println("WARNING: BUSINESS_ID not set, using default value")
		cfg.Backend.BusinessID = DefaultBusinessID
	}
	if cfg.Backend.AdminBusinessID == "" {
		cfg.Backend.AdminBusinessID = cfg.Backend.BusinessID
	} else if cfg.Backend.AdminBusinessID != cfg.Backend.BusinessID {
		// Не исправляем: админка и клиент могут осознанно жить в разных бизнесах.
		log.Printf("WARNING: admin business id %q differs from client business id %q",
			cfg.Backend.AdminBusinessID, cfg.Backend.BusinessID)
	}
	if cfg.Backend.TimeoutMs <= 0 {
		cfg.Backend.TimeoutMs = DefaultTimeoutMs
	}
	if cfg.Backend.RetryAttempts < 0 {
		cfg.Backend.RetryAttempts = DefaultRetryAttempts
	}
	if cfg.Backend.RetryBaseDelayMs <= 0 {
		cfg.Backend.RetryBaseDelayMs = DefaultRetryDelayMs
	}
	if cfg.Backend.BreakerMaxFailures <= 0 {
		cfg.Backend.BreakerMaxFailures = DefaultBreakerMax
	}

	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = DefaultCookieName
	}
	if cfg.Session.TTLDays <= 0 {
		cfg.Session.TTLDays = DefaultSessionDays
	}

	if cfg.Cache.Driver == "" {
		cfg.Cache.Driver = "memory"
	}
	if cfg.Cache.TTLMinutes <= 0 {
		cfg.Cache.TTLMinutes = 60 * 24 * cfg.Session.TTLDays
	}
	if cfg.Square.Environment == "" {
		cfg.Square.Environment = "sandbox"
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARNING: %s=%q is not an integer, ignored", key, v)
		return
	}
	*dst = n
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutMs) * time.Millisecond
}

func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.Backend.RetryBaseDelayMs) * time.Millisecond
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLDays) * 24 * time.Hour
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
