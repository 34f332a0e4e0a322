// Package config carga la configuración del servicio desde YAML con
// overrides por variables de entorno (CROSSGATE_*).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config agrupa toda la configuración del servicio.
type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Cache    CacheConfig    `yaml:"cache"`
	JWT      JWTConfig      `yaml:"jwt"`
	Security SecurityConfig `yaml:"security"`
	Broker   BrokerConfig   `yaml:"broker"`
	Events   EventsConfig   `yaml:"events"`
	Log      LogConfig      `yaml:"log"`
}

type AppConfig struct {
	Name string `yaml:"name"`
	Env  string `yaml:"env"` // development | production
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type StorageConfig struct {
	DSN string `yaml:"dsn"`
}

type CacheConfig struct {
	// Addr vacío selecciona el backend en memoria.
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// JWTPairConfig describe un emisor confiable (issuer/audience/secreto HMAC).
type JWTPairConfig struct {
	Issuer   string `yaml:"issuer"`
	Audience string `yaml:"audience"`
	Secret   string `yaml:"secret"`
}

type JWTConfig struct {
	Own         JWTPairConfig `yaml:"own"`
	Exchange    JWTPairConfig `yaml:"exchange"`
	AccessTTL   time.Duration `yaml:"access_ttl"`
	RefreshTTL  time.Duration `yaml:"refresh_ttl"`
	ExchangeTTL time.Duration `yaml:"exchange_ttl"`
}

type SecurityConfig struct {
	// Ruta al PEM de la clave RSA usada para descifrar secretos de federación.
	RSAPrivateKeyPath string `yaml:"rsa_private_key_path"`
}

type BrokerConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Realm        string        `yaml:"realm"`
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	Timeout      time.Duration `yaml:"timeout"`
}

type EventsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug | info | warn | error
}

// Load lee el YAML indicado (si existe) y aplica defaults y overrides de
// entorno. Una ruta vacía usa CROSSGATE_CONFIG o "config.yaml".
func Load(path string) (*Config, error) {
	if path == "" {
		path = getEnvStr("CROSSGATE_CONFIG", "config.yaml")
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Sin archivo: defaults + entorno bastan para desarrollo.
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "crossgate"
	}
	if c.App.Env == "" {
		c.App.Env = "development"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 20 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = "crossgate"
	}
	if c.JWT.AccessTTL == 0 {
		c.JWT.AccessTTL = 15 * time.Minute
	}
	if c.JWT.RefreshTTL == 0 {
		c.JWT.RefreshTTL = 8 * time.Hour
	}
	if c.JWT.ExchangeTTL == 0 {
		c.JWT.ExchangeTTL = 5 * time.Minute
	}
	if c.Broker.Timeout == 0 {
		c.Broker.Timeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) applyEnvOverrides() {
	c.App.Env = getEnvStr("CROSSGATE_ENV", c.App.Env)

	c.Server.Addr = getEnvStr("CROSSGATE_ADDR", c.Server.Addr)

	c.Storage.DSN = getEnvStr("CROSSGATE_DB_DSN", c.Storage.DSN)

	c.Cache.Addr = getEnvStr("CROSSGATE_REDIS_ADDR", c.Cache.Addr)
	c.Cache.Password = getEnvStr("CROSSGATE_REDIS_PASSWORD", c.Cache.Password)
	c.Cache.DB = getEnvInt("CROSSGATE_REDIS_DB", c.Cache.DB)
	c.Cache.Prefix = getEnvStr("CROSSGATE_REDIS_PREFIX", c.Cache.Prefix)

	c.JWT.Own.Issuer = getEnvStr("CROSSGATE_JWT_ISSUER", c.JWT.Own.Issuer)
	c.JWT.Own.Audience = getEnvStr("CROSSGATE_JWT_AUDIENCE", c.JWT.Own.Audience)
	c.JWT.Own.Secret = getEnvStr("CROSSGATE_JWT_SECRET", c.JWT.Own.Secret)
	c.JWT.Exchange.Issuer = getEnvStr("CROSSGATE_JWT_EXCHANGE_ISSUER", c.JWT.Exchange.Issuer)
	c.JWT.Exchange.Audience = getEnvStr("CROSSGATE_JWT_EXCHANGE_AUDIENCE", c.JWT.Exchange.Audience)
	c.JWT.Exchange.Secret = getEnvStr("CROSSGATE_JWT_EXCHANGE_SECRET", c.JWT.Exchange.Secret)
	c.JWT.AccessTTL = getEnvDur("CROSSGATE_JWT_ACCESS_TTL", c.JWT.AccessTTL)
	c.JWT.RefreshTTL = getEnvDur("CROSSGATE_JWT_REFRESH_TTL", c.JWT.RefreshTTL)
	c.JWT.ExchangeTTL = getEnvDur("CROSSGATE_JWT_EXCHANGE_TTL", c.JWT.ExchangeTTL)

	c.Security.RSAPrivateKeyPath = getEnvStr("CROSSGATE_RSA_KEY", c.Security.RSAPrivateKeyPath)

	c.Broker.BaseURL = getEnvStr("CROSSGATE_BROKER_URL", c.Broker.BaseURL)
	c.Broker.Realm = getEnvStr("CROSSGATE_BROKER_REALM", c.Broker.Realm)
	c.Broker.ClientID = getEnvStr("CROSSGATE_BROKER_CLIENT_ID", c.Broker.ClientID)
	c.Broker.ClientSecret = getEnvStr("CROSSGATE_BROKER_CLIENT_SECRET", c.Broker.ClientSecret)
	c.Broker.Timeout = getEnvDur("CROSSGATE_BROKER_TIMEOUT", c.Broker.Timeout)

	c.Events.Enabled = getEnvBool("CROSSGATE_EVENTS_ENABLED", c.Events.Enabled)

	c.Log.Level = getEnvStr("CROSSGATE_LOG_LEVEL", c.Log.Level)
}

// Validate verifica que el mínimo operable esté presente.
func (c *Config) Validate() error {
	if c.Storage.DSN == "" {
		return errors.New("config: storage.dsn is required")
	}
	if c.JWT.Own.Issuer == "" || c.JWT.Own.Audience == "" {
		return errors.New("config: jwt.own issuer/audience are required")
	}
	if c.JWT.Own.Secret == "" {
		return errors.New("config: jwt.own.secret is required")
	}
	if c.JWT.Exchange.Issuer != "" && c.JWT.Exchange.Secret == "" {
		return errors.New("config: jwt.exchange.secret is required when exchange issuer is set")
	}
	switch c.App.Env {
	case "development", "production":
	default:
		return fmt.Errorf("config: unknown app.env %q", c.App.Env)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log.level %q", c.Log.Level)
	}
	return nil
}

// IsProduction indica si el entorno activo es producción.
func (c *Config) IsProduction() bool { return c.App.Env == "production" }

func getEnvStr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDur(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return fallback
}
