package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	// Directory apunta al user pool de Cognito que actúa como Identity Directory.
	Directory struct {
		Region     string `yaml:"region"`
		UserPoolID string `yaml:"user_pool_id"`
		ClientID   string `yaml:"client_id"`

		// Endpoint opcional para LocalStack / cognito-local.
		Endpoint string `yaml:"endpoint"`

		// Credenciales estáticas, sólo para entornos locales.
		AccessKeyID     string `yaml:"access_key_id"`
		SecretAccessKey string `yaml:"secret_access_key"`
	} `yaml:"directory"`

	// Linking controla el bookkeeping post-authentication.
	Linking struct {
		// Providers esperados, p.ej. ["Google", "LoginWithAmazon"].
		// También se acepta CSV por env (LINK_PROVIDERS).
		Providers []string `yaml:"providers"`
	} `yaml:"linking"`

	Session struct {
		CookieName string `yaml:"cookie_name"`
		Domain     string `yaml:"domain"`
		SameSite   string `yaml:"samesite"`
		Secure     bool   `yaml:"secure"`
		TTL        string `yaml:"ttl"`
	} `yaml:"session"`

	Rate struct {
		Enabled     bool   `yaml:"enabled"`
		Kind        string `yaml:"kind"` // memory | redis
		Window      string `yaml:"window"`
		MaxRequests int    `yaml:"max_requests"`
		Redis       struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"rate"`
}

// Load lee el YAML (si path no está vacío), aplica defaults, overrides por
// env y valida. Con path vacío la configuración sale sólo de env + defaults.
func Load(path string) (*Config, error) {
	var c Config

	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8084"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Directory.Region == "" {
		c.Directory.Region = "us-east-1"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "plsess"
	}
	if c.Session.SameSite == "" {
		c.Session.SameSite = "Lax"
	}
	if c.Session.TTL == "" {
		c.Session.TTL = "720h" // 30d, vida del refresh token
	}
	if c.Rate.Kind == "" {
		c.Rate.Kind = "memory"
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 60
	}

	c.applyEnvOverrides()

	// validate string durations
	if _, err := time.ParseDuration(c.Session.TTL); err != nil {
		return nil, fmt.Errorf("session.ttl: %w", err)
	}
	if _, err := time.ParseDuration(c.Rate.Window); err != nil {
		return nil, fmt.Errorf("rate.window: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Validate chequea lo mínimo para poder arrancar.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Directory.UserPoolID) == "" {
		return fmt.Errorf("directory.user_pool_id es requerido (env USER_POOL_ID)")
	}
	if strings.TrimSpace(c.Directory.ClientID) == "" {
		return fmt.Errorf("directory.client_id es requerido (env CLIENT_ID)")
	}
	switch strings.ToLower(c.Rate.Kind) {
	case "memory", "redis":
	default:
		return fmt.Errorf("rate.kind inválido: %q (memory|redis)", c.Rate.Kind)
	}
	if strings.EqualFold(c.Rate.Kind, "redis") && strings.TrimSpace(c.Rate.Redis.Addr) == "" {
		return fmt.Errorf("rate.redis.addr es requerido con rate.kind=redis")
	}
	return nil
}

// SessionTTL retorna el TTL de sesión ya parseado.
// Load garantiza que el string es válido.
func (c *Config) SessionTTL() time.Duration {
	d, _ := time.ParseDuration(c.Session.TTL)
	return d
}

// RateWindow retorna la ventana de rate limit ya parseada.
func (c *Config) RateWindow() time.Duration {
	d, _ := time.ParseDuration(c.Rate.Window)
	return d
}

func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = v
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := getEnvStr("AWS_REGION"); ok {
		c.Directory.Region = v
	}
	if v, ok := getEnvStr("USER_POOL_ID"); ok {
		c.Directory.UserPoolID = v
	}
	if v, ok := getEnvStr("CLIENT_ID"); ok {
		c.Directory.ClientID = v
	}
	if v, ok := getEnvStr("DIRECTORY_ENDPOINT"); ok {
		c.Directory.Endpoint = v
	}
	if v, ok := getEnvStr("DIRECTORY_ACCESS_KEY_ID"); ok {
		c.Directory.AccessKeyID = v
	}
	if v, ok := getEnvStr("DIRECTORY_SECRET_ACCESS_KEY"); ok {
		c.Directory.SecretAccessKey = v
	}
	if v, ok := getEnvCSV("LINK_PROVIDERS"); ok {
		c.Linking.Providers = v
	}
	if v, ok := getEnvStr("SESSION_COOKIE_NAME"); ok {
		c.Session.CookieName = v
	}
	if v, ok := getEnvStr("SESSION_COOKIE_DOMAIN"); ok {
		c.Session.Domain = v
	}
	if v, ok := getEnvStr("SESSION_SAMESITE"); ok {
		c.Session.SameSite = v
	}
	if v, ok := getEnvBool("SESSION_SECURE"); ok {
		c.Session.Secure = v
	}
	if v, ok := getEnvStr("SESSION_TTL"); ok {
		c.Session.TTL = v
	}
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvStr("RATE_KIND"); ok {
		c.Rate.Kind = v
	}
	if v, ok := getEnvInt("RATE_MAX_REQUESTS"); ok {
		c.Rate.MaxRequests = v
	}
	if v, ok := getEnvStr("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}
	if v, ok := getEnvStr("RATE_REDIS_ADDR"); ok {
		c.Rate.Redis.Addr = v
	}
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvCSV(key string) ([]string, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return nil, false
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, len(out) > 0
}
