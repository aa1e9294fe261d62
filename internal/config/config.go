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

// Config holds all configuration required by the gateway process.
// Values come from an optional YAML file (CDR_CONFIG_PATH) and env vars; env wins.
// No business logic should depend on raw environment variables.
type Config struct {
	App   AppConfig   `yaml:"app"`
	Webex WebexConfig `yaml:"webex"`
	HTTP  HTTPConfig  `yaml:"http"`
	DB    DBConfig    `yaml:"db"`
	Redis RedisConfig `yaml:"redis"`
	Auth  AuthConfig  `yaml:"auth"`
}

type AppConfig struct {
	Env string `yaml:"env"`

	// Port is the preferred listen port. The server probes upward from here.
	Port           int `yaml:"port"`
	PortProbeLimit int `yaml:"portProbeLimit"`
}

type WebexConfig struct {
	// Token is the bearer credential for every upstream call.
	// It is optional at load time so the health endpoint can report it missing.
	Token   string        `yaml:"token"`
	BaseURL string        `yaml:"baseURL"`
	Timeout time.Duration `yaml:"timeout"`

	MaxRetries       int           `yaml:"maxRetries"`
	RateLimitDelay   time.Duration `yaml:"rateLimitDelay"`
	ServerErrorDelay time.Duration `yaml:"serverErrorDelay"`
}

type HTTPConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
	StaticDir      string   `yaml:"staticDir"`
}

// DBConfig enables the Postgres query audit log when DSN is set.
type DBConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig enables a shared in-flight cap on upstream calls when Addr is set.
type RedisConfig struct {
	Addr        string `yaml:"addr"`
	MaxInflight int    `yaml:"maxInflight"`
}

// AuthConfig enables bearer-token protection of /api when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwtSecret"`
	JWTIssuer string        `yaml:"jwtIssuer"`
	TokenTTL  time.Duration `yaml:"tokenTTL"`
}

const (
	DefaultPort           = 3000
	DefaultPortProbeLimit = 100
	DefaultWebexBaseURL   = "https://webexapis.com/v1"
)

func Default() Config {
	return Config{
		App: AppConfig{Env: "local", Port: DefaultPort, PortProbeLimit: DefaultPortProbeLimit},
		Webex: WebexConfig{
			BaseURL:          DefaultWebexBaseURL,
			Timeout:          30 * time.Second,
			MaxRetries:       2,
			RateLimitDelay:   2 * time.Second,
			ServerErrorDelay: time.Second,
		},
		Redis: RedisConfig{MaxInflight: 10},
		Auth:  AuthConfig{TokenTTL: 12 * time.Hour},
	}
}

func Load() (Config, error) {
	c := Default()
	if path := strings.TrimSpace(os.Getenv("CDR_CONFIG_PATH")); path != "" {
		if err := loadFile(path, &c); err != nil {
			return Config{}, err
		}
	}

	var parseErrs []error

	setString(&c.App.Env, "APP_ENV")
	setInt(&c.App.Port, "PORT", &parseErrs)
	setInt(&c.App.PortProbeLimit, "PORT_PROBE_LIMIT", &parseErrs)

	if v, ok := os.LookupEnv("WEBEX_TOKEN"); ok {
		c.Webex.Token = strings.TrimSpace(v)
	}
	setString(&c.Webex.BaseURL, "WEBEX_BASE_URL")
	setDuration(&c.Webex.Timeout, "WEBEX_TIMEOUT", &parseErrs)
	setInt(&c.Webex.MaxRetries, "WEBEX_MAX_RETRIES", &parseErrs)
	setDuration(&c.Webex.RateLimitDelay, "WEBEX_RATE_LIMIT_DELAY", &parseErrs)
	setDuration(&c.Webex.ServerErrorDelay, "WEBEX_SERVER_ERROR_DELAY", &parseErrs)

	if v := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); v != "" {
		c.HTTP.AllowedOrigins = splitCSV(v)
	}
	setString(&c.HTTP.StaticDir, "STATIC_DIR")

	setString(&c.DB.DSN, "DATABASE_URL")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setInt(&c.Redis.MaxInflight, "UPSTREAM_MAX_INFLIGHT", &parseErrs)

	if v, ok := os.LookupEnv("API_JWT_SECRET"); ok {
		c.Auth.JWTSecret = v
	}
	setString(&c.Auth.JWTIssuer, "API_JWT_ISSUER")
	setDuration(&c.Auth.TokenTTL, "API_TOKEN_TTL", &parseErrs)

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports every configuration problem at once.
// A missing WEBEX_TOKEN is deliberately not an error; /api/health reports it.
func (c Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port < 1 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.App.Port))
	}
	if c.App.PortProbeLimit < 0 {
		errs = append(errs, fmt.Errorf("PORT_PROBE_LIMIT must be >= 0, got %d", c.App.PortProbeLimit))
	}

	if c.Webex.BaseURL == "" {
		errs = append(errs, errors.New("WEBEX_BASE_URL is required"))
	} else if !strings.HasPrefix(c.Webex.BaseURL, "http://") && !strings.HasPrefix(c.Webex.BaseURL, "https://") {
		errs = append(errs, fmt.Errorf("WEBEX_BASE_URL must be an http(s) URL, got %q", c.Webex.BaseURL))
	}
	if c.Webex.Timeout <= 0 {
		errs = append(errs, errors.New("WEBEX_TIMEOUT must be > 0"))
	}
	if c.Webex.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("WEBEX_MAX_RETRIES must be >= 0, got %d", c.Webex.MaxRetries))
	}
	if c.Webex.RateLimitDelay < 0 || c.Webex.ServerErrorDelay < 0 {
		errs = append(errs, errors.New("retry delays must be >= 0"))
	}

	if c.Redis.Addr != "" && c.Redis.MaxInflight <= 0 {
		errs = append(errs, fmt.Errorf("UPSTREAM_MAX_INFLIGHT must be > 0 when REDIS_ADDR is set, got %d", c.Redis.MaxInflight))
	}

	if c.Auth.JWTSecret != "" && c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("API_TOKEN_TTL must be > 0 when API_JWT_SECRET is set"))
	}
	if c.IsProduction() && c.Auth.JWTSecret != "" && c.Auth.JWTIssuer == "" {
		errs = append(errs, errors.New("API_JWT_ISSUER is required in production when API_JWT_SECRET is set"))
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) AuditEnabled() bool { return c.DB.DSN != "" }

func (c Config) InflightCapEnabled() bool { return c.Redis.Addr != "" }

func (c Config) AuthEnabled() bool { return c.Auth.JWTSecret != "" }

func loadFile(path string, c *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string, errs *[]error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be an integer, got %q", key, v))
		return
	}
	*dst = n
}

func setDuration(dst *time.Duration, key string, errs *[]error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be a duration (e.g. 500ms, 2s), got %q", key, v))
		return
	}
	*dst = d
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
