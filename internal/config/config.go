package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

const defaultJWTSecret = "change-me"

// OAuthProvider holds one identity provider's client registration.
type OAuthProvider struct {
	Name         string
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Configured reports whether any part of the registration is set.
func (p OAuthProvider) Configured() bool {
	return p.ClientID != "" || p.ClientSecret != "" || p.RedirectURI != ""
}

// SMTPConfig holds outgoing mail settings. Empty Host disables mail.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// APIConfig holds configuration for the REST backend.
type APIConfig struct {
	Env              string
	ServerPort       string
	MySQLDSN         string
	RedisAddr        string
	RedisDB          int
	RedisPass        string
	JWTSecret        string
	JWTRefreshSecret string
	FrontendURL      string
	SwaggerHost      string
	ResetDB          bool
	SMTP             SMTPConfig
	OAuth            []OAuthProvider
}

// LoadAPI builds APIConfig from environment with sensible defaults.
func LoadAPI() *APIConfig {
	_ = godotenv.Load()

	env := getEnv("APP_ENV", getEnv("NODE_ENV", "development"))
	return &APIConfig{
		Env:              env,
		ServerPort:       getEnv("PORT", "8080"),
		MySQLDSN:         getEnv("MYSQL_DSN", buildDSN()),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		RedisPass:        os.Getenv("REDIS_PASSWORD"),
		JWTSecret:        getEnv("JWT_SECRET", defaultJWTSecret),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", defaultJWTSecret),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:3000"),
		SwaggerHost:      os.Getenv("SWAGGER_HOST"),
		ResetDB:          getEnvBool("RESET_DB", false),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvInt("SMTP_PORT", 587),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "no-reply@zuvomo.com"),
		},
		OAuth: []OAuthProvider{
			loadOAuthProvider("google", "GOOGLE"),
			loadOAuthProvider("linkedin", "LINKEDIN"),
		},
	}
}

// IsProduction reports whether the service runs in production mode.
func (c *APIConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Validate reports every problem with the configuration at once.
func (c *APIConfig) Validate() error {
	var errs []error

	switch strings.ToLower(c.Env) {
	case "development", "test", "staging", "production":
	default:
		errs = append(errs, fmt.Errorf("APP_ENV/NODE_ENV: unknown environment %q", c.Env))
	}

	if port, err := strconv.Atoi(c.ServerPort); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("PORT: invalid port %q", c.ServerPort))
	}

	if c.MySQLDSN == "" {
		errs = append(errs, errors.New("DB_*: database connection is not configured"))
	} else if _, err := mysql.ParseDSN(c.MySQLDSN); err != nil {
		errs = append(errs, fmt.Errorf("DB_*: %w", err))
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret || len(c.JWTSecret) < 32 {
			errs = append(errs, errors.New("JWT_SECRET: must be set to at least 32 characters in production"))
		}
		if c.JWTRefreshSecret == defaultJWTSecret || len(c.JWTRefreshSecret) < 32 {
			errs = append(errs, errors.New("JWT_REFRESH_SECRET: must be set to at least 32 characters in production"))
		}
		if c.JWTSecret == c.JWTRefreshSecret {
			errs = append(errs, errors.New("JWT_REFRESH_SECRET: must differ from JWT_SECRET"))
		}
	}

	if u, err := url.Parse(c.FrontendURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("FRONTEND_URL: %q is not an absolute URL", c.FrontendURL))
	}

	for _, p := range c.OAuth {
		if !p.Configured() {
			continue
		}
		prefix := strings.ToUpper(p.Name)
		if p.ClientID == "" {
			errs = append(errs, fmt.Errorf("%s_CLIENT_ID: required when %s OAuth is configured", prefix, p.Name))
		}
		if p.ClientSecret == "" {
			errs = append(errs, fmt.Errorf("%s_CLIENT_SECRET: required when %s OAuth is configured", prefix, p.Name))
		}
		if p.RedirectURI == "" {
			errs = append(errs, fmt.Errorf("%s_REDIRECT_URI: required when %s OAuth is configured", prefix, p.Name))
		}
	}

	return errors.Join(errs...)
}

// WebConfig holds configuration for the session gateway.
type WebConfig struct {
	ServerPort    string
	APIBaseURL    string
	APITimeout    time.Duration
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	SessionCookie string
	CookieSecure  bool
	SessionTTL    time.Duration
}

// LoadWeb builds WebConfig from environment with sensible defaults.
func LoadWeb() *WebConfig {
	_ = godotenv.Load()

	return &WebConfig{
		ServerPort:    getEnv("WEB_PORT", "3000"),
		APIBaseURL:    strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080/api"), "/"),
		APITimeout:    time.Duration(getEnvInt("API_TIMEOUT_SECONDS", 10)) * time.Second,
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisPass:     os.Getenv("REDIS_PASSWORD"),
		SessionCookie: getEnv("SESSION_COOKIE", "zuvomo_sid"),
		CookieSecure:  getEnvBool("COOKIE_SECURE", false),
		SessionTTL:    time.Duration(getEnvInt("SESSION_TTL_HOURS", 24*7)) * time.Hour,
	}
}

func buildDSN() string {
	cfg := mysql.NewConfig()
	cfg.User = getEnv("DB_USER", "zuvomo")
	cfg.Passwd = os.Getenv("DB_PASSWORD")
	cfg.Net = "tcp"
	cfg.Addr = getEnv("DB_HOST", "localhost") + ":" + getEnv("DB_PORT", "3306")
	cfg.DBName = getEnv("DB_NAME", "zuvomo")
	cfg.ParseTime = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

func loadOAuthProvider(name, prefix string) OAuthProvider {
	return OAuthProvider{
		Name:         name,
		ClientID:     os.Getenv(prefix + "_CLIENT_ID"),
		ClientSecret: os.Getenv(prefix + "_CLIENT_SECRET"),
		RedirectURI:  os.Getenv(prefix + "_REDIRECT_URI"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}
