package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Demo        DemoConfig
	Terms       TermsConfig
	Invitations InvitationConfig
}

type ServerConfig struct {
	Host     string
	Port     int
	Env      string
	LogLevel string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

// RateLimitConfig holds per-window request budgets. Auth endpoints get their
// own, stricter budget keyed by client IP.
type RateLimitConfig struct {
	Requests      int
	WindowSeconds int
	AuthRequests  int
	AuthWindow    int
}

type CORSConfig struct {
	AllowedOrigins []string
}

// DemoConfig controls the public demo deployment guardrails.
type DemoConfig struct {
	Enabled               bool
	MaxUsers              int
	MaxTeamsPerUser       int
	MaxProjectsPerTeam    int
	MaxInvitationsPerTeam int
	ProtectedEmails       []string
	UserName              string
	UserEmail             string
	UserPassword          string
	ResetCron             string
}

type TermsConfig struct {
	CurrentVersion string
	Label          string
	URL            string
}

type InvitationConfig struct {
	TTLHours int
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func (j *JWTConfig) Expiry() time.Duration {
	return time.Duration(j.ExpiryHours) * time.Hour
}

func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s *ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

func (i *InvitationConfig) TTL() time.Duration {
	return time.Duration(i.TTLHours) * time.Hour
}

// IsProtected reports whether email belongs to a seeded demo account.
func (d *DemoConfig) IsProtected(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	if strings.EqualFold(email, d.UserEmail) {
		return true
	}
	for _, e := range d.ProtectedEmails {
		if strings.EqualFold(email, e) {
			return true
		}
	}
	return false
}

func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "teamhub")
	v.SetDefault("DATABASE_PASSWORD", "teamhub_secret")
	v.SetDefault("DATABASE_NAME", "teamhub")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "change-me-in-production")
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("RATE_LIMIT_REQUESTS", 60)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	v.SetDefault("RATE_LIMIT_AUTH_REQUESTS", 5)
	v.SetDefault("RATE_LIMIT_AUTH_WINDOW_SECONDS", 60)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("DEMO_MODE", false)
	v.SetDefault("DEMO_MAX_USERS", 25)
	v.SetDefault("DEMO_MAX_TEAMS_PER_USER", 3)
	v.SetDefault("DEMO_MAX_PROJECTS_PER_TEAM", 5)
	v.SetDefault("DEMO_MAX_INVITATIONS_PER_TEAM", 5)
	v.SetDefault("DEMO_PROTECTED_EMAILS", "")
	v.SetDefault("DEMO_USER_NAME", "Demo User")
	v.SetDefault("DEMO_USER_EMAIL", "demo@example.com")
	v.SetDefault("DEMO_USER_PASSWORD", "password")
	v.SetDefault("DEMO_RESET_CRON", "0 8 * * *")
	v.SetDefault("TERMS_CURRENT_VERSION", "2026-01")
	v.SetDefault("TERMS_LABEL", "Terms of Service")
	v.SetDefault("TERMS_URL", "")
	v.SetDefault("INVITATION_TTL_HOURS", 7*24)

	// Load from .env file if present
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Override with environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		Server: ServerConfig{
			Host:     v.GetString("SERVER_HOST"),
			Port:     v.GetInt("SERVER_PORT"),
			Env:      v.GetString("SERVER_ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DATABASE_HOST"),
			Port:     v.GetInt("DATABASE_PORT"),
			User:     v.GetString("DATABASE_USER"),
			Password: v.GetString("DATABASE_PASSWORD"),
			Name:     v.GetString("DATABASE_NAME"),
			SSLMode:  v.GetString("DATABASE_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		RateLimit: RateLimitConfig{
			Requests:      v.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
			AuthRequests:  v.GetInt("RATE_LIMIT_AUTH_REQUESTS"),
			AuthWindow:    v.GetInt("RATE_LIMIT_AUTH_WINDOW_SECONDS"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Demo: DemoConfig{
			Enabled:               v.GetBool("DEMO_MODE"),
			MaxUsers:              v.GetInt("DEMO_MAX_USERS"),
			MaxTeamsPerUser:       v.GetInt("DEMO_MAX_TEAMS_PER_USER"),
			MaxProjectsPerTeam:    v.GetInt("DEMO_MAX_PROJECTS_PER_TEAM"),
			MaxInvitationsPerTeam: v.GetInt("DEMO_MAX_INVITATIONS_PER_TEAM"),
			ProtectedEmails:       splitList(v.GetString("DEMO_PROTECTED_EMAILS")),
			UserName:              v.GetString("DEMO_USER_NAME"),
			UserEmail:             v.GetString("DEMO_USER_EMAIL"),
			UserPassword:          v.GetString("DEMO_USER_PASSWORD"),
			ResetCron:             v.GetString("DEMO_RESET_CRON"),
		},
		Terms: TermsConfig{
			CurrentVersion: v.GetString("TERMS_CURRENT_VERSION"),
			Label:          v.GetString("TERMS_LABEL"),
			URL:            v.GetString("TERMS_URL"),
		},
		Invitations: InvitationConfig{
			TTLHours: v.GetInt("INVITATION_TTL_HOURS"),
		},
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
