package utils

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Environment string

const (
	EnvProduction  Environment = "production"
	EnvStaging     Environment = "staging"
	EnvDevelopment Environment = "development"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Email     EmailConfig
	OTP       OTPConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	SSO       SSOConfig
}

type AppConfig struct {
	Name      string
	Port      string
	Debug     bool
	LogPath   string
	Env       Environment
	APIPrefix string
	// TrustProxy enables reading the client IP from X-Forwarded-For and
	// X-Real-IP. Only set it behind a reverse proxy that overwrites them.
	TrustProxy bool
}

// IsProduction reports whether development conveniences (persistent OTP,
// codes echoed in responses, test-token route) must be disabled.
func (a AppConfig) IsProduction() bool {
	return a.Env == EnvProduction
}

type DatabaseConfig struct {
	Host        string
	Port        string
	Name        string
	User        string
	Password    string
	MaxConns    int32
	AutoMigrate bool
}

type JWTConfig struct {
	Secret                    string
	AccessExpiresSeconds      int
	RefreshExpiresSeconds     int
	SSOConfirmExpiresSeconds  int
	PasswordResetExpiresHours int
}

func (j JWTConfig) AccessTTL() time.Duration {
	return time.Duration(j.AccessExpiresSeconds) * time.Second
}

func (j JWTConfig) RefreshTTL() time.Duration {
	return time.Duration(j.RefreshExpiresSeconds) * time.Second
}

func (j JWTConfig) SSOConfirmTTL() time.Duration {
	return time.Duration(j.SSOConfirmExpiresSeconds) * time.Second
}

func (j JWTConfig) PasswordResetTTL() time.Duration {
	return time.Duration(j.PasswordResetExpiresHours) * time.Hour
}

type EmailConfig struct {
	Enabled       bool
	Provider      string // mailersend, smtp or log
	MailerSendKey string
	Host          string
	Port          int
	User          string
	Password      string
	TLS           bool
	From          string
	FromName      string
	WebAppURL     string
}

type OTPConfig struct {
	ExpiryMinutes      int
	ReviewerEmail      string
	ReviewerExpiryDays int
	PersistentCode     string
}

func (o OTPConfig) TTL() time.Duration {
	return time.Duration(o.ExpiryMinutes) * time.Minute
}

func (o OTPConfig) ReviewerTTL() time.Duration {
	return time.Duration(o.ReviewerExpiryDays) * 24 * time.Hour
}

type CORSConfig struct {
	Origins []string
}

type RateLimitConfig struct {
	RedisURL      string
	OTPRequests   int
	WindowMinutes int
}

func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowMinutes) * time.Minute
}

type SSOConfig struct {
	CallbackBaseURL string
	Google          OAuthClient
	Facebook        OAuthClient
	Github          OAuthClient
}

type OAuthClient struct {
	ClientID     string
	ClientSecret string
}

func (c OAuthClient) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "starter-api")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("APP_ENV", string(EnvDevelopment))
	viper.SetDefault("API_PREFIX", "/api/v1")
	viper.SetDefault("TRUST_PROXY", false)
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("DB_AUTO_MIGRATE", true)
	viper.SetDefault("ACCESS_TOKEN_EXPIRES_SECONDS", 60*60)
	viper.SetDefault("REFRESH_TOKEN_EXPIRES_SECONDS", 30*24*60*60)
	viper.SetDefault("SSO_CONFIRMATION_EXPIRES_SECONDS", 5*60)
	viper.SetDefault("PASSWORD_RESET_EXPIRES_HOURS", 48)
	viper.SetDefault("OTP_EXPIRY_MINUTES", 10)
	viper.SetDefault("REVIEWER_EMAIL", "review@example.com")
	viper.SetDefault("REVIEWER_OTP_EXPIRY_DAYS", 30)
	viper.SetDefault("PERSISTENT_OTP", "123456")
	viper.SetDefault("EMAILS_ENABLED", false)
	viper.SetDefault("EMAIL_PROVIDER", "log")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_TLS", true)
	viper.SetDefault("OTP_REQUEST_LIMIT", 5)
	viper.SetDefault("OTP_REQUEST_WINDOW_MINUTES", 15)

	if err := viper.ReadInConfig(); err != nil {
		// .env is optional, plain environment variables are enough
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:       viper.GetString("APP_NAME"),
			Port:       viper.GetString("PORT"),
			Debug:      viper.GetBool("DEBUG"),
			LogPath:    viper.GetString("LOG_PATH"),
			Env:        Environment(strings.ToLower(viper.GetString("APP_ENV"))),
			APIPrefix:  viper.GetString("API_PREFIX"),
			TrustProxy: viper.GetBool("TRUST_PROXY"),
		},
		Database: DatabaseConfig{
			Host:        viper.GetString("DB_HOST"),
			Port:        viper.GetString("DB_PORT"),
			Name:        viper.GetString("DB_NAME"),
			User:        viper.GetString("DB_USER"),
			Password:    viper.GetString("DB_PASS"),
			MaxConns:    viper.GetInt32("DB_MAX_CONNS"),
			AutoMigrate: viper.GetBool("DB_AUTO_MIGRATE"),
		},
		JWT: JWTConfig{
			Secret:                    viper.GetString("JWT_SECRET"),
			AccessExpiresSeconds:      viper.GetInt("ACCESS_TOKEN_EXPIRES_SECONDS"),
			RefreshExpiresSeconds:     viper.GetInt("REFRESH_TOKEN_EXPIRES_SECONDS"),
			SSOConfirmExpiresSeconds:  viper.GetInt("SSO_CONFIRMATION_EXPIRES_SECONDS"),
			PasswordResetExpiresHours: viper.GetInt("PASSWORD_RESET_EXPIRES_HOURS"),
		},
		Email: EmailConfig{
			Enabled:       viper.GetBool("EMAILS_ENABLED"),
			Provider:      viper.GetString("EMAIL_PROVIDER"),
			MailerSendKey: viper.GetString("MAILERSEND_API_KEY"),
			Host:          viper.GetString("SMTP_HOST"),
			Port:          viper.GetInt("SMTP_PORT"),
			User:          viper.GetString("SMTP_USER"),
			Password:      viper.GetString("SMTP_PASS"),
			TLS:           viper.GetBool("SMTP_TLS"),
			From:          viper.GetString("EMAIL_FROM"),
			FromName:      viper.GetString("EMAIL_FROM_NAME"),
			WebAppURL:     viper.GetString("WEB_APP_URL"),
		},
		OTP: OTPConfig{
			ExpiryMinutes:      viper.GetInt("OTP_EXPIRY_MINUTES"),
			ReviewerEmail:      strings.ToLower(strings.TrimSpace(viper.GetString("REVIEWER_EMAIL"))),
			ReviewerExpiryDays: viper.GetInt("REVIEWER_OTP_EXPIRY_DAYS"),
			PersistentCode:     viper.GetString("PERSISTENT_OTP"),
		},
		CORS: CORSConfig{
			Origins: splitList(viper.GetString("CORS_ORIGINS")),
		},
		RateLimit: RateLimitConfig{
			RedisURL:      viper.GetString("REDIS_URL"),
			OTPRequests:   viper.GetInt("OTP_REQUEST_LIMIT"),
			WindowMinutes: viper.GetInt("OTP_REQUEST_WINDOW_MINUTES"),
		},
		SSO: SSOConfig{
			CallbackBaseURL: strings.TrimRight(viper.GetString("SSO_CALLBACK_BASE_URL"), "/"),
			Google: OAuthClient{
				ClientID:     viper.GetString("GOOGLE_CLIENT_ID"),
				ClientSecret: viper.GetString("GOOGLE_CLIENT_SECRET"),
			},
			Facebook: OAuthClient{
				ClientID:     viper.GetString("FACEBOOK_CLIENT_ID"),
				ClientSecret: viper.GetString("FACEBOOK_CLIENT_SECRET"),
			},
			Github: OAuthClient{
				ClientID:     viper.GetString("GITHUB_CLIENT_ID"),
				ClientSecret: viper.GetString("GITHUB_CLIENT_SECRET"),
			},
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.App.Env {
	case EnvProduction, EnvStaging, EnvDevelopment:
	default:
		return errors.New("APP_ENV must be one of production, staging, development")
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWT.RefreshExpiresSeconds < c.JWT.AccessExpiresSeconds {
		return errors.New("REFRESH_TOKEN_EXPIRES_SECONDS must not be shorter than ACCESS_TOKEN_EXPIRES_SECONDS")
	}
	return nil
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
