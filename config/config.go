package config

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	Environment        string
	SessionSecret      string
	Port               string
	PostgresUser       string
	PostgresPassword   string
	PostgresDB         string
	PostgresHost       string
	PostgresPort       string
	JWTSecret          string
	JWTAccessTTL       time.Duration
	JWTRefreshTTL      time.Duration
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	MongoURI           string
	MongoDBName        string
	CORSAllowedOrigins []string
	SmsCodeTTL         time.Duration
	SocialRedirectURL  string
	SuspensionSchedule string
	OAuthCallbackBase  string
	OAuthClients       map[string]OAuthClient

	// singleton lock
	loadConfigOnce sync.Once
)

// OAuthClient holds the registration of one social login provider.
type OAuthClient struct {
	ID     string
	Secret string
}

// OAuthProviders are the providers read from OAUTH_<NAME>_CLIENT_ID and
// OAUTH_<NAME>_CLIENT_SECRET.
var OAuthProviders = []string{"kakao", "naver", "google"}

func setDefaults() {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", "5432")
	viper.SetDefault("JWT_ACCESS_EXPIRATION", "30m")
	viper.SetDefault("JWT_REFRESH_EXPIRATION", "24h")
	viper.SetDefault("MONGO_DB", "duopet")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("SMS_CODE_TTL", "3m")
	viper.SetDefault("SOCIAL_REDIRECT_URL", "http://localhost:3000/social-redirect")
	viper.SetDefault("SUSPENSION_SCHEDULE", "0 * * * *")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("OAUTH_CALLBACK_BASE", "http://localhost:8080")
}

// LoadConfig loads configuration from .env or config.yaml using Viper.
// Environment variables override both; with no file at all the process
// runs on environment variables and defaults.
func LoadConfig() error {
	var loadError error
	loadConfigOnce.Do(func() {
		setDefaults()
		viper.AutomaticEnv()

		viper.SetConfigFile(".env")
		if err := viper.ReadInConfig(); err != nil {
			viper.SetConfigFile("config.yaml")
			if err := viper.ReadInConfig(); err != nil {
				Log.WithError(err).Warn("no config file found, using environment only")
			}
		}

		loadError = apply()
		if loadError == nil {
			Log.Info("configuration loaded")
		}
	})

	return loadError
}

func apply() error {
	PostgresUser = viper.GetString("POSTGRES_USER")
	PostgresPassword = viper.GetString("POSTGRES_PASSWORD")
	PostgresDB = viper.GetString("POSTGRES_DB")
	PostgresHost = viper.GetString("POSTGRES_HOST")
	PostgresPort = viper.GetString("POSTGRES_PORT")
	Port = viper.GetString("PORT")
	Environment = viper.GetString("ENVIRONMENT")
	SessionSecret = viper.GetString("SESSION_SECRET")
	JWTSecret = viper.GetString("JWT_SECRET")
	RedisAddr = viper.GetString("REDIS_ADDR")
	RedisPassword = viper.GetString("REDIS_PASSWORD")
	RedisDB = viper.GetInt("REDIS_DB")
	MongoURI = viper.GetString("MONGO_URI")
	MongoDBName = viper.GetString("MONGO_DB")
	SocialRedirectURL = viper.GetString("SOCIAL_REDIRECT_URL")
	SuspensionSchedule = viper.GetString("SUSPENSION_SCHEDULE")
	CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))
	OAuthCallbackBase = strings.TrimRight(viper.GetString("OAUTH_CALLBACK_BASE"), "/")

	OAuthClients = make(map[string]OAuthClient, len(OAuthProviders))
	for _, name := range OAuthProviders {
		prefix := "OAUTH_" + strings.ToUpper(name) + "_"
		id := viper.GetString(prefix + "CLIENT_ID")
		if id == "" {
			continue
		}
		OAuthClients[name] = OAuthClient{ID: id, Secret: viper.GetString(prefix + "CLIENT_SECRET")}
	}

	var err error
	if JWTAccessTTL, err = Duration("JWT_ACCESS_EXPIRATION"); err != nil {
		return err
	}
	if JWTRefreshTTL, err = Duration("JWT_REFRESH_EXPIRATION"); err != nil {
		return err
	}
	if SmsCodeTTL, err = Duration("SMS_CODE_TTL"); err != nil {
		return err
	}

	if JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if JWTAccessTTL >= JWTRefreshTTL {
		return errors.New("JWT_ACCESS_EXPIRATION must be shorter than JWT_REFRESH_EXPIRATION")
	}
	return nil
}

// Duration reads key as a Go duration ("30m") or as whole milliseconds ("1800000").
func Duration(key string) (time.Duration, error) {
	raw := strings.TrimSpace(viper.GetString(key))
	if raw == "" {
		return 0, errors.New(key + " is not set")
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if ms <= 0 {
			return 0, errors.New(key + " must be positive")
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.New(key + ": " + err.Error())
	}
	if d <= 0 {
		return 0, errors.New(key + " must be positive")
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
