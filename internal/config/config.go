package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the portal API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	CORSAllowOrigins       string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	JWTSecret              string
	PaymentWebhookSecret   string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	AnnouncementCacheTTL   time.Duration
	UserConfigCacheTTL     time.Duration
	UploadMaxSizeMB        int
	AssistantRateLimit     int
	AIProvider             string
	OpenAIAPIKey           string
	AssistantModel         string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PORTAL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Cascadia Commons Portal API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("cloudinary.folder", "portal/uploads")
	v.SetDefault("announcements.cache_ttl", "5m")
	v.SetDefault("user_config.cache_ttl", "10m")
	v.SetDefault("upload.max_size_mb", 5)
	v.SetDefault("assistant.rate_limit", 10)
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.model", "gpt-4o-mini")

	announcementTTL, err := parseTTL(v.GetString("announcements.cache_ttl"), 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid announcements cache ttl: %w", err)
	}

	userConfigTTL, err := parseTTL(v.GetString("user_config.cache_ttl"), 10*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid user config cache ttl: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		CORSAllowOrigins:       v.GetString("cors.allow_origins"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		PaymentWebhookSecret:   v.GetString("payments.webhook_secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		AnnouncementCacheTTL:   announcementTTL,
		UserConfigCacheTTL:     userConfigTTL,
		UploadMaxSizeMB:        v.GetInt("upload.max_size_mb"),
		AssistantRateLimit:     v.GetInt("assistant.rate_limit"),
		AIProvider:             strings.ToLower(v.GetString("ai.provider")),
		OpenAIAPIKey:           v.GetString("openai_api_key"),
		AssistantModel:         v.GetString("ai.model"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.UploadMaxSizeMB <= 0 {
		cfg.UploadMaxSizeMB = 5
	}

	if cfg.AssistantRateLimit <= 0 {
		cfg.AssistantRateLimit = 10
	}

	return cfg, nil
}

func parseTTL(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}

	ttl, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}

	return ttl, nil
}
