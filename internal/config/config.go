package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port                   string
	SupabaseURL            string
	SupabaseAnonKey        string
	SupabaseServiceRoleKey string
	MongoDBURI             string
	MongoDBPassword        string
	RedisURL               string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	Environment            string
	LogLevel               string
	FrontendURL            string
	WhatsAppNumber         string
	RateLimitPerSec        float64
	RateLimitBurst         int
	CacheTTL               time.Duration
	ReportCooldown         time.Duration
	SMTP                   SMTPConfig
}

type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != ""
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:                   getEnvWithDefault("PORT", "8080"),
		SupabaseURL:            os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:        os.Getenv("SUPABASE_URL_ANON_KEY"),
		SupabaseServiceRoleKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		MongoDBURI:             os.Getenv("MONGODB_URI"),
		MongoDBPassword:        os.Getenv("MONGODB_PASSWORD"),
		RedisURL:               os.Getenv("REDIS_URL"),
		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:       os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:    os.Getenv("CLOUDINARY_API_SECRET"),
		Environment:            getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:               getEnvWithDefault("LOG_LEVEL", "info"),
		FrontendURL:            getEnvWithDefault("FRONTEND_URL", "http://localhost:3000"),
		WhatsAppNumber:         getEnvWithDefault("WHATSAPP_NUMBER", "917607844279"),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvWithDefault("SMTP_PORT", "587"),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
	}

	var err error
	if cfg.RateLimitPerSec, err = strconv.ParseFloat(getEnvWithDefault("RATE_LIMIT_PER_SEC", "5"), 64); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_PER_SEC: %w", err)
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(getEnvWithDefault("RATE_LIMIT_BURST", "10")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_BURST: %w", err)
	}
	if cfg.CacheTTL, err = time.ParseDuration(getEnvWithDefault("CACHE_TTL", "5m")); err != nil {
		return nil, fmt.Errorf("CACHE_TTL: %w", err)
	}
	if cfg.ReportCooldown, err = time.ParseDuration(getEnvWithDefault("REPORT_COOLDOWN", "24h")); err != nil {
		return nil, fmt.Errorf("REPORT_COOLDOWN: %w", err)
	}

	// Validate required fields
	if cfg.SupabaseURL == "" {
		return nil, fmt.Errorf("SUPABASE_URL is required")
	}
	if cfg.SupabaseAnonKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL_ANON_KEY is required")
	}
	if cfg.SupabaseServiceRoleKey == "" {
		return nil, fmt.Errorf("SUPABASE_SERVICE_ROLE_KEY is required")
	}
	if cfg.MongoDBURI != "" && cfg.MongoDBPassword == "" {
		return nil, fmt.Errorf("MONGODB_PASSWORD is required when MONGODB_URI is set")
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}
