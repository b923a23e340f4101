package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Auth     AuthConfig
	Upload   UploadConfig
	Editor   EditorConfig
	Events   EventsConfig
}

type AppConfig struct {
	Name               string
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type AuthConfig struct {
	JwtSecret  string
	SessionTTL time.Duration
}

type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

type EditorConfig struct {
	DefaultLanguage string
	HighlightStyle  string
	SessionTTL      time.Duration
}

type EventsConfig struct {
	ContentTopic string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Name:               getEnv("APP_NAME", "lms-backend"),
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "LMS"),
		},
		Auth: AuthConfig{
			JwtSecret:  getEnv("JWT_SECRET", "change-me"),
			SessionTTL: time.Duration(getEnvAsInt("SESSION_TTL_MINUTES", 24*60)) * time.Minute,
		},
		Upload: UploadConfig{
			Dir:      getEnv("UPLOAD_DIR", "./uploads"),
			MaxBytes: int64(getEnvAsInt("MAX_UPLOAD_MB", 10)) << 20,
		},
		Editor: EditorConfig{
			DefaultLanguage: getEnv("EDITOR_DEFAULT_LANGUAGE", "javascript"),
			HighlightStyle:  getEnv("EDITOR_HIGHLIGHT_STYLE", "github"),
			SessionTTL:      time.Duration(getEnvAsInt("EDITOR_SESSION_TTL_MINUTES", 60)) * time.Minute,
		},
		Events: EventsConfig{
			ContentTopic: getEnv("CONTENT_TOPIC_NAME", "content.saved"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
