// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Logging    LoggingConfig
	CORS       CORSConfig
	Auth       AuthConfig
	Gemini     GeminiConfig
	PlayHT     PlayHTConfig
	Cloudinary CloudinaryConfig
	Session    SessionConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// AuthConfig holds JWT settings
type AuthConfig struct {
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// GeminiConfig holds Gemini API settings. The API key is optional:
// generative features report themselves as not configured without it.
type GeminiConfig struct {
	APIKey      string
	TextModel   string
	ImageModel  string
	SpeechModel string
	VideoModel  string
}

// PlayHTConfig holds credentials for the fallback speech provider
type PlayHTConfig struct {
	APIKey string
	UserID string
}

// CloudinaryConfig holds credentials for image uploads
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// SessionConfig holds navigation session settings
type SessionConfig struct {
	TTL time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// .env is optional, real environments set variables directly
	_ = godotenv.Load()

	cfg := &Config{}

	// Database configuration
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return nil, fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	// Server configuration
	serverPortStr := os.Getenv("SERVER_PORT")
	if serverPortStr == "" {
		serverPortStr = "8080" // default port
	}
	serverPort, err := strconv.Atoi(serverPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}
	cfg.Server.Port = serverPort

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info" // default level
	}
	cfg.Logging.Level = logLevel

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if corsOrigins == "" {
		// Default to allow all origins if not specified (for development)
		cfg.CORS.AllowedOrigins = []string{"*"}
	} else {
		// Parse comma-separated origins
		origins := strings.Split(corsOrigins, ",")
		cfg.CORS.AllowedOrigins = make([]string, 0, len(origins))
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				cfg.CORS.AllowedOrigins = append(cfg.CORS.AllowedOrigins, origin)
			}
		}
		// If no valid origins found, default to allow all
		if len(cfg.CORS.AllowedOrigins) == 0 {
			cfg.CORS.AllowedOrigins = []string{"*"}
		}
	}

	// Auth configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.Auth.JWTSecret = jwtSecret

	cfg.Auth.AccessTokenExpiry, err = durationEnv("ACCESS_TOKEN_EXPIRY", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.Auth.RefreshTokenExpiry, err = durationEnv("REFRESH_TOKEN_EXPIRY", 30*24*time.Hour)
	if err != nil {
		return nil, err
	}

	// Gemini configuration, all optional
	cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	cfg.Gemini.TextModel = os.Getenv("GEMINI_TEXT_MODEL")
	cfg.Gemini.ImageModel = os.Getenv("GEMINI_IMAGE_MODEL")
	cfg.Gemini.SpeechModel = os.Getenv("GEMINI_SPEECH_MODEL")
	cfg.Gemini.VideoModel = os.Getenv("GEMINI_VIDEO_MODEL")

	// PlayHT configuration, optional fallback speech provider
	cfg.PlayHT.APIKey = os.Getenv("PLAYHT_API_KEY")
	cfg.PlayHT.UserID = os.Getenv("PLAYHT_USER_ID")

	// Cloudinary configuration, optional: uploads fail with a clear
	// error when the credentials are missing
	cfg.Cloudinary.CloudName = os.Getenv("CLOUDINARY_CLOUD_NAME")
	cfg.Cloudinary.APIKey = os.Getenv("CLOUDINARY_API_KEY")
	cfg.Cloudinary.APISecret = os.Getenv("CLOUDINARY_API_SECRET")

	// Session configuration
	cfg.Session.TTL, err = durationEnv("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// durationEnv parses a duration environment variable with a default
func durationEnv(name string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return d, nil
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}
