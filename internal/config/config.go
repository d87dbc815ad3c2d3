package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	ServerPort    string
	SecureCookies bool

	JWTSecret         string
	AccessTokenMaxAge int

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string

	// Web client
	WebPort        string
	APIBaseURL     string
	APITimeout     time.Duration
	RedisURL       string
	SessionMaxAge  int
	ViewTTL        time.Duration
	LoginRateLimit float64
	LoginRateBurst int
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	webPort := os.Getenv("WEB_PORT")
	if webPort == "" {
		webPort = "3000"
	}

	apiBaseURL := os.Getenv("API_BASE_URL")
	if apiBaseURL == "" {
		apiBaseURL = "http://localhost:8080/api"
	}

	sslMode := os.Getenv("DB_SSLMODE")
	if sslMode == "" {
		sslMode = "require"
	}

	loginRate, err := strconv.ParseFloat(os.Getenv("LOGIN_RATE_LIMIT"), 64)
	if err != nil || loginRate <= 0 {
		loginRate = 1
	}

	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  sslMode,

		ServerPort:    serverPort,
		SecureCookies: os.Getenv("COOKIE_SECURE") == "true",

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AccessTokenMaxAge: positiveInt("ACCESS_TOKEN_MAX_AGE", 86400),

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),

		WebPort:        webPort,
		APIBaseURL:     apiBaseURL,
		APITimeout:     time.Duration(positiveInt("API_TIMEOUT", 10)) * time.Second,
		RedisURL:       os.Getenv("REDIS_URL"),
		SessionMaxAge:  positiveInt("SESSION_MAX_AGE", 86400),
		ViewTTL:        time.Duration(positiveInt("VIEW_TTL", 1800)) * time.Second,
		LoginRateLimit: loginRate,
		LoginRateBurst: positiveInt("LOGIN_RATE_BURST", 5),
	}, nil
}

// HasR2 reports whether attachment storage is configured.
func (c *Config) HasR2() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2BucketName != ""
}

func positiveInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
