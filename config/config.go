package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTAccessSecret string

	// ✅ Redis Config
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// ✅ Kafka Config
	KafkaBrokers    []string
	KafkaEventTopic string

	// ✅ SMTP Config
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromName  string
	SMTPFromEmail string

	// ✅ FCM Config
	FCMCredentialsPath string // Path to Firebase service account JSON
	FCMProjectID       string

	// ✅ Collaborating services
	FileServiceURL    string
	AuthServiceURL    string
	HTTPClientTimeout time.Duration

	RateLimit          string // ulule formatted, e.g. 100-M
	CORSAllowedOrigins []string

	DefaultTimezone string
	DefaultLanguage string
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads environment variables and returns a Config object
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using environment variables")
	}

	return &Config{
		Port:     getEnv("PORT", "8080"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "expo_events"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTAccessSecret: os.Getenv("JWT_ACCESS_SECRET"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		KafkaBrokers:    getEnvList("KAFKA_BROKERS"),
		KafkaEventTopic: getEnv("KAFKA_EVENT_TOPIC", "expo.event.published"),

		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		SMTPFromName:  getEnv("SMTP_FROM_NAME", "Expo Events"),
		SMTPFromEmail: os.Getenv("SMTP_FROM_EMAIL"),

		FCMCredentialsPath: os.Getenv("FCM_CREDENTIALS_PATH"),
		FCMProjectID:       os.Getenv("FCM_PROJECT_ID"),

		FileServiceURL:    getEnv("FILE_SERVICE_URL", "http://file-service:8080"),
		AuthServiceURL:    getEnv("AUTH_SERVICE_URL", "http://auth-service:8080"),
		HTTPClientTimeout: getEnvDuration("HTTP_CLIENT_TIMEOUT", 10*time.Second),

		RateLimit:          getEnv("RATE_LIMIT", "100-M"),
		CORSAllowedOrigins: getEnvListDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:4173"}),

		DefaultTimezone: getEnv("DEFAULT_TIMEZONE", "UTC"),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvListDefault(key string, fallback []string) []string {
	if list := getEnvList(key); len(list) > 0 {
		return list
	}
	return fallback
}
