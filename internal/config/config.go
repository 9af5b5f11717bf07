package config

import "os"

type Config struct {
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	JWTSecret      string
	Port           string
	AllowedOrigins string
	ResendAPIKey   string
	EmailFrom      string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
}

func Load() *Config {
	return &Config{
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "3306"),
		DBUser:         getEnv("DB_USER", "fizl"),
		DBPassword:     getEnv("DB_PASSWORD", "fizl_pass"),
		DBName:         getEnv("DB_NAME", "fizl"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),
		ResendAPIKey:   getEnv("RESEND_API_KEY", ""),
		EmailFrom:      getEnv("EMAIL_FROM", ""),
		S3Bucket:       getEnv("S3_BUCKET", "fizl-user-files"),
		S3Region:       getEnv("S3_REGION", "auto"),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
	}
}

func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true&charset=utf8mb4"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
