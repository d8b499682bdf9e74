package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port           string
	MongoURI       string
	MongoDatabase  string
	RabbitURI      string
	EventExchange  string
	EmailQueue     string
	JWTSecret      string
	JWTExpiryHours int64
	AllowedOrigins []string
	FEAddress      string
	SMTP           SMTPConfig
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

var ServiceConfig *Config

func New() *Config {
	expiryStr := getEnv("TOKEN_EXPIRY_HOURS", "24")
	expiry, err := strconv.ParseInt(expiryStr, 10, 64)
	if err != nil {
		expiry = 24
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		MongoURI:       getEnv("MONGO_URI", ""),
		MongoDatabase:  getEnv("IQUIZ_MONGO_DB", "iquiz"),
		RabbitURI:      getEnv("RABBITMQ_URI", ""),
		EventExchange:  getEnv("RABBITMQ_EXCHANGE", "iquiz-events"),
		EmailQueue:     getEnv("RABBITMQ_EMAIL_QUEUE", "notification-emails"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTExpiryHours: expiry,
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		FEAddress:      getEnv("FE_ADDR", "http://localhost:3000"),
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@iquiz.app"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("ENV %s not set, using fallback", key)
	return fallback
}
