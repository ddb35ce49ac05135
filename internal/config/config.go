package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Secrets holds the server-side signing and hashing material. It is built
// once at startup and handed to the hasher and the token codec.
type Secrets struct {
	AccessSecret  []byte
	RefreshSecret []byte
	Pepper        []byte
}

type Config struct {
	ServiceName string
	ServerName  string
	ServerPort  int
	LogLevel    string

	DatabaseURL string

	Secrets Secrets

	CORSOrigin string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	AdminEmail    string
	AdminPassword string
}

func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "business_site"),
		ServerName:  EnvDefault("SERVER_NAME", "localhost"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    os.Getenv("LOG_LEVEL"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		Secrets: Secrets{
			AccessSecret:  []byte(os.Getenv("JWT_SECRET")),
			RefreshSecret: []byte(os.Getenv("JWT_REFRESH_SECRET")),
			Pepper:        []byte(os.Getenv("PEPPER")),
		},

		CORSOrigin: os.Getenv("CORS_ORIGIN"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "services"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

// MustLoad is Load plus the checks for values the server cannot start without.
func MustLoad() Config {
	cfg := Load()

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	return cfg
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
