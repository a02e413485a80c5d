// config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	MongoURI    string
	MongoDBName string
	RabbitURL   string

	// Address validation providers. An empty credential disables
	// the provider and the fallback chain skips it.
	USPSUserID        string
	GoogleAPIKey      string
	ValidationTimeout time.Duration

	// When empty, logs go to stdout only.
	LogsDirectory string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:       getEnv("MONGO_DB_NAME", "shipping_label_db"),
		RabbitURL:         getEnv("RABBIT_URL", ""),
		USPSUserID:        getEnv("USPS_USER_ID", ""),
		GoogleAPIKey:      getEnv("GOOGLE_API_KEY", ""),
		ValidationTimeout: getDurationEnv("ADDRESS_VALIDATION_TIMEOUT_SECONDS", 5*time.Second),
		LogsDirectory:     getEnv("LOGS_DIRECTORY", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	secs, err := strconv.Atoi(value)
	if err != nil || secs <= 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}
